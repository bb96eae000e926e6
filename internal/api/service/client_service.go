package service

import (
	"errors"
	"firmdesk"
	"firmdesk/internal/api/models"
	"firmdesk/internal/api/repo"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type ClientService struct {
	clientRepo  *repo.ClientRepository
	serviceRepo *repo.ServiceRepository
	logger      zerolog.Logger
}

func NewClientService() *ClientService {
	return &ClientService{
		clientRepo:  repo.NewClientRepository(),
		serviceRepo: repo.NewServiceRepository(),
		logger:      firmdesk.Logger,
	}
}

func (slf *ClientService) FindByID(id uint) (*models.Client, error) {
	client, err := slf.clientRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("client not found")
		}
		return nil, err
	}
	return &client, nil
}

func (slf *ClientService) ListForOrganization(organizationID uint) ([]models.Client, error) {
	return slf.clientRepo.FindAllByOrganization(organizationID)
}

func (slf *ClientService) Create(client models.Client, serviceIDs []uint) (*models.Client, error) {
	if client.Name == "" || client.Email == "" {
		return nil, errors.New("name and email are required")
	}

	for _, id := range serviceIDs {
		svc, err := slf.serviceRepo.FindByID(id)
		if err != nil {
			return nil, errors.New("unknown service in enrollment list")
		}
		client.Services = append(client.Services, svc)
	}

	if err := slf.clientRepo.Create(&client); err != nil {
		slf.logger.Error().Err(err).Msg("Error creating client")
		return nil, err
	}
	slf.logger.Info().Uint("clientId", client.ID).Msg("Client created")
	return &client, nil
}

func (slf *ClientService) Update(client models.Client) (*models.Client, error) {
	existing, err := slf.clientRepo.FindByIDSimple(client.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("client not found")
		}
		return nil, err
	}

	existing.Name = client.Name
	existing.CompanyName = client.CompanyName
	existing.Email = client.Email
	existing.Phone = client.Phone

	if err := slf.clientRepo.Update(&existing); err != nil {
		return nil, err
	}
	return &existing, nil
}

func (slf *ClientService) Delete(id uint) error {
	return slf.clientRepo.Delete(id)
}
