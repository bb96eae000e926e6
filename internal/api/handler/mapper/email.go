package mapper

import (
	"firmdesk/internal/api/handler/request"
	"firmdesk/internal/api/handler/response"
	"firmdesk/internal/api/models"
)

type EmailMapper struct{}

func (EmailMapper) ToScheduledEmailDTO(row models.ScheduledEmail) response.ScheduledEmailDTO {
	dto := response.ScheduledEmailDTO{
		ID:                row.ID,
		ClientID:          row.ClientID,
		TemplateID:        row.TemplateID,
		ServiceID:         row.ServiceID,
		Recipients:        row.Recipients,
		ScheduledDate:     row.ScheduledDate.Format("2006-01-02"),
		ScheduledTime:     row.ScheduledTime,
		ScheduledDateTime: row.ScheduledDateTime,
		IsRecurring:       row.IsRecurring,
		Status:            string(row.Status),
		SentAt:            row.SentAt,
		ErrorMessage:      row.ErrorMessage,
	}
	if row.RecurrenceEndDate != nil {
		end := row.RecurrenceEndDate.Format("2006-01-02")
		dto.RecurrenceEndDate = &end
	}
	return dto
}

func (m EmailMapper) ToScheduledEmailDTOs(rows []models.ScheduledEmail) []response.ScheduledEmailDTO {
	dtos := make([]response.ScheduledEmailDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, m.ToScheduledEmailDTO(row))
	}
	return dtos
}

func (EmailMapper) ToTemplateDTO(tmpl models.EmailTemplate) response.EmailTemplateDTO {
	return response.EmailTemplateDTO{
		ID:               tmpl.ID,
		OrganizationID:   tmpl.OrganizationID,
		MasterTemplateID: tmpl.MasterTemplateID,
		Name:             tmpl.Name,
		Subject:          tmpl.Subject,
		Body:             tmpl.Body,
		BodyFormat:       string(tmpl.BodyFormat),
		Description:      tmpl.Description,
		IsMaster:         tmpl.IsMaster(),
	}
}

func (m EmailMapper) ToTemplateDTOs(templates []models.EmailTemplate) []response.EmailTemplateDTO {
	dtos := make([]response.EmailTemplateDTO, 0, len(templates))
	for _, tmpl := range templates {
		dtos = append(dtos, m.ToTemplateDTO(tmpl))
	}
	return dtos
}

// ToConfigData lifts the wire document into the storage model,
// reassembling the tagged schedule union from the flat DTO.
func (EmailMapper) ToConfigData(req request.SaveEmailConfig) models.EmailConfigData {
	data := models.EmailConfigData{
		Emails:   req.Emails,
		Services: make(map[string]models.ServiceSchedule, len(req.Services)),
	}

	if len(req.EmailTemplates) > 0 {
		data.EmailTemplates = make(map[string]models.RecipientConfig, len(req.EmailTemplates))
		for id, rc := range req.EmailTemplates {
			data.EmailTemplates[id] = models.RecipientConfig{
				Enabled: rc.Enabled,
				Emails:  rc.Emails,
			}
		}
	}

	for id, dto := range req.Services {
		schedule := models.ServiceSchedule{
			Enabled:           dto.Enabled,
			Mode:              models.ScheduleMode(dto.Mode),
			TemplateID:        dto.TemplateID,
			Times:             dto.Times,
			RecurrenceEndDate: dto.RecurrenceEndDate,
		}
		switch schedule.Mode {
		case models.ScheduleModeSingle:
			if dto.Date != nil {
				schedule.Single = &models.SingleSchedule{Date: *dto.Date}
			} else {
				schedule.Single = &models.SingleSchedule{}
			}
		case models.ScheduleModeRange:
			r := &models.RangeSchedule{}
			if dto.From != nil {
				r.From = *dto.From
			}
			if dto.To != nil {
				r.To = *dto.To
			}
			schedule.Range = r
		}
		data.Services[id] = schedule
	}
	return data
}
