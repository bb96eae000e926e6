package main

import (
	"context"
	"errors"
	"firmdesk"
	"firmdesk/internal/api/handler/endpoints"
	"firmdesk/internal/api/models"
	"firmdesk/internal/api/service"
	"firmdesk/internal/observability"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/graceful"
	"github.com/gin-gonic/gin"
)

func main() {
	firmdesk.InitConfig(".env")
	gin.SetMode(gin.ReleaseMode)

	if firmdesk.GetConfig().Mode == "dev" {
		if err := firmdesk.DB.AutoMigrate(
			&models.User{},
			&models.Organization{},
			&models.Client{},
			&models.Service{},
			&models.EmailTemplate{},
			&models.ClientEmailConfig{},
			&models.ScheduledEmail{},
		); err != nil {
			firmdesk.Logger.Fatal().Err(err).Msg("Failed to migrate database")
		}
		firmdesk.Logger.Info().Msg("Database migrated successfully")
		gin.SetMode(gin.DebugMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	router, err := graceful.Default(graceful.WithAddr(firmdesk.GetConfig().ApiPort))
	if err != nil {
		panic(err)
	}
	defer stop()
	defer router.Close()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	scheduler := service.NewSchedulerService()
	scheduler.Start()
	defer scheduler.Stop()

	credentialMail := service.NewCredentialMailService()
	credentialMail.Start()
	defer credentialMail.Stop()

	router.GET("/metrics", observability.MetricsHandler())
	initAPI(router)

	firmdesk.Logger.Debug().Msgf("Starting API on port %s", firmdesk.GetConfig().ApiPort)
	if err = router.RunWithContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		firmdesk.Logger.Fatal().Msg(err.Error())
		panic(err)
	}
}

func initAPI(router *graceful.Graceful) {
	endpoints.AuthHandler(router)
	endpoints.OrganizationHandler(router)
	endpoints.ClientHandler(router)
	endpoints.EmailTemplateHandler(router)
	endpoints.EmailConfigHandler(router)
	endpoints.ScheduledEmailHandler(router)
	endpoints.EmailHandler(router)
}
