package app

import (
	"context"
	"fmt"
	"os"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bienestar-u/eventos-api/internal/api"
	"github.com/bienestar-u/eventos-api/internal/config"
	"github.com/bienestar-u/eventos-api/internal/db"
	"github.com/bienestar-u/eventos-api/internal/logger"
	"github.com/bienestar-u/eventos-api/internal/repository"
	"github.com/bienestar-u/eventos-api/internal/repository/dao"
	"github.com/bienestar-u/eventos-api/internal/service"
	"github.com/bienestar-u/eventos-api/internal/storage"
)

func Start() error {
	conf, err := config.Load("./cmd/app/config.yml")
	if err != nil {
		return fmt.Errorf("failed to initialize config -> %w", err)
	}

	if err = logger.Init(conf.API.Environment); err != nil {
		return fmt.Errorf("failed to initialize logger -> %w", err)
	}

	dbURL := os.Getenv("DATABASE_URL")
	var postgresDB *gorm.DB
	if dbURL != "" {
		postgresDB, err = db.OpenPostgresWithURL(dbURL)
	} else {
		postgresDB, err = db.OpenPostgres(conf.Postgres)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database -> %w", err)
	}

	store, err := storage.NewDiskStore(conf.Uploads.Dir)
	if err != nil {
		return fmt.Errorf("failed to initialize upload storage -> %w", err)
	}

	scheduler, err := startRetentionSweep(postgresDB, conf.Uploads.RetentionDays)
	if err != nil {
		return fmt.Errorf("failed to start retention sweep -> %w", err)
	}
	defer scheduler.Stop()

	s := api.NewServer(conf, postgresDB, store)

	addr := ":" + s.Config.API.Port
	zap.L().Info(fmt.Sprintf("starting server at %v", addr))
	if err = s.Router.Run(addr); err != nil {
		return fmt.Errorf("failed to start the server -> %w", err)
	}

	return nil
}

// startRetentionSweep purges read notifications older than the retention
// window once a day.
func startRetentionSweep(postgresDB *gorm.DB, retentionDays int) (*cron.Cron, error) {
	repo := repository.NewNotificationRepository(dao.NewNotificationDAO(postgresDB))
	svc := service.NewNotificationService(repo, repository.NewUserRepository(dao.NewUserDAO(postgresDB)))

	scheduler := cron.New()
	_, err := scheduler.AddFunc("@daily", func() {
		purged, err := svc.PurgeRead(context.Background(), retentionDays)
		if err != nil {
			zap.L().Error("notification retention sweep failed", zap.Error(err))

			return
		}

		zap.L().Info("notification retention sweep finished", zap.Int64("purged", purged))
	})
	if err != nil {
		return nil, err
	}

	scheduler.Start()

	return scheduler, nil
}
