package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"simkas/internal/config"
	"simkas/internal/pkg"
	"simkas/internal/repository/blob"
	"simkas/internal/repository/database"
	rdb "simkas/internal/repository/redis"
	"simkas/internal/service"

	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func newLogger(component string) *log.Logger {
	return log.New(os.Stdout, component+": ", log.LstdFlags|log.Lmsgprefix)
}

// app holds everything serve and the admin commands share.
type app struct {
	cfg   *config.Config
	db    *gorm.DB
	redis *goredis.Client
	kafka *pkg.EventProducer

	users     *database.UserRepository
	master    *database.MasterRepository
	campaigns *database.CampaignRepository
	subs      *database.SubmissionRepository
	expenses  *database.ExpenseRepository
	outbox    *database.OutboxRepository

	tokens   *pkg.TokenManager
	sessions service.SessionStore
	blobs    blob.Store

	userSvc       *service.UserService
	masterSvc     *service.MasterService
	aggregates    *service.AggregationService
	campaignSvc   *service.CampaignService
	submissionSvc *service.SubmissionService
	validationSvc *service.ValidationService
}

// openDB loads config and connects to the database only.
func openDB() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	db, err := database.Open(cfg.Database, newLogger("GORM"))
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func newApp(ctx context.Context) (*app, error) {
	cfg, db, err := openDB()
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	a := &app{
		cfg:       cfg,
		db:        db,
		users:     &database.UserRepository{DB: db},
		master:    &database.MasterRepository{DB: db},
		campaigns: &database.CampaignRepository{DB: db},
		subs:      &database.SubmissionRepository{DB: db},
		expenses:  &database.ExpenseRepository{DB: db},
		outbox:    &database.OutboxRepository{DB: db},
		tokens:    pkg.NewTokenManager(cfg.JWT),
	}

	if cfg.Redis.Enabled {
		client, err := rdb.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.redis = client
		a.sessions = rdb.NewSessionRepository(client, cfg.JWT.AccessTTL)
	}

	switch cfg.Storage.Driver {
	case "oss":
		a.blobs, err = blob.NewOSS(cfg.Storage.OSS)
	default:
		a.blobs, err = blob.NewLocal(cfg.Storage.LocalDir)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Kafka.Enabled {
		a.kafka = pkg.NewEventProducer(cfg.Kafka)
	}

	svcLog := newLogger("SERVICE")
	a.userSvc = service.NewUserService(a.users, a.master, a.tokens, a.sessions, svcLog)
	a.masterSvc = service.NewMasterService(a.master)
	a.aggregates = service.NewAggregationService(a.subs, a.campaigns, a.expenses, a.master, a.users, nil)
	a.campaignSvc = service.NewCampaignService(a.campaigns, a.expenses, a.aggregates, svcLog)
	a.submissionSvc = service.NewSubmissionService(a.subs, a.campaigns, a.users, a.master, a.blobs, svcLog)
	a.validationSvc = service.NewValidationService(a.subs, a.campaigns, svcLog)
	return a, nil
}

// sinks returns the outbox sinks enabled in config; the log sink is the fallback.
func (a *app) sinks() []service.Sink {
	var sinks []service.Sink
	if a.kafka != nil {
		sinks = append(sinks, service.KafkaSink(a.kafka))
	}
	if a.cfg.SMTP.Enabled {
		mailer := service.NewDecisionMailer(a.subs, a.users, a.campaigns, pkg.SMTPConfig{
			Host:     a.cfg.SMTP.Host,
			Port:     a.cfg.SMTP.Port,
			Username: a.cfg.SMTP.Username,
			Password: a.cfg.SMTP.Password,
			From:     a.cfg.SMTP.From,
		})
		sinks = append(sinks, mailer.Sink)
	}
	if len(sinks) == 0 {
		sinks = append(sinks, service.LogSink(newLogger("OUTBOX")))
	}
	return sinks
}

func (a *app) Close() {
	if a.kafka != nil {
		if err := a.kafka.Close(); err != nil {
			log.Printf("close kafka: %v", err)
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			log.Printf("close redis: %v", err)
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
