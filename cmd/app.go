package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/application"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/domain"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/automation/repository"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/contentgen"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/contentgen/providers"
	coreconfig "github.com/Abhishek-kmr525/admin.freereminders.net-sub000/core/config"
	coreDB "github.com/Abhishek-kmr525/admin.freereminders.net-sub000/core/database"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/infrastructure/broker"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/infrastructure/valkey"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/crypto"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/pkg/utils"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/platform/linkedin"
	"github.com/Abhishek-kmr525/admin.freereminders.net-sub000/ui/rest"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type eventSink interface {
	domain.EventPublisher
	Close() error
}

// appContainer holds everything the commands share.
type appContainer struct {
	cfg        *coreconfig.Config
	runnerID   string
	db         *gorm.DB
	valkey     *valkey.Client
	events     eventSink
	service    *application.AutomationService
	dispatcher *application.Dispatcher
}

func newAppContainer(ctx context.Context, cfg *coreconfig.Config) (*appContainer, error) {
	app := &appContainer{cfg: cfg, runnerID: utils.GetRunnerID(cfg.App.ServerID)}

	db, err := coreDB.NewDatabase(cfg.Database, cfg.App.Debug)
	if err != nil {
		return nil, err
	}
	app.db = db
	if err := repository.Migrate(ctx, db); err != nil {
		app.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	cipher, err := crypto.NewTokenCipher(cfg.Security.SecretKey)
	if err != nil {
		app.Close()
		return nil, err
	}
	if !cipher.Enabled() {
		logrus.Warn("[APP] APP_SECRET_KEY is empty, platform tokens are stored unencrypted")
	}

	automations := repository.NewAutomationGormRepository(db)
	posts := repository.NewPostGormRepository(db)
	credentials := repository.NewCredentialGormRepository(db, cipher)

	var (
		lock  domain.CycleLock      = repository.NewMemoryCycleLock()
		cache domain.FreshnessCache = repository.NewMemoryFreshnessCache()
	)
	if cfg.Valkey.Enabled {
		vk, err := valkey.NewClient(valkey.Config{
			Address:   cfg.Valkey.Address,
			Password:  cfg.Valkey.Password,
			DB:        cfg.Valkey.DB,
			KeyPrefix: cfg.Valkey.KeyPrefix,
		})
		if err != nil {
			logrus.WithError(err).Warn("[APP] valkey unavailable, using in-process lock and cache")
		} else {
			app.valkey = vk
			lock = repository.NewValkeyCycleLock(vk)
			cache = repository.NewValkeyFreshnessCache(vk)
			logrus.Infof("[APP] valkey coordination enabled at %s", cfg.Valkey.Address)
		}
	}

	app.events = broker.Noop{}
	if cfg.Broker.Enabled {
		mq, err := broker.NewRabbitMQ(broker.Config{
			URL:        cfg.Broker.URL,
			Exchange:   cfg.Broker.Exchange,
			RoutingKey: cfg.Broker.RoutingKey,
			QueueName:  cfg.Broker.Queue,
		})
		if err != nil {
			logrus.WithError(err).Warn("[BROKER] rabbitmq unavailable, lifecycle events are dropped")
		} else {
			app.events = mq
		}
	}

	generator := contentgen.New(cfg.AI.Timeout, newBackends(ctx, cfg.AI)...)
	publisher := linkedin.New(linkedin.Config{
		BaseURL: cfg.Platform.LinkedInBaseURL,
		Timeout: cfg.Platform.Timeout,
	})

	resolver := application.NewCredentialResolver(credentials, publisher, cache, application.ResolverConfig{
		Platform:  linkedin.PlatformName,
		LiveCheck: cfg.Scheduler.CredentialLiveCheck,
		CheckTTL:  cfg.Scheduler.CredentialCheckTTL,
	})

	app.dispatcher = application.NewDispatcher(posts, resolver, publisher, app.events, lock, application.DispatcherConfig{
		BatchSize:      cfg.Scheduler.BatchSize,
		Workers:        cfg.Scheduler.Workers,
		ClaimTTL:       cfg.Scheduler.ClaimTTL,
		CycleBudget:    cfg.Scheduler.CycleBudget,
		PublishTimeout: cfg.Platform.Timeout,
		RunnerID:       app.runnerID,
	})

	materializer := application.NewMaterializer(automations, posts, generator, application.Lookahead{
		Days:     cfg.Scheduler.LookaheadDays,
		MaxPosts: cfg.Scheduler.LookaheadMaxPosts,
	})
	app.service = application.NewAutomationService(automations, posts, credentials, materializer, linkedin.PlatformName)

	logrus.WithFields(logrus.Fields{
		"runner":   app.runnerID,
		"db":       cfg.Database.Driver,
		"gemini":   generator.Configured(contentgen.Gemini),
		"chatgpt":  generator.Configured(contentgen.ChatGPT),
		"valkey":   app.valkey != nil && app.valkey.IsConnected(),
		"broker":   cfg.Broker.Enabled,
		"platform": linkedin.PlatformName,
	}).Info("[APP] application initialized")

	return app, nil
}

// newBackends registers the AI providers that have an API key.
func newBackends(ctx context.Context, cfg coreconfig.AIConfig) []contentgen.Backend {
	var backends []contentgen.Backend
	if strings.TrimSpace(cfg.GeminiKey) != "" {
		gemini, err := providers.NewGemini(ctx, providers.GeminiConfig{
			APIKey:      cfg.GeminiKey,
			Model:       cfg.GeminiModel,
			BaseURL:     cfg.GeminiBaseURL,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
		if err != nil {
			logrus.WithError(err).Warn("[CONTENTGEN] gemini backend disabled")
		} else {
			backends = append(backends, gemini)
		}
	}
	if strings.TrimSpace(cfg.OpenAIKey) != "" {
		openai, err := providers.NewOpenAI(providers.OpenAIConfig{
			APIKey:      cfg.OpenAIKey,
			Model:       cfg.OpenAIModel,
			BaseURL:     cfg.OpenAIBaseURL,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		})
		if err != nil {
			logrus.WithError(err).Warn("[CONTENTGEN] chatgpt backend disabled")
		} else {
			backends = append(backends, openai)
		}
	}
	return backends
}

func (a *appContainer) healthChecks() map[string]rest.HealthCheck {
	checks := map[string]rest.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if a.valkey != nil {
		checks["valkey"] = a.valkey.Ping
	}
	return checks
}

// Close performs a clean shutdown of the pool and every connection.
func (a *appContainer) Close() {
	if a.dispatcher != nil {
		a.dispatcher.Close()
	}
	if a.events != nil {
		if err := a.events.Close(); err != nil {
			logrus.WithError(err).Warn("[BROKER] close failed")
		}
	}
	if a.valkey != nil {
		a.valkey.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	logrus.Info("[APP] application stopped cleanly")
}

func mustApp(ctx context.Context) *appContainer {
	app, err := newAppContainer(ctx, coreconfig.Global)
	if err != nil {
		logrus.Fatalf("[APP] failed to initialize: %v", err)
	}
	return app
}
