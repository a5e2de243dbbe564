// Package main provides the entry point for the race bot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yourusername/stable-stakes/internal/bot"
	"github.com/yourusername/stable-stakes/internal/config"
	"github.com/yourusername/stable-stakes/internal/database"
	"github.com/yourusername/stable-stakes/internal/feed"
	"github.com/yourusername/stable-stakes/internal/health"
	"github.com/yourusername/stable-stakes/internal/ledger"
	"github.com/yourusername/stable-stakes/internal/logger"
	"github.com/yourusername/stable-stakes/internal/metrics"
	"github.com/yourusername/stable-stakes/internal/models"
	"github.com/yourusername/stable-stakes/internal/notify"
	"github.com/yourusername/stable-stakes/internal/race"
	"github.com/yourusername/stable-stakes/internal/repository"
	"github.com/yourusername/stable-stakes/internal/room"
	"github.com/yourusername/stable-stakes/internal/scheduler"
	"github.com/yourusername/stable-stakes/internal/service"
	"github.com/yourusername/stable-stakes/internal/statistics"

	clk "github.com/yourusername/stable-stakes/internal/clock"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the configuration file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Load AWS secrets if enabled
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	// Validate configuration
	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Set up logging
	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
	}).Info("Stable Stakes starting")
	logEntry := appLog.WithField("app", cfg.App.Name)

	metrics.InitRegistry()

	// Initialize database connection and repositories
	var (
		db       *database.DB
		repos    *repository.Repositories
		maintSvc *service.MaintenanceService
	)
	registry := statistics.NewRegistry()

	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err = database.Initialize(ctx, cfg)
		cancel()
		if err != nil {
			appLog.WithError(err).Fatal("Failed to connect to database")
		}
		defer db.Close()
		appLog.Info("Database connection established")

		repos, err = repository.NewRepositories(db)
		if err != nil {
			appLog.WithError(err).Fatal("Failed to create repositories")
		}

		maintSvc = service.NewMaintenanceService(registry, repos.Stats, logEntry)
		restoreCtx, cancelRestore := context.WithTimeout(context.Background(), 10*time.Second)
		if err := maintSvc.Restore(restoreCtx); err != nil {
			appLog.WithError(err).Warn("Could not restore statistics, starting fresh")
		}
		cancelRestore()
	}

	// Currency ledger with audit trail
	bank := ledger.New(logger.NewAuditLogger(appLog))

	// Odds history with a TTL cache in front of the registry
	history := statistics.NewCachedHistory(registry, time.Duration(cfg.Maintenance.OddsRefreshSeconds)*time.Second)

	// Live leaderboard feed
	var hub *feed.Hub
	if cfg.Feed.Enabled {
		hub = feed.NewHub(logEntry)
		mux := http.NewServeMux()
		mux.HandleFunc("/ws", hub.ServeWS)
		feedSrv := &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Feed.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
		go func() {
			appLog.WithField("port", cfg.Feed.Port).Info("Leaderboard feed listening")
			if err := feedSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLog.WithError(err).Error("Feed server error")
			}
		}()
		defer feedSrv.Close()
	}

	// Webhook notifier
	var webhook *notify.WebhookNotifier
	if cfg.Webhook.Enabled {
		webhook = notify.NewWebhookNotifier(notify.DefaultWebhookConfig(cfg.Webhook.URL), logEntry)
	}

	// Telegram transport
	tgBot, err := bot.New(bot.Config{
		Token:             cfg.Telegram.Token,
		PollTimeout:       time.Duration(cfg.Telegram.PollTimeoutSecs) * time.Second,
		CommandsPerMinute: float64(cfg.Telegram.CommandsPerMin),
	}, nil, bank, registry, logEntry)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to create telegram bot")
	}

	// Room manager wiring
	deps := room.Deps{
		Cfg:     &cfg.Room,
		Rng:     race.NewTimeRand(),
		Clock:   clk.New(),
		Log:     logEntry,
		Ledger:  bank,
		History: history,
		Stats:   registry,
		NotifierFor: func(roomID int64) race.Notifier {
			chat := bot.NewChatNotifier(tgBot.Telebot(), roomID, logEntry)
			var sinks []notify.Notifier = []notify.Notifier{chat}
			if hub != nil {
				sinks = append(sinks, hub)
			}
			if webhook != nil {
				sinks = append(sinks, webhook)
			}
			return notify.NewMulti(sinks...)
		},
		Invalidator: history,
	}
	if repos != nil {
		deps.Recorder = recordSaver{repos.RaceRecord, repos.WagerRecord}
	}
	rooms := room.NewManager(deps)
	tgBot.SetRooms(rooms)

	// Maintenance jobs
	sched := scheduler.NewScheduler(logEntry)
	if err := sched.ScheduleOddsRefresh(cfg.Maintenance.OddsRefreshSeconds, rooms); err != nil {
		appLog.WithError(err).Fatal("Failed to schedule odds refresh")
	}
	if maintSvc != nil {
		if err := sched.ScheduleStatsFlush(cfg.Maintenance.StatsFlushSchedule, maintSvc); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule stats flush")
		}
	}
	if err := sched.Start(); err != nil {
		appLog.WithError(err).Fatal("Failed to start scheduler")
	}

	// Health and metrics endpoint
	healthCtx, cancelHealth := context.WithCancel(context.Background())
	defer cancelHealth()
	healthSrv := health.NewServer(health.Config{
		ServiceName:   cfg.App.Name,
		Port:          strconv.Itoa(cfg.Metrics.Port),
		Logger:        appLog,
		DB:            dbPinger(db),
		ExposeMetrics: cfg.Metrics.Enabled,
	})
	if err := healthSrv.Start(healthCtx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}
	healthSrv.SetReady(true)

	go tgBot.Start()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	appLog.WithField("signal", sig.String()).Info("Shutting down")

	healthSrv.SetReady(false)
	tgBot.Stop()
	rooms.Shutdown()
	if err := sched.Stop(); err != nil {
		appLog.WithError(err).Error("Scheduler shutdown failed")
	}
	if hub != nil {
		hub.Close()
	}
	if maintSvc != nil {
		flushCtx, cancelFlush := context.WithTimeout(context.Background(), 30*time.Second)
		if err := maintSvc.FlushStats(flushCtx); err != nil {
			appLog.WithError(err).Error("Final stats flush failed")
		}
		cancelFlush()
	}

	appLog.Info("Stable Stakes stopped")
}

// recordSaver adapts the repositories to the room's recorder contract.
type recordSaver struct {
	races  repository.RaceRecordRepository
	wagers repository.WagerRecordRepository
}

func (r recordSaver) SaveRaceRecord(ctx context.Context, rec models.RaceRecord) error {
	return r.races.Create(ctx, &rec)
}

func (r recordSaver) SaveWagerRecords(ctx context.Context, recs []models.WagerRecord) error {
	for i := range recs {
		if err := r.wagers.Create(ctx, &recs[i]); err != nil {
			return err
		}
	}
	return nil
}

// dbPinger returns nil when the database is disabled so the readiness
// probe skips the check.
func dbPinger(db *database.DB) health.DatabasePinger {
	if db == nil {
		return nil
	}
	return db
}
