package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jimpitan_ronda/internal/app"
	"jimpitan_ronda/internal/domain/attendance"
	"jimpitan_ronda/internal/domain/fund"
	"jimpitan_ronda/internal/domain/patrol"
	domaintelegram "jimpitan_ronda/internal/domain/telegram"
	"jimpitan_ronda/internal/infra/config"
	idb "jimpitan_ronda/internal/infra/database"
	"jimpitan_ronda/internal/infra/httpapi"
	"jimpitan_ronda/internal/infra/logger"
	"jimpitan_ronda/internal/infra/metrics"
	"jimpitan_ronda/internal/infra/scheduler"
	"jimpitan_ronda/internal/infra/telegram"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

type repositories struct {
	patrol     patrol.Repository
	attendance attendance.Repository
	fund       fund.Repository
	db         *sql.DB // nil for the memory driver
}

func openStore(cfg *config.AppConfig, log *logrus.Entry) (*repositories, error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		store := idb.NewMemoryStore()
		if cfg.SeedFile != "" {
			if err := store.LoadSeedFile(cfg.SeedFile, cfg.Location); err != nil {
				return nil, err
			}
			log.WithField("seed_file", cfg.SeedFile).Info("Memory store seeded")
		}
		return &repositories{patrol: store, attendance: store, fund: store}, nil
	}

	db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	log.Info("Database connection established")
	if cfg.RunMigrations {
		if err := idb.RunMigrations(db, log); err != nil {
			db.Close()
			return nil, err
		}
	}
	return &repositories{
		patrol:     idb.NewPostgresPatrolRepository(db),
		attendance: idb.NewPostgresAttendanceRepository(db, cfg.Location),
		fund:       idb.NewPostgresFundRepository(db, cfg.Location),
		db:         db,
	}, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.WithError(err).Fatal("Could not load application configuration")
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"store_driver": cfg.StoreDriver,
		"timezone":     cfg.Timezone,
		"http_addr":    cfg.HTTPAddr,
	}).Info("Configuration loaded")

	repos, err := openStore(cfg, mainLogger)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not open store")
	}
	if repos.db != nil {
		defer repos.db.Close()
	}

	appMetrics := metrics.New(prometheus.DefaultRegisterer)
	attendanceService := app.NewAttendanceService(repos.attendance, repos.patrol, cfg.Location, appMetrics, logger.Component("attendance"))
	summaryService := app.NewSummaryService(repos.patrol, attendanceService, appMetrics, logger.Component("summary"))
	paymentService := app.NewPaymentService(repos.fund, cfg.FundTargetPerHousehold, logger.Component("payment"))

	// HTTP API
	handler := httpapi.New(attendanceService, summaryService, paymentService, logger.Component("http"))
	server := httpapi.NewServer(cfg.HTTPAddr, httpapi.NewRouter(handler, prometheus.DefaultGatherer))
	go func() {
		mainLogger.WithField("addr", cfg.HTTPAddr).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			mainLogger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telegram bot, optional
	var bot *telebot.Bot
	var recapClient domaintelegram.Client
	if cfg.TelegramToken != "" {
		botLogger := logger.Component("telegram")
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				entry := botLogger.WithError(err)
				if c != nil && c.Sender() != nil && c.Chat() != nil {
					entry = entry.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
				}
				entry.Error("Telegram handler error")
			},
		})
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}

		services := telegram.Services{Attendance: attendanceService, Summary: summaryService, Payment: paymentService}
		telegram.RegisterBotCommands(ctx, bot, cfg.IsAdmin, repos.patrol, attendanceService.Today, botLogger)
		telegram.RegisterAdminHandlers(ctx, bot, services, cfg.IsAdmin, botLogger)
		telegram.RegisterAttendanceCallbacks(ctx, bot, attendanceService, cfg.IsAdmin, botLogger)
		recapClient = telegram.NewTelebotAdapter(bot)

		go bot.Start()
		mainLogger.Info("Telegram bot started")
	} else {
		mainLogger.Info("TELEGRAM_TOKEN not set, bot disabled")
	}

	recapScheduler := scheduler.NewRecapScheduler(
		summaryService,
		recapClient,
		cfg.RecapChatID,
		cfg.Location,
		cfg.CronSpecDailyRecap,
		logger.Component("scheduler"),
	)
	if err := recapScheduler.Start(); err != nil {
		mainLogger.WithError(err).Fatal("Could not start recap scheduler")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	mainLogger.Info("Shutting down application")
	recapScheduler.Stop()
	if bot != nil {
		bot.Stop()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		mainLogger.WithError(err).Warn("HTTP server shutdown incomplete")
	}
	mainLogger.Info("Application shut down gracefully")
}
