// Package main contains the entrypoint for the task reminder bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/jonboulle/clockwork"

	"github.com/edgard/taskpilot/internal/bot"
	"github.com/edgard/taskpilot/internal/bot/handlers"
	"github.com/edgard/taskpilot/internal/bot/tasks"
	"github.com/edgard/taskpilot/internal/config"
	"github.com/edgard/taskpilot/internal/database"
	"github.com/edgard/taskpilot/internal/health"
	"github.com/edgard/taskpilot/internal/logger"
	"github.com/edgard/taskpilot/internal/registry"
	"github.com/edgard/taskpilot/internal/reminder"
	"github.com/edgard/taskpilot/internal/resilience"
	"github.com/edgard/taskpilot/internal/telegram"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires every component, blocks until shutdown and returns the process
// exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to open journal database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	clock := clockwork.NewRealClock()
	taskRegistry := registry.New(clock, log)
	settings := config.NewReminderSettings(cfg.Reminder)

	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, tgbot.WithMiddlewares(logger.Middleware(log)))
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	sink := telegram.NewSink(telegram.NewResilientMessenger(tg, resilience.RetryConfig{}, log), log)
	engine := reminder.NewEngine(taskRegistry, sink, settings,
		reminder.WithClock(clock),
		reminder.WithLogger(log),
		reminder.WithBackoff(cfg.Reminder.Backoff),
		reminder.WithJournal(database.NewReminderJournal(store)),
	)

	cmdHandlers := handlers.RegisterAllCommands(handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Registry:  taskRegistry,
		Settings:  settings,
		Reminders: engine,
		Store:     store,
	})
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.PublishCommands(ctx, tg, cmdHandlers); err != nil {
		log.Warn("Failed to publish command list", "error", err)
	}

	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tasks.TaskDeps{
		Logger:   log,
		Config:   cfg,
		Registry: taskRegistry,
		Store:    store,
		Clock:    clock,
	}), clock)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	var httpServer bot.HTTPServer
	if cfg.HTTP.Enabled {
		httpServer = health.NewServer(cfg.HTTP.Addr,
			bot.NewStatusFunc(taskRegistry, engine, settings, store, sched), log, health.WithClock(clock))
	}

	app := bot.NewBot(log, tg, sched, engine, httpServer)

	log.Info("Starting bot...", "reminder_hour", cfg.Reminder.Hour, "reminder_minute", cfg.Reminder.Minute,
		"reminder_channel", settings.ReminderChannel())
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully")
	return 0
}
