// Package bot wires the long-running components of the task reminder bot
// together and manages their lifecycle.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Listener receives Telegram updates until ctx is cancelled. *bot.Bot
// implements it.
type Listener interface {
	Start(ctx context.Context)
}

// ReminderLoop is the daily reminder engine as seen by the orchestrator.
type ReminderLoop interface {
	Run(ctx context.Context) error
	Stop()
}

// HTTPServer is the keep-alive endpoint.
type HTTPServer interface {
	Run(ctx context.Context) error
}

// Bot represents the main bot application and manages its components' lifecycle.
type Bot struct {
	logger     *slog.Logger
	listener   Listener
	scheduler  *Scheduler
	engine     ReminderLoop
	httpServer HTTPServer
}

// NewBot creates the orchestrator. httpServer may be nil when the keep-alive
// endpoint is disabled.
func NewBot(logger *slog.Logger, listener Listener, scheduler *Scheduler, engine ReminderLoop, httpServer HTTPServer) *Bot {
	return &Bot{
		logger:     logger.With("component", "bot_orchestrator"),
		listener:   listener,
		scheduler:  scheduler,
		engine:     engine,
		httpServer: httpServer,
	}
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails, then shuts the rest down.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener...")
		b.listener.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped")

		if gCtx.Err() == nil {
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		if err := b.scheduler.Start(); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	g.Go(func() error {
		err := b.engine.Run(gCtx)
		b.engine.Stop()
		if err != nil {
			return fmt.Errorf("reminder engine failed: %w", err)
		}
		if gCtx.Err() == nil {
			return fmt.Errorf("reminder engine stopped unexpectedly")
		}
		return nil
	})

	if b.httpServer != nil {
		g.Go(func() error {
			return b.httpServer.Run(gCtx)
		})
	}

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully")
	return nil
}
