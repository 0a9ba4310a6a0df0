package telegram

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/taskpilot/internal/resilience"
)

// ResilientMessenger retries transient Bot API failures and stops calling a
// failing API through a circuit breaker. Requests Telegram rejects outright
// are returned at once.
type ResilientMessenger struct {
	next    Messenger
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
}

var _ Messenger = (*ResilientMessenger)(nil)

// NewResilientMessenger wraps next. Zero-valued retry settings fall back to
// resilience.DefaultRetryConfig.
func NewResilientMessenger(next Messenger, retry resilience.RetryConfig, logger *slog.Logger) *ResilientMessenger {
	if retry.MaxAttempts == 0 {
		defaults := resilience.DefaultRetryConfig()
		defaults.Clock = retry.Clock
		retry = defaults
	}
	retry.Retryable = isTransient
	retry.Logger = logger

	return &ResilientMessenger{
		next: next,
		breaker: resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
			Name:   "telegram_api",
			Logger: logger,
		}),
		retry: retry,
	}
}

func (m *ResilientMessenger) GetChat(ctx context.Context, params *bot.GetChatParams) (*models.ChatFullInfo, error) {
	var chat *models.ChatFullInfo
	err := m.call(ctx, func(ctx context.Context) (err error) {
		chat, err = m.next.GetChat(ctx, params)
		return err
	})
	return chat, err
}

func (m *ResilientMessenger) SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error) {
	var msg *models.Message
	err := m.call(ctx, func(ctx context.Context) (err error) {
		msg, err = m.next.SendMessage(ctx, params)
		return err
	})
	return msg, err
}

func (m *ResilientMessenger) call(ctx context.Context, op func(context.Context) error) error {
	return resilience.WithRetry(ctx, func(ctx context.Context) error {
		return m.breaker.Execute(ctx, op)
	}, m.retry)
}

// isTransient reports whether a Bot API error may succeed on retry.
func isTransient(err error) bool {
	for _, permanent := range []error{bot.ErrorBadRequest, bot.ErrorForbidden, bot.ErrorUnauthorized, bot.ErrorNotFound} {
		if errors.Is(err, permanent) {
			return false
		}
	}
	return true
}
