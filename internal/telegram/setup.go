// Package telegram handles the setup of the Telegram bot instance and
// the adapters handlers use to reply and download files.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewTelegramBot creates a new Telegram bot instance using the go-telegram/bot library.
func NewTelegramBot(token string, logger *slog.Logger, opts ...bot.Option) (*bot.Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token cannot be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "telegram_bot")

	b, err := bot.New(token, opts...)
	if err != nil {
		log.Error("Failed to create Telegram bot instance", "error", err)
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	log.Info("Telegram bot instance created successfully")
	return b, nil
}

// RegisterCommandMenu advertises the bot command menu to Telegram so
// clients show the available commands. Failure here is logged but not
// fatal: the bot works without the menu.
func RegisterCommandMenu(ctx context.Context, b *bot.Bot, logger *slog.Logger) {
	log := logger.With("component", "telegram_bot")

	ok, err := b.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: []models.BotCommand{
			{Command: "start", Description: "Register and start using the bot"},
			{Command: "help", Description: "Show available commands"},
			{Command: "websearch", Description: "Search the web"},
			{Command: "stats", Description: "View your usage statistics"},
		},
	})
	if err != nil || !ok {
		log.Warn("Failed to register command menu", "error", err)
		return
	}
	log.Debug("Command menu registered")
}
