// Package handlers implements message dispatch and the individual
// update handlers for the bot. A single Router classifies each incoming
// message and routes it to the matching handler; handlers report
// failures as errors, and the Router converts every failure into that
// handler's fixed apology reply.
package handlers

import (
	"context"
	"log/slog"

	"github.com/go-telegram/bot/models"

	"github.com/telegembot/telegem/internal/analyzer"
	"github.com/telegembot/telegem/internal/config"
	"github.com/telegembot/telegem/internal/database"
	"github.com/telegembot/telegem/internal/gemini"
	"github.com/telegembot/telegem/internal/websearch"
)

// Replier sends replies back to Telegram. Handlers depend on this
// interface rather than the bot client so dispatch can be tested with
// a recording fake.
type Replier interface {
	// Reply sends text to a chat as a reply to the given message ID.
	// markup may be nil.
	Reply(ctx context.Context, chatID int64, replyTo int, text string, markup models.ReplyMarkup) error

	// SendTyping emits a typing indicator. Best effort.
	SendTyping(ctx context.Context, chatID int64)
}

// FileDownloader fetches attachment bytes by Telegram file ID. It
// returns the data together with the Telegram-side file path, which
// serves as the stored filename for photos.
type FileDownloader interface {
	Download(ctx context.Context, fileID string) (data []byte, filePath string, err error)
}

// HandlerDeps provides dependencies for the update handlers.
type HandlerDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    database.Store
	Gemini   gemini.Client
	Search   websearch.Client
	Analyzer analyzer.Analyzer
	Replier  Replier
	Files    FileDownloader
	Pending  *PendingSteps
}

// truncate limits s to max bytes. Stored descriptions and page content
// use byte limits, not rune counts.
func truncate(s string, max int) string {
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}
