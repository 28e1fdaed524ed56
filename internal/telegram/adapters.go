package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const (
	sendMessageTimeout  = 10 * time.Second
	fileDownloadTimeout = 30 * time.Second
	maxDownloadSize     = 10 * 1024 * 1024
)

// Replier sends messages through the live bot connection. It implements
// the reply contract the handlers package depends on.
type Replier struct {
	bot *bot.Bot
	log *slog.Logger
}

// NewReplier wraps a bot instance for use by handlers.
func NewReplier(b *bot.Bot, logger *slog.Logger) *Replier {
	return &Replier{bot: b, log: logger.With("component", "telegram_replier")}
}

// Reply sends text to a chat, optionally as a reply to a specific
// message and optionally with keyboard markup.
func (r *Replier) Reply(ctx context.Context, chatID int64, replyTo int, text string, markup models.ReplyMarkup) error {
	if chatID == 0 {
		return fmt.Errorf("chat_id cannot be zero")
	}
	if text == "" {
		return fmt.Errorf("reply text cannot be empty")
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	params := &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ReplyMarkup: markup,
	}
	if replyTo > 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: replyTo}
	}

	sent, err := r.bot.SendMessage(sendCtx, params)
	if err != nil {
		r.log.ErrorContext(ctx, "Failed to send message", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to send message to chat %d: %w", chatID, err)
	}

	r.log.DebugContext(ctx, "Sent message", "chat_id", chatID, "message_id", sent.ID)
	return nil
}

// SendTyping emits a typing chat action. Best effort only.
func (r *Replier) SendTyping(ctx context.Context, chatID int64) {
	_, _ = r.bot.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})
}

// Downloader fetches attachment bytes from Telegram's file API.
type Downloader struct {
	bot   *bot.Bot
	token string
	log   *slog.Logger
}

// NewDownloader wraps a bot instance and its token for file downloads.
func NewDownloader(b *bot.Bot, token string, logger *slog.Logger) *Downloader {
	return &Downloader{bot: b, token: token, log: logger.With("component", "telegram_downloader")}
}

// Download retrieves file data for a Telegram file ID. It returns the
// raw bytes and the Telegram-side file path (used as a fallback
// filename for photos, which carry no name of their own).
func (d *Downloader) Download(ctx context.Context, fileID string) (data []byte, filePath string, err error) {
	if d.token == "" {
		return nil, "", fmt.Errorf("empty token provided for file download")
	}
	if fileID == "" {
		return nil, "", fmt.Errorf("empty fileID provided for file download")
	}
	if ctx.Err() != nil {
		return nil, "", fmt.Errorf("context cancelled before file download: %w", ctx.Err())
	}

	downloadCtx, cancel := context.WithTimeout(ctx, fileDownloadTimeout)
	defer cancel()

	fileObj, err := d.bot.GetFile(downloadCtx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, "", fmt.Errorf("failed to get file info from Telegram: %w", err)
	}
	if fileObj.FilePath == "" {
		return nil, "", fmt.Errorf("empty file path returned from Telegram for file ID %s", fileID)
	}

	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", d.token, fileObj.FilePath)
	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create HTTP request for %s: %w", url, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download file: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, "", fmt.Errorf("unexpected status code %d downloading file: %s", resp.StatusCode, string(bodyBytes))
	}

	data, err = io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read file data: %w", err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("received empty file data for file ID %s", fileID)
	}

	d.log.DebugContext(ctx, "Downloaded file", "file_id", fileID, "size", len(data))
	return data, fileObj.FilePath, nil
}
