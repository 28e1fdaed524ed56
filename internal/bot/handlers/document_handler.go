package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot/models"

	"github.com/telegembot/telegem/internal/database"
)

// handleDocument downloads the attachment, analyzes it if it is a PDF,
// records the outcome under the original filename, and replies with the
// analysis text. Unsupported formats are still recorded, with the
// unsupported message as their description.
func (r *Router) handleDocument(ctx context.Context, msg *models.Message) error {
	if msg.Document == nil {
		return fmt.Errorf("document event without document payload")
	}

	log := r.log.With("handler", "document")
	log.InfoContext(ctx, "Handling document", "chat_id", msg.Chat.ID, "filename", msg.Document.FileName)

	r.deps.Replier.SendTyping(ctx, msg.Chat.ID)

	data, _, err := r.deps.Files.Download(ctx, msg.Document.FileID)
	if err != nil {
		return fmt.Errorf("failed to download document: %w", err)
	}

	analysis := r.deps.Analyzer.AnalyzeDocument(ctx, data, msg.Document.FileName)

	record := &database.FileRecord{
		ChatID:      msg.Chat.ID,
		Filename:    msg.Document.FileName,
		Description: truncate(analysis, r.deps.Config.Analyzer.DescriptionLimit),
	}
	if err := r.deps.Store.SaveFileRecord(ctx, record); err != nil {
		return fmt.Errorf("failed to save document record: %w", err)
	}

	return r.deps.Replier.Reply(ctx, msg.Chat.ID, msg.ID, "Document Analysis:\n\n"+analysis, nil)
}
