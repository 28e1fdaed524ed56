package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot/models"

	"github.com/telegembot/telegem/internal/database"
)

// handlePhoto downloads the largest size of the photo, describes it,
// records the analysis, and replies with the full description. Photos
// carry no filename, so the Telegram-side file path is stored instead.
func (r *Router) handlePhoto(ctx context.Context, msg *models.Message) error {
	if len(msg.Photo) == 0 {
		return fmt.Errorf("photo event without photo sizes")
	}

	log := r.log.With("handler", "photo")
	log.InfoContext(ctx, "Handling photo", "chat_id", msg.Chat.ID)

	r.deps.Replier.SendTyping(ctx, msg.Chat.ID)

	// Telegram lists photo sizes smallest first.
	largest := msg.Photo[len(msg.Photo)-1]

	data, filePath, err := r.deps.Files.Download(ctx, largest.FileID)
	if err != nil {
		return fmt.Errorf("failed to download photo: %w", err)
	}

	analysis := r.deps.Analyzer.AnalyzeImage(ctx, data)

	record := &database.FileRecord{
		ChatID:      msg.Chat.ID,
		Filename:    filePath,
		Description: truncate(analysis, r.deps.Config.Analyzer.DescriptionLimit),
	}
	if err := r.deps.Store.SaveFileRecord(ctx, record); err != nil {
		return fmt.Errorf("failed to save photo record: %w", err)
	}

	return r.deps.Replier.Reply(ctx, msg.Chat.ID, msg.ID, "Image Analysis:\n\n"+analysis, nil)
}
