package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot/models"

	"github.com/telegembot/telegem/internal/database"
)

// handleChat forwards the message text to the generation API verbatim
// and replies with the raw response. The exchange is persisted before
// the reply goes out; a failed save fails the whole exchange.
func (r *Router) handleChat(ctx context.Context, msg *models.Message) error {
	log := r.log.With("handler", "chat")
	log.InfoContext(ctx, "Handling chat message", "chat_id", msg.Chat.ID)

	r.deps.Replier.SendTyping(ctx, msg.Chat.ID)

	response, err := r.deps.Gemini.GenerateText(ctx, msg.Text)
	if err != nil {
		return fmt.Errorf("text generation failed: %w", err)
	}

	record := &database.ChatRecord{
		ChatID:      msg.Chat.ID,
		UserMessage: msg.Text,
		BotResponse: response,
	}
	if err := r.deps.Store.SaveChatRecord(ctx, record); err != nil {
		return fmt.Errorf("failed to save chat record: %w", err)
	}

	return r.deps.Replier.Reply(ctx, msg.Chat.ID, msg.ID, response, nil)
}
