package handlers

import (
	"context"

	"github.com/go-telegram/bot/models"
)

// handleHelp replies with the fixed command overview.
func (r *Router) handleHelp(ctx context.Context, msg *models.Message) error {
	r.log.InfoContext(ctx, "Handling /help command", "chat_id", msg.Chat.ID)
	return r.deps.Replier.Reply(ctx, msg.Chat.ID, msg.ID, r.deps.Config.Messages.Help, nil)
}
