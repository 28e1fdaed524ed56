package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot/models"
)

// handleStats replies with the user's usage counters. A chat with no
// record gets the fixed not-registered hint, not an error.
func (r *Router) handleStats(ctx context.Context, msg *models.Message) error {
	log := r.log.With("handler", "stats")
	log.InfoContext(ctx, "Handling /stats command", "chat_id", msg.Chat.ID)

	user, err := r.deps.Store.GetUser(ctx, msg.Chat.ID)
	if err != nil {
		return fmt.Errorf("failed to load user statistics: %w", err)
	}

	if user == nil {
		return r.deps.Replier.Reply(ctx, msg.Chat.ID, msg.ID, r.deps.Config.Messages.StatsNotRegistered, nil)
	}

	stats := fmt.Sprintf(
		"Your Statistics:\n\n"+
			"• Joined: %s\n"+
			"• Total messages: %d\n"+
			"• Last active: %s",
		user.JoinedAt.Format("2006-01-02"),
		user.TotalMessages,
		user.LastActive.Format("2006-01-02 15:04"),
	)

	return r.deps.Replier.Reply(ctx, msg.Chat.ID, msg.ID, stats, nil)
}
