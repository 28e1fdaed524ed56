package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot/models"

	"github.com/telegembot/telegem/internal/database"
)

// handleStart registers the user and asks for their contact. Repeated
// /start commands are safe: registration is insert-only, so an existing
// record keeps its phone number and counters, and the contact keyboard
// is simply shown again.
func (r *Router) handleStart(ctx context.Context, msg *models.Message) error {
	if msg.From == nil {
		return fmt.Errorf("start command without sender")
	}

	log := r.log.With("handler", "start")
	log.InfoContext(ctx, "Handling /start command", "chat_id", msg.Chat.ID, "user_id", msg.From.ID)

	user := &database.User{
		ChatID:    msg.Chat.ID,
		Username:  msg.From.Username,
		FirstName: msg.From.FirstName,
	}
	if err := r.deps.Store.UpsertUser(ctx, user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	markup := &models.ReplyKeyboardMarkup{
		Keyboard: [][]models.KeyboardButton{
			{{Text: "Share Contact", RequestContact: true}},
		},
		ResizeKeyboard:  true,
		OneTimeKeyboard: true,
	}

	return r.deps.Replier.Reply(ctx, msg.Chat.ID, msg.ID, r.deps.Config.Messages.Welcome, markup)
}
