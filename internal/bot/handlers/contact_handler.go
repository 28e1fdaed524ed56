package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot/models"
)

// handleContact stores the shared phone number on the user's existing
// record. An unregistered chat is a store-level no-op; either way the
// contact keyboard is removed.
func (r *Router) handleContact(ctx context.Context, msg *models.Message) error {
	if msg.Contact == nil {
		return fmt.Errorf("contact event without contact payload")
	}

	log := r.log.With("handler", "contact")
	log.InfoContext(ctx, "Handling shared contact", "chat_id", msg.Chat.ID)

	if err := r.deps.Store.SetPhoneNumber(ctx, msg.Chat.ID, msg.Contact.PhoneNumber); err != nil {
		return fmt.Errorf("failed to save phone number: %w", err)
	}

	markup := &models.ReplyKeyboardRemove{RemoveKeyboard: true}
	return r.deps.Replier.Reply(ctx, msg.Chat.ID, msg.ID, r.deps.Config.Messages.ContactSaved, markup)
}
