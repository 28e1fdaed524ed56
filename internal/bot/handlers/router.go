package handlers

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// EventKind classifies an incoming message into one dispatch pipeline.
type EventKind int

const (
	// EventNone marks messages with nothing to handle.
	EventNone EventKind = iota
	// EventCommand marks messages starting with a slash command.
	EventCommand
	// EventContact marks shared contact cards.
	EventContact
	// EventPhoto marks photo attachments.
	EventPhoto
	// EventDocument marks document attachments.
	EventDocument
	// EventText marks plain text messages.
	EventText
)

// String returns the kind name used in dispatch logs.
func (k EventKind) String() string {
	switch k {
	case EventCommand:
		return "command"
	case EventContact:
		return "contact"
	case EventPhoto:
		return "photo"
	case EventDocument:
		return "document"
	case EventText:
		return "text"
	default:
		return "none"
	}
}

// Classify determines the pipeline for a message. Attachments win over
// text: a photo with a caption is a photo event. For commands the
// second return value carries the bare command name, lowercased, with
// any @botname suffix stripped.
func Classify(msg *models.Message) (EventKind, string) {
	if msg == nil {
		return EventNone, ""
	}

	switch {
	case msg.Contact != nil:
		return EventContact, ""
	case len(msg.Photo) > 0:
		return EventPhoto, ""
	case msg.Document != nil:
		return EventDocument, ""
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return EventNone, ""
	}

	if strings.HasPrefix(text, "/") && len(text) > 1 {
		command := strings.Fields(text)[0][1:]
		if at := strings.Index(command, "@"); at >= 0 {
			command = command[:at]
		}
		if command != "" {
			return EventCommand, strings.ToLower(command)
		}
	}

	return EventText, ""
}

// Router dispatches incoming messages to handlers and is the single
// place where handler errors become user-facing apology replies.
type Router struct {
	deps HandlerDeps
	log  *slog.Logger
}

// NewRouter creates a Router over the given dependencies.
func NewRouter(deps HandlerDeps) *Router {
	return &Router{
		deps: deps,
		log:  deps.Logger.With("component", "router"),
	}
}

// HandleUpdate adapts the Router to the bot library's handler
// signature so it can be registered as the default handler.
func (r *Router) HandleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	if update == nil || update.Message == nil {
		return
	}
	r.Dispatch(ctx, update.Message)
}

// Dispatch routes one message. Unrecognized commands fall through to
// the chat handler. A pending search step is consumed by the next text
// message; issuing a new command first cancels it.
func (r *Router) Dispatch(ctx context.Context, msg *models.Message) {
	kind, command := Classify(msg)
	if kind == EventNone {
		return
	}

	chatID := msg.Chat.ID
	msgs := r.deps.Config.Messages

	var (
		name    string
		apology string
		err     error
	)

	switch kind {
	case EventCommand:
		r.deps.Pending.Clear(chatID)

		switch command {
		case "start":
			name, apology = "start", msgs.ErrorStart
			err = r.handleStart(ctx, msg)
		case "help":
			name, apology = "help", msgs.ErrorHelp
			err = r.handleHelp(ctx, msg)
		case "websearch":
			name, apology = "websearch", msgs.ErrorWebSearch
			err = r.handleWebSearch(ctx, msg)
		case "stats":
			name, apology = "stats", msgs.ErrorStats
			err = r.handleStats(ctx, msg)
		default:
			name, apology = "chat", msgs.ErrorChat
			err = r.handleChat(ctx, msg)
		}

	case EventContact:
		name, apology = "contact", msgs.ErrorContact
		err = r.handleContact(ctx, msg)

	case EventPhoto:
		name, apology = "photo", msgs.ErrorPhoto
		err = r.handlePhoto(ctx, msg)

	case EventDocument:
		name, apology = "document", msgs.ErrorDocument
		err = r.handleDocument(ctx, msg)

	case EventText:
		if step, ok := r.deps.Pending.Take(chatID); ok && step == StepSearchQuery {
			name, apology = "search", msgs.ErrorSearch
			err = r.handleSearch(ctx, msg)
			break
		}
		name, apology = "chat", msgs.ErrorChat
		err = r.handleChat(ctx, msg)
	}

	if err == nil {
		return
	}

	r.log.ErrorContext(ctx, "Handler failed", "handler", name, "chat_id", chatID, "error", err)
	if sendErr := r.deps.Replier.Reply(ctx, chatID, msg.ID, apology, nil); sendErr != nil {
		r.log.ErrorContext(ctx, "Failed to send apology reply", "handler", name, "chat_id", chatID, "error", sendErr)
	}
}
