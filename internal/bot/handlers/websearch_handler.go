package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot/models"
)

// handleWebSearch prompts for a query and marks the chat's next text
// message as the search input.
func (r *Router) handleWebSearch(ctx context.Context, msg *models.Message) error {
	r.log.InfoContext(ctx, "Web search initiated", "chat_id", msg.Chat.ID)

	if err := r.deps.Replier.Reply(ctx, msg.Chat.ID, msg.ID, r.deps.Config.Messages.SearchPrompt, nil); err != nil {
		return err
	}

	r.deps.Pending.Set(msg.Chat.ID, StepSearchQuery)
	return nil
}

// handleSearch runs the search pipeline on the query text and renders
// the summary with a bulleted source list.
func (r *Router) handleSearch(ctx context.Context, msg *models.Message) error {
	log := r.log.With("handler", "search")
	log.InfoContext(ctx, "Performing web search", "chat_id", msg.Chat.ID)

	r.deps.Replier.SendTyping(ctx, msg.Chat.ID)

	summary, links, err := r.deps.Search.SearchAndSummarize(ctx, msg.Text)
	if err != nil {
		return fmt.Errorf("web search failed: %w", err)
	}

	var b strings.Builder
	b.WriteString("Here's what I found:\n\n")
	b.WriteString(summary)
	b.WriteString("\n\nSources:\n")
	for i, link := range links {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("• ")
		b.WriteString(link)
	}

	return r.deps.Replier.Reply(ctx, msg.Chat.ID, msg.ID, b.String(), nil)
}
