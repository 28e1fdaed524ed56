package handlers

import "sync"

// Step identifies what the next plain text message from a chat should
// be interpreted as.
type Step string

// StepSearchQuery marks that the chat's next text message is a web
// search query rather than a chat prompt.
const StepSearchQuery Step = "search_query"

// PendingSteps tracks per-chat conversation steps. A step is consumed
// exactly once: Take removes it, so two concurrent messages from the
// same chat cannot both be treated as the pending input.
type PendingSteps struct {
	mu    sync.Mutex
	steps map[int64]Step
}

// NewPendingSteps creates an empty step table.
func NewPendingSteps() *PendingSteps {
	return &PendingSteps{steps: make(map[int64]Step)}
}

// Set records the step awaiting the chat's next text message,
// replacing any previous one.
func (p *PendingSteps) Set(chatID int64, step Step) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps[chatID] = step
}

// Take removes and returns the chat's pending step, if any.
func (p *PendingSteps) Take(chatID int64) (Step, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	step, ok := p.steps[chatID]
	if ok {
		delete(p.steps, chatID)
	}
	return step, ok
}

// Clear drops the chat's pending step without returning it.
func (p *PendingSteps) Clear(chatID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.steps, chatID)
}
