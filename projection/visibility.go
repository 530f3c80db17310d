// Package projection builds per-participant views from the message log.
// Handles visibility filtering and tail trimming. It never mutates the
// log and never talks to storage directly.
package projection

import (
	"github.com/samber/lo"

	"github.com/ga-dutra/batepapo-uol-api/domain"
)

// Filter returns the messages visible to name, preserving order:
// broadcasts, messages addressed to name, and messages name authored.
func Filter(messages []domain.Message, name string, broadcast domain.Broadcast) []domain.Message {
	return lo.Filter(messages, func(msg domain.Message, _ int) bool {
		return msg.VisibleTo(name, broadcast)
	})
}

// Tail returns the last n messages in original order. A nil limit, a
// non-positive limit, or a limit beyond the length returns the whole
// sequence unchanged.
func Tail(messages []domain.Message, n *int) []domain.Message {
	if n == nil || *n <= 0 || *n >= len(messages) {
		return messages
	}
	return messages[len(messages)-*n:]
}
