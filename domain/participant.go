// Package domain contains core concepts of the chat room.
// This file defines Participant entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

// Participant is a member of the room, identified by a unique
// case-sensitive name. LastSeen is refreshed on every heartbeat
// and decides eviction.
type Participant struct {
	Name     string
	LastSeen time.Time
}

// Expired reports whether the participant has been silent for strictly
// longer than timeout at the given instant. The boundary is exclusive:
// a participant seen exactly timeout ago survives the sweep.
func (p Participant) Expired(now time.Time, timeout time.Duration) bool {
	return now.Sub(p.LastSeen) > timeout
}
