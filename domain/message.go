// Package domain contains core concepts of the chat room.
// This file defines Message events and addressing rules.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Kind classifies the addressing of a message.
type Kind string

const (
	// KindMessage is a public chat message.
	KindMessage Kind = "message"
	// KindPrivate is a directed message, visible to author and addressee.
	KindPrivate Kind = "private_message"
	// KindStatus is a system notice (join/leave). Never client-originated.
	KindStatus Kind = "status"
)

const (
	// StatusJoined and StatusLeft are the system notice texts, kept as
	// the legacy API emitted them.
	StatusJoined = "entra na sala..."
	StatusLeft   = "sai da sala..."
)

// ClientKind reports whether k may be supplied by a client.
func ClientKind(k Kind) bool {
	return k == KindMessage || k == KindPrivate
}

// Message is a chat event. From is always set by the system from the
// acting identity, never from a client-supplied body field. Only Text
// is mutable, and only by the author.
type Message struct {
	ID   uuid.UUID
	From string
	To   string
	Kind Kind
	Text string
	At   time.Time
}

// Broadcast holds the reserved "to" values meaning "visible to all".
type Broadcast struct {
	names map[string]struct{}
}

// NewBroadcast builds a broadcast sentinel set. With no names it falls
// back to the legacy defaults "Todos" and "All".
func NewBroadcast(names ...string) Broadcast {
	if len(names) == 0 {
		names = []string{"Todos", "All"}
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return Broadcast{names: set}
}

// Matches reports whether to is a broadcast target.
func (b Broadcast) Matches(to string) bool {
	_, ok := b.names[to]
	return ok
}

// Primary returns the canonical sentinel used when the system itself
// addresses the whole room.
func (b Broadcast) Primary() string {
	for _, n := range []string{"Todos", "All"} {
		if _, ok := b.names[n]; ok {
			return n
		}
	}
	for n := range b.names {
		return n
	}
	return "Todos"
}

// VisibleTo reports whether the message appears in name's view of the
// log: broadcasts, messages addressed to name, and messages name sent.
func (m Message) VisibleTo(name string, broadcast Broadcast) bool {
	return broadcast.Matches(m.To) || m.To == name || m.From == name
}
