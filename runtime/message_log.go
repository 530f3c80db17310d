package runtime

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ga-dutra/batepapo-uol-api/domain"
	"github.com/ga-dutra/batepapo-uol-api/errors"
	"github.com/ga-dutra/batepapo-uol-api/projection"
	"github.com/ga-dutra/batepapo-uol-api/repositories"
)

// MessageLog is the append-ordered message collection. Visibility is
// filtered at read time over the full log rather than kept as
// per-participant inboxes; at single-room scale the simpler read path
// wins over fan-out bookkeeping.
type MessageLog struct {
	mu        sync.Mutex
	messages  repositories.IMessageRepository
	broadcast domain.Broadcast
	now       func() time.Time
}

func NewMessageLog(messages repositories.IMessageRepository, broadcast domain.Broadcast) *MessageLog {
	return &MessageLog{
		messages:  messages,
		broadcast: broadcast,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock substitutes the time source used to stamp new messages.
func (l *MessageLog) WithClock(now func() time.Time) *MessageLog {
	l.now = now
	return l
}

// Append assigns the message a fresh id and timestamp and persists it.
// Safe under arbitrary concurrency: ids are unique and the store keeps
// insertion order even for messages stamped with the same instant.
func (l *MessageLog) Append(msg domain.Message) (domain.Message, error) {
	msg.ID = uuid.New()
	if msg.At.IsZero() {
		msg.At = l.now()
	}
	if err := l.messages.InsertOne(msg); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// VisibleTo returns name's view of the log, oldest to newest: every
// broadcast, every message addressed to name, and every message name
// sent (authors always see their own private messages).
func (l *MessageLog) VisibleTo(name string) ([]domain.Message, error) {
	all, err := l.messages.FindAll()
	if err != nil {
		return nil, err
	}
	return projection.Filter(all, name, l.broadcast), nil
}

// Edit replaces the text of an existing message. Only the author may
// edit; id, addressing, kind and timestamp are immutable. The lock
// keeps a concurrent Delete on the same id from leaving a half-updated
// record: the loser of the race observes ErrNotFound.
func (l *MessageLog) Edit(id uuid.UUID, requester, newText string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg, err := l.messages.FindByID(id)
	if err != nil {
		return err
	}
	if msg.From != requester {
		return errors.ErrForbidden
	}
	msg.Text = newText
	return l.messages.UpdateOne(msg)
}

// Delete removes a message entirely, with the same existence and
// ownership checks as Edit.
func (l *MessageLog) Delete(id uuid.UUID, requester string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	msg, err := l.messages.FindByID(id)
	if err != nil {
		return err
	}
	if msg.From != requester {
		return errors.ErrForbidden
	}
	return l.messages.DeleteOne(id)
}
