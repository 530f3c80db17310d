// Package runtime coordinates concurrent access to the participant
// registry and the message log. It owns the locking; business rules
// live in domain and storage lives in repositories.
package runtime

import (
	"sync"
	"time"

	"github.com/ga-dutra/batepapo-uol-api/domain"
	"github.com/ga-dutra/batepapo-uol-api/repositories"
)

// Registry tracks active participants and their last heartbeat.
//
// The mutex serializes Join, Heartbeat and EvictExpired so that a
// heartbeat landing before the expiry check always wins the sweep,
// and a heartbeat landing after an eviction observes ErrNotFound.
type Registry struct {
	mu           sync.Mutex
	participants repositories.IParticipantRepository
	now          func() time.Time
}

func NewRegistry(participants repositories.IParticipantRepository) *Registry {
	return &Registry{
		participants: participants,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock substitutes the time source. Tests use it to simulate
// elapsed time instead of sleeping.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Join registers a new participant. The name is a case-sensitive exact
// key; a second join with the same name fails with ErrNameTaken and
// leaves the first registration untouched.
func (r *Registry) Join(name string) (domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	participant := domain.Participant{Name: name, LastSeen: r.now()}
	if err := r.participants.InsertOne(participant); err != nil {
		return domain.Participant{}, err
	}
	return participant, nil
}

// Heartbeat refreshes LastSeen. An unknown or already-evicted name
// fails with ErrNotFound and requires a fresh Join.
func (r *Registry) Heartbeat(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	participant, err := r.participants.FindByName(name)
	if err != nil {
		return err
	}
	participant.LastSeen = r.now()
	return r.participants.UpdateOne(participant)
}

// List returns a snapshot of all current participants. Order is the
// repository's key order and stable within a single call.
func (r *Registry) List() ([]domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.participants.FindAll()
}

// EvictExpired removes and returns every participant silent for
// strictly longer than timeout at the given instant. The lock is
// released before the caller appends any departure notice.
func (r *Registry) EvictExpired(now time.Time, timeout time.Duration) ([]domain.Participant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.participants.FindAll()
	if err != nil {
		return nil, err
	}

	var evicted []domain.Participant
	for _, participant := range all {
		if !participant.Expired(now, timeout) {
			continue
		}
		if err := r.participants.DeleteOne(participant.Name); err != nil {
			return evicted, err
		}
		evicted = append(evicted, participant)
	}
	return evicted, nil
}
