package runtime

import (
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"github.com/ga-dutra/batepapo-uol-api/domain"
	"github.com/ga-dutra/batepapo-uol-api/errors"
	"github.com/ga-dutra/batepapo-uol-api/repositories"
)

const testTimeout = 10 * time.Second

func newTestRegistry(t *testing.T, now func() time.Time) *Registry {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRegistry(repositories.NewParticipantRepository(db)).WithClock(now)
}

func TestRegistry_Join_Duplicate_Fails(t *testing.T) {
	req := require.New(t)
	now := time.Now().UTC()
	registry := newTestRegistry(t, func() time.Time { return now })

	// Given alice joined
	participant, err := registry.Join("alice")
	req.NoError(err)
	req.Equal("alice", participant.Name)
	req.Equal(now, participant.LastSeen)

	// When she joins again
	_, err = registry.Join("alice")

	// Then the second join fails and exactly one record remains
	req.ErrorIs(err, errors.ErrNameTaken)
	all, err := registry.List()
	req.NoError(err)
	req.Len(all, 1)
}

func TestRegistry_Concurrent_Join_Single_Winner(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(t, func() time.Time { return time.Now().UTC() })

	const attempts = 16
	var wg sync.WaitGroup
	outcomes := make(chan error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := registry.Join("alice")
			outcomes <- err
		}()
	}
	wg.Wait()
	close(outcomes)

	var wins, losses int
	for err := range outcomes {
		if err == nil {
			wins++
		} else {
			req.ErrorIs(err, errors.ErrNameTaken)
			losses++
		}
	}
	req.Equal(1, wins)
	req.Equal(attempts-1, losses)
}

func TestRegistry_Heartbeat_Refreshes_LastSeen(t *testing.T) {
	req := require.New(t)
	current := time.Now().UTC()
	registry := newTestRegistry(t, func() time.Time { return current })

	_, err := registry.Join("alice")
	req.NoError(err)

	// When 8 simulated seconds pass and alice heartbeats
	current = current.Add(8 * time.Second)
	req.NoError(registry.Heartbeat("alice"))

	// Then she survives a sweep evaluated after the original deadline
	evicted, err := registry.EvictExpired(current.Add(5*time.Second), testTimeout)
	req.NoError(err)
	req.Empty(evicted)
}

func TestRegistry_Heartbeat_Unknown_Fails(t *testing.T) {
	req := require.New(t)
	registry := newTestRegistry(t, func() time.Time { return time.Now().UTC() })

	req.ErrorIs(registry.Heartbeat("ghost"), errors.ErrNotFound)
}

func TestRegistry_EvictExpired_Boundary(t *testing.T) {
	req := require.New(t)
	current := time.Now().UTC()
	registry := newTestRegistry(t, func() time.Time { return current })

	// stale joined first and will cross the deadline; fresh joined
	// epsilon later and must survive
	_, err := registry.Join("stale")
	req.NoError(err)
	current = current.Add(2 * time.Millisecond)
	_, err = registry.Join("fresh")
	req.NoError(err)

	// now - stale.LastSeen = timeout + 2ms (expired)
	// now - fresh.LastSeen = timeout (not strictly greater: survives)
	sweepAt := current.Add(testTimeout)
	evicted, err := registry.EvictExpired(sweepAt, testTimeout)
	req.NoError(err)

	req.Equal([]string{"stale"},
		lo.Map(evicted, func(p domain.Participant, _ int) string { return p.Name }))

	remaining, err := registry.List()
	req.NoError(err)
	req.Equal([]string{"fresh"},
		lo.Map(remaining, func(p domain.Participant, _ int) string { return p.Name }))
}

func TestRegistry_Heartbeat_After_Eviction_Requires_Rejoin(t *testing.T) {
	req := require.New(t)
	current := time.Now().UTC()
	registry := newTestRegistry(t, func() time.Time { return current })

	_, err := registry.Join("alice")
	req.NoError(err)

	evicted, err := registry.EvictExpired(current.Add(testTimeout+time.Second), testTimeout)
	req.NoError(err)
	req.Len(evicted, 1)

	// A late heartbeat observes the eviction
	req.ErrorIs(registry.Heartbeat("alice"), errors.ErrNotFound)

	// The name is free again
	_, err = registry.Join("alice")
	req.NoError(err)
}
