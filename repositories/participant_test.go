package repositories

import (
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"

	"github.com/ga-dutra/batepapo-uol-api/domain"
	"github.com/ga-dutra/batepapo-uol-api/errors"
)

func openTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestParticipantRepository_Insert_And_Find(t *testing.T) {
	req := require.New(t)
	repository := NewParticipantRepository(openTestDB(t))

	lastSeen := time.Now().UTC().Truncate(time.Nanosecond)
	participant := domain.Participant{Name: "alice", LastSeen: lastSeen}

	req.NoError(repository.InsertOne(participant))

	found, err := repository.FindByName("alice")
	req.NoError(err)
	req.Equal(participant, found)
}

func TestParticipantRepository_Insert_Duplicate_Name(t *testing.T) {
	req := require.New(t)
	repository := NewParticipantRepository(openTestDB(t))
	now := time.Now().UTC()

	req.NoError(repository.InsertOne(domain.Participant{Name: "alice", LastSeen: now}))

	// A second insert with the same name must fail and leave exactly
	// one record behind
	err := repository.InsertOne(domain.Participant{Name: "alice", LastSeen: now})
	req.ErrorIs(err, errors.ErrNameTaken)

	all, err := repository.FindAll()
	req.NoError(err)
	req.Len(all, 1)
}

func TestParticipantRepository_Names_Are_Case_Sensitive(t *testing.T) {
	req := require.New(t)
	repository := NewParticipantRepository(openTestDB(t))
	now := time.Now().UTC()

	req.NoError(repository.InsertOne(domain.Participant{Name: "alice", LastSeen: now}))
	req.NoError(repository.InsertOne(domain.Participant{Name: "Alice", LastSeen: now}))

	all, err := repository.FindAll()
	req.NoError(err)
	req.Len(all, 2)
}

func TestParticipantRepository_Update_Refreshes_LastSeen(t *testing.T) {
	req := require.New(t)
	repository := NewParticipantRepository(openTestDB(t))

	joined := time.Now().UTC()
	req.NoError(repository.InsertOne(domain.Participant{Name: "alice", LastSeen: joined}))

	refreshed := joined.Add(5 * time.Second)
	req.NoError(repository.UpdateOne(domain.Participant{Name: "alice", LastSeen: refreshed}))

	found, err := repository.FindByName("alice")
	req.NoError(err)
	req.Equal(refreshed, found.LastSeen)
}

func TestParticipantRepository_Update_Missing(t *testing.T) {
	req := require.New(t)
	repository := NewParticipantRepository(openTestDB(t))

	err := repository.UpdateOne(domain.Participant{Name: "ghost", LastSeen: time.Now().UTC()})
	req.ErrorIs(err, errors.ErrNotFound)
}

func TestParticipantRepository_Delete(t *testing.T) {
	req := require.New(t)
	repository := NewParticipantRepository(openTestDB(t))
	now := time.Now().UTC()

	req.NoError(repository.InsertOne(domain.Participant{Name: "alice", LastSeen: now}))
	req.NoError(repository.DeleteOne("alice"))

	_, err := repository.FindByName("alice")
	req.ErrorIs(err, errors.ErrNotFound)

	// Deleting again reports the absence
	req.ErrorIs(repository.DeleteOne("alice"), errors.ErrNotFound)
}
