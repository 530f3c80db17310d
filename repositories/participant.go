//go:generate go run go.uber.org/mock/mockgen -source=participant.go -destination=../mocks/mock_participant_repository.go -package=mocks
package repositories

import (
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"

	"github.com/ga-dutra/batepapo-uol-api/domain"
	"github.com/ga-dutra/batepapo-uol-api/errors"
)

const participantPrefix = "participant:"

type IParticipantRepository interface {
	InsertOne(p domain.Participant) error
	FindByName(name string) (domain.Participant, error)
	UpdateOne(p domain.Participant) error
	DeleteOne(name string) error
	FindAll() ([]domain.Participant, error)
}

type ParticipantRepository struct {
	db *badger.DB
}

func NewParticipantRepository(db *badger.DB) ParticipantRepository {
	return ParticipantRepository{db: db}
}

// diskParticipant is the stored shape of a participant. LastSeen is
// kept as unix nanoseconds to stay comparable across restarts.
type diskParticipant struct {
	Name     string `cbor:"1,keyasint"`
	LastSeen int64  `cbor:"2,keyasint"`
}

func participantKey(name string) []byte {
	return []byte(participantPrefix + name)
}

// InsertOne persists a new participant. The existence check and the
// write share one transaction, so two concurrent inserts of the same
// name cannot both succeed.
func (r ParticipantRepository) InsertOne(p domain.Participant) error {
	data, err := cbor.Marshal(fromParticipant(p))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		key := participantKey(p.Name)
		if _, err := txn.Get(key); err == nil {
			return errors.ErrNameTaken
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		return txn.Set(key, data)
	})
	return asStoreErr(err)
}

func (r ParticipantRepository) FindByName(name string) (domain.Participant, error) {
	var disk diskParticipant
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(participantKey(name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &disk)
		})
	})
	if err == badger.ErrKeyNotFound {
		return domain.Participant{}, errors.ErrNotFound
	}
	if err != nil {
		return domain.Participant{}, asStoreErr(err)
	}
	return toParticipant(disk), nil
}

// UpdateOne rewrites an existing participant record, typically to
// refresh LastSeen. A missing record is reported as ErrNotFound.
func (r ParticipantRepository) UpdateOne(p domain.Participant) error {
	data, err := cbor.Marshal(fromParticipant(p))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		key := participantKey(p.Name)
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return errors.ErrNotFound
		} else if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	return asStoreErr(err)
}

func (r ParticipantRepository) DeleteOne(name string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		key := participantKey(name)
		if _, err := txn.Get(key); err == badger.ErrKeyNotFound {
			return errors.ErrNotFound
		} else if err != nil {
			return err
		}
		return txn.Delete(key)
	})
	return asStoreErr(err)
}

// FindAll returns every participant, in key order. The order is stable
// within a call, which is all the listing contract promises.
func (r ParticipantRepository) FindAll() ([]domain.Participant, error) {
	var participants []domain.Participant
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(participantPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var disk diskParticipant
			err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &disk)
			})
			if err != nil {
				return err
			}
			participants = append(participants, toParticipant(disk))
		}
		return nil
	})
	if err != nil {
		return nil, asStoreErr(err)
	}
	return participants, nil
}

func fromParticipant(p domain.Participant) diskParticipant {
	return diskParticipant{Name: p.Name, LastSeen: p.LastSeen.UnixNano()}
}

func toParticipant(disk diskParticipant) domain.Participant {
	return domain.Participant{
		Name:     disk.Name,
		LastSeen: time.Unix(0, disk.LastSeen).UTC(),
	}
}
