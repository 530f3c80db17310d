//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/ga-dutra/batepapo-uol-api/domain"
	"github.com/ga-dutra/batepapo-uol-api/errors"
)

const messagePrefix = "message:"

type IMessageRepository interface {
	InsertOne(msg domain.Message) error
	FindByID(id uuid.UUID) (domain.Message, error)
	UpdateOne(msg domain.Message) error
	DeleteOne(id uuid.UUID) error
	FindAll() ([]domain.Message, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
	seq *atomic.Uint64
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log, seq: &atomic.Uint64{}}
}

type diskMessage struct {
	ID   string `cbor:"1,keyasint"`
	From string `cbor:"2,keyasint"`
	To   string `cbor:"3,keyasint"`
	Kind string `cbor:"4,keyasint"`
	Text string `cbor:"5,keyasint"`
	At   int64  `cbor:"6,keyasint"`
}

// messageKey is formatted as "message:{timestamp_padded}:{seq}:{uuid}" to:
//  1. Ensure chronological iteration using 19-digit zero padding
//     (lexicographical order).
//  2. Keep insertion order for messages stamped with the same
//     nanosecond, using a monotonic 12-digit sequence number. The
//     counter restarts at zero with the process; a nanosecond shared
//     across two process lifetimes cannot happen with a real clock.
//  3. Prevent key collisions, using the UUID as the final component.
func messageKey(msg domain.Message, seq uint64) []byte {
	return []byte(fmt.Sprintf("%s%019d:%012d:%s", messagePrefix, msg.At.UnixNano(), seq, msg.ID))
}

func (m MessageRepository) InsertOne(msg domain.Message) error {
	data, err := cbor.Marshal(fromMessage(msg))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	key := messageKey(msg, m.seq.Add(1))
	err = m.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
	return asStoreErr(err)
}

func (m MessageRepository) FindByID(id uuid.UUID) (domain.Message, error) {
	var found *diskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		disk, _, err := seekByID(txn, id)
		if err != nil {
			return err
		}
		found = &disk
		return nil
	})
	if err != nil {
		return domain.Message{}, asStoreErr(err)
	}
	return toMessage(*found)
}

// UpdateOne rewrites the record in place. The key embeds the original
// timestamp and id, both immutable, so the updated record lands on the
// same key.
func (m MessageRepository) UpdateOne(msg domain.Message) error {
	data, err := cbor.Marshal(fromMessage(msg))
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	err = m.db.Update(func(txn *badger.Txn) error {
		_, key, err := seekByID(txn, msg.ID)
		if err != nil {
			return err
		}
		return txn.Set(key, data)
	})
	return asStoreErr(err)
}

func (m MessageRepository) DeleteOne(id uuid.UUID) error {
	err := m.db.Update(func(txn *badger.Txn) error {
		_, key, err := seekByID(txn, id)
		if err != nil {
			return err
		}
		return txn.Delete(key)
	})
	return asStoreErr(err)
}

// FindAll returns the full log oldest-to-newest. Thanks to the padded
// timestamp in the key, default iteration order is already append
// order; no sort pass is needed.
func (m MessageRepository) FindAll() ([]domain.Message, error) {
	var disks []diskMessage
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(messagePrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var disk diskMessage
			err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &disk)
			})
			if err != nil {
				return err
			}
			disks = append(disks, disk)
		}
		return nil
	})
	if err != nil {
		return nil, asStoreErr(err)
	}

	messages := make([]domain.Message, 0, len(disks))
	for _, disk := range disks {
		msg, err := toMessage(disk)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// seekByID scans the message prefix for the record whose key ends with
// the given id. A linear scan is acceptable at single-room scale; the
// log is already read in full for every visibility query.
func seekByID(txn *badger.Txn, id uuid.UUID) (diskMessage, []byte, error) {
	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()
	prefix := []byte(messagePrefix)
	want := id.String()
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := item.Key()
		if len(key) < len(want) || string(key[len(key)-len(want):]) != want {
			continue
		}
		var disk diskMessage
		err := item.Value(func(val []byte) error {
			return cbor.Unmarshal(val, &disk)
		})
		if err != nil {
			return diskMessage{}, nil, err
		}
		return disk, item.KeyCopy(nil), nil
	}
	return diskMessage{}, nil, errors.ErrNotFound
}

func fromMessage(msg domain.Message) diskMessage {
	return diskMessage{
		ID:   msg.ID.String(),
		From: msg.From,
		To:   msg.To,
		Kind: string(msg.Kind),
		Text: msg.Text,
		At:   msg.At.UnixNano(),
	}
}

func toMessage(disk diskMessage) (domain.Message, error) {
	parsedID, err := uuid.Parse(disk.ID)
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:   parsedID,
		From: disk.From,
		To:   disk.To,
		Kind: domain.Kind(disk.Kind),
		Text: disk.Text,
		At:   time.Unix(0, disk.At).UTC(),
	}, nil
}
