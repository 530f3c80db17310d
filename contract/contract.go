//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"github.com/ga-dutra/batepapo-uol-api/domain"
	"github.com/google/uuid"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker
// lifecycle events, avoiding manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IRegistry tracks room membership and liveness. Join, Heartbeat and
// EvictExpired are mutually atomic per participant name.
type IRegistry interface {
	Join(name string) (domain.Participant, error)
	Heartbeat(name string) error
	List() ([]domain.Participant, error)
	EvictExpired(now time.Time, timeout time.Duration) ([]domain.Participant, error)
}

// IMessageLog is the append-ordered message collection with visibility
// filtering and ownership-gated mutation.
type IMessageLog interface {
	Append(msg domain.Message) (domain.Message, error)
	VisibleTo(name string) ([]domain.Message, error)
	Edit(id uuid.UUID, requester, newText string) error
	Delete(id uuid.UUID, requester string) error
}
