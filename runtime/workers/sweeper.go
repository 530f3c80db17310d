package workers

import (
	"context"
	"log/slog"
	"time"

	"github.com/ga-dutra/batepapo-uol-api/contract"
	"github.com/ga-dutra/batepapo-uol-api/domain"
)

// PresenceSweeper evicts participants that stopped heartbeating and
// posts a departure notice for each of them. It is the only writer
// that removes participants due to timeout.
//
// Defaults follow the legacy service: a 10s liveness timeout checked
// every 15s. The two are independent, so a participant silent for
// slightly more than the timeout survives until the next tick; eviction
// latency is bounded by timeout + interval without per-participant
// timers.
type PresenceSweeper struct {
	log       *slog.Logger
	registry  contract.IRegistry
	messages  contract.IMessageLog
	broadcast domain.Broadcast
	interval  time.Duration
	timeout   time.Duration
	now       func() time.Time
}

func NewPresenceSweeper(
	log *slog.Logger,
	registry contract.IRegistry,
	messages contract.IMessageLog,
	broadcast domain.Broadcast,
	interval, timeout time.Duration,
) *PresenceSweeper {
	return &PresenceSweeper{
		log:       log,
		registry:  registry,
		messages:  messages,
		broadcast: broadcast,
		interval:  interval,
		timeout:   timeout,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock substitutes the time source used to evaluate expiry.
func (w *PresenceSweeper) WithClock(now func() time.Time) *PresenceSweeper {
	w.now = now
	return w
}

// Run ticks every interval until the context is canceled. Ticks of one
// sweeper never overlap: the loop calls Sweep synchronously. Errors
// are transient by definition here; a failed tick is logged and
// abandoned, and the sweeper stays alive for the next one.
func (w *PresenceSweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("Starting presence sweeper", "interval", w.interval, "timeout", w.timeout)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep performs a single eviction pass. Exported so tests can drive
// ticks deterministically with a simulated clock.
//
// Eviction and notification are two steps: the registry lock is long
// gone by the time notices are appended. A crash in between leaves an
// evicted participant without its departure notice, which the registry
// contract tolerates.
func (w *PresenceSweeper) Sweep(ctx context.Context) {
	evicted, err := w.registry.EvictExpired(w.now(), w.timeout)
	if err != nil {
		w.log.Error("Eviction pass failed, abandoning tick", "err", err)
		return
	}
	if len(evicted) == 0 {
		return
	}

	for _, participant := range evicted {
		if ctx.Err() != nil {
			return
		}
		_, err := w.messages.Append(domain.Message{
			From: participant.Name,
			To:   w.broadcast.Primary(),
			Kind: domain.KindStatus,
			Text: domain.StatusLeft,
		})
		if err != nil {
			w.log.Error("Departure notice lost", "participant", participant.Name, "err", err)
			continue
		}
		w.log.Info("Participant evicted", "participant", participant.Name, "lastSeen", participant.LastSeen)
	}
}
