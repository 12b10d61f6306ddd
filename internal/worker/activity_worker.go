// Package worker consumes activity events off the message queue and
// turns them into operational signals: per-profile counters and a
// periodic digest in the logs. It runs as its own binary so the web
// process never blocks on queue work.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"omnibudget/internal/amqp"
	"omnibudget/internal/core"
)

// ActivityWorker aggregates consumed events. Counters reset every time
// a digest is flushed.
type ActivityWorker struct {
	mu           sync.Mutex
	transactions map[string]int64
	volumeCents  map[string]int64
	badges       int64
	since        time.Time
}

func NewActivityWorker() *ActivityWorker {
	return &ActivityWorker{
		transactions: make(map[string]int64),
		volumeCents:  make(map[string]int64),
		since:        time.Now(),
	}
}

// HandleActivity is the queue consumption callback. A nil error acks
// the delivery.
func (w *ActivityWorker) HandleActivity(msg *amqp.ActivityMessage) error {
	if msg == nil {
		return fmt.Errorf("nil activity message")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	switch msg.Kind {
	case amqp.KindTransactionRecorded:
		w.transactions[msg.Profile]++
		w.volumeCents[msg.Profile] += msg.AmountCents
		slog.Info("Transaction activity",
			"user_id", msg.UserID,
			"profile", msg.Profile,
			"category", msg.Detail,
			"amount", core.Money{Cents: msg.AmountCents}.Format())
	case amqp.KindBadgeAwarded:
		w.badges++
		slog.Info("Badge awarded",
			"user_id", msg.UserID,
			"profile", msg.Profile,
			"badge", msg.Detail)
	default:
		// Ack unknown kinds instead of erroring: a handler error
		// requeues, and an unknown kind would loop forever.
		slog.Warn("Dropping activity event of unknown kind", "kind", msg.Kind, "user_id", msg.UserID)
	}

	return nil
}

// Digest summarizes activity since the last flush.
type Digest struct {
	Since        time.Time
	Transactions map[string]int64
	VolumeCents  map[string]int64
	Badges       int64
}

// Flush returns the accumulated digest and resets the counters.
func (w *ActivityWorker) Flush() Digest {
	w.mu.Lock()
	defer w.mu.Unlock()

	d := Digest{
		Since:        w.since,
		Transactions: w.transactions,
		VolumeCents:  w.volumeCents,
		Badges:       w.badges,
	}
	w.transactions = make(map[string]int64)
	w.volumeCents = make(map[string]int64)
	w.badges = 0
	w.since = time.Now()
	return d
}

// RunDigest logs a digest on every tick until the context is canceled.
func (w *ActivityWorker) RunDigest(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d := w.Flush()
			var total int64
			for _, n := range d.Transactions {
				total += n
			}
			slog.Info("Activity digest",
				"since", d.Since.Format(time.RFC3339),
				"transactions", total,
				"badges", d.Badges,
				"profiles", len(d.Transactions))
		}
	}
}
