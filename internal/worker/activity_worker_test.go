package worker

import (
	"testing"

	"omnibudget/internal/amqp"
)

func TestHandleActivityCounts(t *testing.T) {
	w := NewActivityWorker()

	msgs := []*amqp.ActivityMessage{
		amqp.NewActivityMessage(amqp.KindTransactionRecorded, 1, "builder", "Groceries", 120_50),
		amqp.NewActivityMessage(amqp.KindTransactionRecorded, 1, "builder", "Rent", 800_00),
		amqp.NewActivityMessage(amqp.KindTransactionRecorded, 2, "explorer", "Pocket Money", 5_00),
		amqp.NewActivityMessage(amqp.KindBadgeAwarded, 2, "explorer", "First Transaction", 0),
	}
	for _, m := range msgs {
		if err := w.HandleActivity(m); err != nil {
			t.Fatalf("handle %s: %v", m.Kind, err)
		}
	}

	d := w.Flush()
	if d.Transactions["builder"] != 2 || d.Transactions["explorer"] != 1 {
		t.Fatalf("transactions = %v", d.Transactions)
	}
	if d.VolumeCents["builder"] != 920_50 {
		t.Fatalf("builder volume = %d, want 92050", d.VolumeCents["builder"])
	}
	if d.Badges != 1 {
		t.Fatalf("badges = %d, want 1", d.Badges)
	}

	// Flush resets the counters.
	if d := w.Flush(); len(d.Transactions) != 0 || d.Badges != 0 {
		t.Fatalf("second flush not empty: %+v", d)
	}
}

func TestHandleActivityUnknownKinds(t *testing.T) {
	w := NewActivityWorker()

	if err := w.HandleActivity(nil); err == nil {
		t.Fatalf("nil message accepted")
	}
	// Unknown kinds are dropped with an ack, never requeued.
	if err := w.HandleActivity(amqp.NewActivityMessage("mystery", 1, "pacer", "", 0)); err != nil {
		t.Fatalf("unknown kind errored: %v", err)
	}
	if d := w.Flush(); len(d.Transactions) != 0 || d.Badges != 0 {
		t.Fatalf("unknown kind counted: %+v", d)
	}
}
