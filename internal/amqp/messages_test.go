package amqp

import (
	"testing"
	"time"
)

func TestActivityMessageRoundTrip(t *testing.T) {
	msg := NewActivityMessage(KindBadgeAwarded, 5, "explorer", "First Transaction", 0)
	if msg.Timestamp.IsZero() {
		t.Fatalf("timestamp not set")
	}

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := ActivityMessageFromJSON(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Kind != KindBadgeAwarded || got.UserID != 5 || got.Profile != "explorer" || got.Detail != "First Transaction" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if !got.Timestamp.Truncate(time.Second).Equal(msg.Timestamp.Truncate(time.Second)) {
		t.Fatalf("timestamp mismatch: %v vs %v", got.Timestamp, msg.Timestamp)
	}
}

func TestActivityMessageFromJSONInvalid(t *testing.T) {
	if _, err := ActivityMessageFromJSON([]byte("not json")); err == nil {
		t.Fatalf("expected error for invalid payload")
	}
}
