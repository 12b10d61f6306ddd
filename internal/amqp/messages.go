package amqp

import (
	"encoding/json"
	"time"
)

const (
	KindTransactionRecorded = "transaction_recorded"
	KindBadgeAwarded        = "badge_awarded"
)

// ActivityMessage is a lightweight event emitted after a domain operation
// completes. Consumers (the notification worker) fetch nothing extra: the
// message carries everything needed for a user-facing notification.
type ActivityMessage struct {
	Kind        string    `json:"kind"`
	UserID      int64     `json:"user_id"`
	Profile     string    `json:"profile"`
	Detail      string    `json:"detail"`
	AmountCents int64     `json:"amount_cents,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewActivityMessage(kind string, userID int64, profile, detail string, amountCents int64) *ActivityMessage {
	return &ActivityMessage{
		Kind:        kind,
		UserID:      userID,
		Profile:     profile,
		Detail:      detail,
		AmountCents: amountCents,
		Timestamp:   time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *ActivityMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ActivityMessageFromJSON creates a message from JSON bytes.
func ActivityMessageFromJSON(data []byte) (*ActivityMessage, error) {
	var msg ActivityMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
