package amqp

import (
	"encoding/json"
	"time"
)

// SnapshotReplacedMessage announces that a fetch cycle succeeded and the
// working record collection was replaced wholesale. Consumers re-read the
// API; the message deliberately carries no record data.
type SnapshotReplacedMessage struct {
	SheetID   string    `json:"sheet_id"`
	GID       string    `json:"gid"`
	Records   int       `json:"records"`
	FetchedAt time.Time `json:"fetched_at"`
}

// ExpenseSubmittedMessage announces that a record was accepted by the
// write-back endpoint. The record is provisional until the next fetch
// confirms it.
type ExpenseSubmittedMessage struct {
	ProvisionalID string    `json:"provisional_id"`
	Description   string    `json:"description"`
	Amount        string    `json:"amount"`
	Category      string    `json:"category"`
	SubmittedAt   time.Time `json:"submitted_at"`
}

func (m *SnapshotReplacedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func (m *ExpenseSubmittedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// SnapshotReplacedMessageFromJSON decodes a snapshot event.
func SnapshotReplacedMessageFromJSON(data []byte) (*SnapshotReplacedMessage, error) {
	var msg SnapshotReplacedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ExpenseSubmittedMessageFromJSON decodes a submission event.
func ExpenseSubmittedMessageFromJSON(data []byte) (*ExpenseSubmittedMessage, error) {
	var msg ExpenseSubmittedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
