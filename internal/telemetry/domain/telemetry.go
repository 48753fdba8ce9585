package domain

import (
	"encoding/json"
	"time"
)

// Event is one handshake telemetry event. It is serialized as JSON for the
// Kafka topic and re-parsed by the worker for Loki labels.
type Event struct {
	EventType  string          `json:"event_type"`
	Source     string          `json:"source"`
	TelegramID int64           `json:"telegram_id,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
