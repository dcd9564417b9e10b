package outbox

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ActorRef names the retailer or operator that triggered an event. All
// fields are optional; system-initiated events carry no actor at all.
type ActorRef struct {
	RetailerID *uuid.UUID `json:"retailerId,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Role       string     `json:"role,omitempty"`
}

// PayloadEnvelope is what actually lands in the outbox_events payload
// column. Consumers key their idempotency checks on EventID, so the shape
// and field names must stay stable across releases.
type PayloadEnvelope struct {
	Version    int             `json:"version"`
	EventID    string          `json:"eventId"`
	OccurredAt time.Time       `json:"occurredAt"`
	Actor      *ActorRef       `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}
