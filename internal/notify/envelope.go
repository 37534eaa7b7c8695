package notify

import (
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Envelope wraps an event payload with identity and timing. It is the
// wire format on every sink.
type Envelope struct {
	ID         string    `json:"event_id"`
	Event      string    `json:"event"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`

	raw []byte
}

// NewEnvelope creates an envelope with a random UUID and pre-encoded JSON.
func NewEnvelope(event string, payload any, at time.Time) (Envelope, error) {
	env := Envelope{
		ID:         uuid.NewString(),
		Event:      event,
		OccurredAt: at.UTC(),
		Payload:    payload,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return Envelope{}, err
	}
	env.raw = raw
	return env, nil
}

// JSON returns the encoded envelope.
func (e Envelope) JSON() ([]byte, error) {
	if e.raw != nil {
		return e.raw, nil
	}
	return json.Marshal(e)
}
