// Package realtime fans change notifications out to every connected
// dashboard session. Events are hints to re-read the store, not records:
// delivery is best-effort, unordered across sessions and never replayed.
package realtime

import (
	"context"
	"encoding/json"
	"strconv"
	"time"
)

type EventType string

const (
	EventAppointmentUpdate   EventType = "appointment_update"
	EventTokenUpdate         EventType = "token_update"
	EventEmergencyAlert      EventType = "emergency_alert"
	EventPrescriptionCreated EventType = "prescription_created"
)

// Event is the envelope sent to subscribers.
type Event struct {
	Type      EventType       `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// inbound is what a session may send; the hub stamps the timestamp.
type inbound struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Publisher is what services use to announce a change. Publishing never
// fails from the caller's point of view.
type Publisher interface {
	Publish(ctx context.Context, eventType EventType, data any)
}

type originKey struct{}

// WithOrigin marks ctx as coming from the given session, which is then left
// out of the fan-out for events published under ctx.
func WithOrigin(ctx context.Context, sessionID string) context.Context {
	if sessionID == "" {
		return ctx
	}
	return context.WithValue(ctx, originKey{}, sessionID)
}

// SessionKey scopes a client-chosen session name to the user who chose it,
// so one user can never name another user's session. An empty name stays
// empty.
func SessionKey(userID int64, name string) string {
	if name == "" {
		return ""
	}
	return strconv.FormatInt(userID, 10) + ":" + name
}

func OriginFrom(ctx context.Context) string {
	s, _ := ctx.Value(originKey{}).(string)
	return s
}

// Discard drops every event. Useful where no hub is running, such as the
// seed command.
type Discard struct{}

func (Discard) Publish(context.Context, EventType, any) {}
