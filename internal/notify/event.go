// Package notify delivers change notifications for writes that went through
// the persistence facade. Delivery is fire-and-forget: a failed or slow sink
// never fails or delays the write that produced the event.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names what happened.
type EventType string

const (
	EventReviewCreated  EventType = "review.created"
	EventMovieCreated   EventType = "movie.created"
	EventMovieDeleted   EventType = "movie.deleted"
	EventUserRegistered EventType = "user.registered"
)

// Event is the payload published for every successful write.
type Event struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	MovieID    int64     `json:"movie_id,omitempty"`
	UserEmail  string    `json:"user_email,omitempty"`
	Rating     int       `json:"rating,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewEvent stamps an event with a fresh identifier and the current time.
func NewEvent(t EventType) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       t,
		OccurredAt: time.Now().UTC(),
	}
}

// Notifier accepts events. Implementations must not block on delivery and
// must not report delivery failures to the caller.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Sink is the final destination of an event.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event Event) error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}
