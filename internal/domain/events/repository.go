package events

import (
	"context"
	"time"
)

// Repository is the storage contract for event documents.
type Repository interface {
	Insert(ctx context.Context, event Event) (Event, error)
	FindByID(ctx context.Context, id string) (Event, error)
	// FindVisible returns events inside [start, end] that are public or
	// that list email as an attendee, ordered by start date.
	FindVisible(ctx context.Context, start, end time.Time, email string) ([]Event, error)
	AddAttendee(ctx context.Context, id string, attendee Attendee) error
	SetFields(ctx context.Context, id string, fields map[string]any) error
}
