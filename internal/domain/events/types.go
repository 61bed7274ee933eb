package events

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventType string

const (
	TypePublic  EventType = "public"
	TypePrivate EventType = "private"
)

type AttendeeRole string

const (
	RoleHost  AttendeeRole = "host"
	RoleGuest AttendeeRole = "guest"
)

type Attendee struct {
	Email string       `bson:"attendee" json:"attendee"`
	Role  AttendeeRole `bson:"role" json:"role"`
}

type Event struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Name      string             `bson:"name"`
	StartDate time.Time          `bson:"start_date"`
	EndDate   time.Time          `bson:"end_date"`
	EventType EventType          `bson:"event_type"`
	Attendees []Attendee         `bson:"attendees"`
}

func (e Event) IsHost(email string) bool {
	for _, a := range e.Attendees {
		if a.Email == email && a.Role == RoleHost {
			return true
		}
	}
	return false
}

func (e Event) HasAttendee(email string) bool {
	for _, a := range e.Attendees {
		if a.Email == email {
			return true
		}
	}
	return false
}

// Wire renders the event in its response shape: hex object id, formatted
// timestamps and the raw attendee list.
func (e Event) Wire() map[string]any {
	attendees := make([]map[string]any, len(e.Attendees))
	for i, a := range e.Attendees {
		attendees[i] = map[string]any{
			"attendee": a.Email,
			"role":     string(a.Role),
		}
	}
	return map[string]any{
		"id":         e.ID.Hex(),
		"name":       e.Name,
		"start_date": FormatTime(e.StartDate),
		"end_date":   FormatTime(e.EndDate),
		"event_type": string(e.EventType),
		"attendees":  attendees,
	}
}
