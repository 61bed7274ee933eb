package events

import (
	"fmt"
	"time"
)

// TimeLayout is the wire format for event timestamps: a literal 'Z'
// separates the seconds from a numeric UTC offset, e.g.
// "2021-08-16T22:42:00Z-0400".
const TimeLayout = "2006-01-02T15:04:05Z-0700"

// ParseTime accepts the wire layout, falling back to RFC 3339 for clients
// that send plain UTC timestamps.
func ParseTime(value string) (time.Time, error) {
	if t, err := time.Parse(TimeLayout, value); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
	}
	return t, nil
}

func FormatTime(t time.Time) string {
	return t.Format(TimeLayout)
}

// ValidateWindow rejects windows that end before they start. Zero-length
// windows are allowed.
func ValidateWindow(start, end time.Time) error {
	if start.After(end) {
		return ValidationError{Field: "start_date", Message: "start date must not be after end date"}
	}
	return nil
}

func ParseEventType(value string) (EventType, error) {
	switch EventType(value) {
	case TypePublic, TypePrivate:
		return EventType(value), nil
	default:
		return "", ValidationError{Field: "event_type", Message: fmt.Sprintf("unknown event type %q", value)}
	}
}

// ParseAttendeeRole treats an empty role as guest.
func ParseAttendeeRole(value string) (AttendeeRole, error) {
	switch AttendeeRole(value) {
	case "":
		return RoleGuest, nil
	case RoleHost, RoleGuest:
		return AttendeeRole(value), nil
	default:
		return "", ValidationError{Field: "role", Message: fmt.Sprintf("unknown attendee role %q", value)}
	}
}
