package events

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Service implements event creation, discovery, invitations and updates.
type Service struct {
	repo   Repository
	logger zerolog.Logger
}

func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

type CreateParams struct {
	Name      string
	StartDate string
	EndDate   string
	EventType string
}

// Create validates and stores a new event. Private events automatically list
// the creator as a host so the event remains reachable and manageable.
func (s *Service) Create(ctx context.Context, creatorEmail string, params CreateParams) (Event, error) {
	start, err := ParseTime(params.StartDate)
	if err != nil {
		return Event{}, ValidationError{Field: "start_date", Message: err.Error()}
	}
	end, err := ParseTime(params.EndDate)
	if err != nil {
		return Event{}, ValidationError{Field: "end_date", Message: err.Error()}
	}
	if err := ValidateWindow(start, end); err != nil {
		return Event{}, err
	}
	eventType, err := ParseEventType(params.EventType)
	if err != nil {
		return Event{}, err
	}

	event := Event{
		Name:      params.Name,
		StartDate: start,
		EndDate:   end,
		EventType: eventType,
		Attendees: []Attendee{},
	}
	if eventType == TypePrivate {
		event.Attendees = append(event.Attendees, Attendee{Email: creatorEmail, Role: RoleHost})
	}

	created, err := s.repo.Insert(ctx, event)
	if err != nil {
		return Event{}, err
	}

	s.logger.Info().Str("event_id", created.ID.Hex()).Str("name", created.Name).Msg("event created")
	return created, nil
}

// Find returns the events visible to the caller inside the requested window.
// An empty result is reported as not found.
func (s *Service) Find(ctx context.Context, callerEmail, startStr, endStr string) ([]Event, error) {
	start, err := ParseTime(startStr)
	if err != nil {
		return nil, ValidationError{Field: "start_date", Message: err.Error()}
	}
	end, err := ParseTime(endStr)
	if err != nil {
		return nil, ValidationError{Field: "end_date", Message: err.Error()}
	}
	if err := ValidateWindow(start, end); err != nil {
		return nil, err
	}

	found, err := s.repo.FindVisible(ctx, start, end, callerEmail)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrNotFound
	}
	return found, nil
}

// Invite adds an attendee to an event. Only hosts may invite.
func (s *Service) Invite(ctx context.Context, callerEmail, eventID, attendeeEmail, role string) (Event, error) {
	attendeeRole, err := ParseAttendeeRole(role)
	if err != nil {
		return Event{}, err
	}

	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return Event{}, err
	}
	if !event.IsHost(callerEmail) {
		return Event{}, ErrForbidden
	}

	attendee := Attendee{Email: attendeeEmail, Role: attendeeRole}
	if err := s.repo.AddAttendee(ctx, eventID, attendee); err != nil {
		return Event{}, err
	}

	event.Attendees = append(event.Attendees, attendee)
	s.logger.Info().Str("event_id", eventID).Str("attendee", attendeeEmail).Msg("attendee invited")
	return event, nil
}

// Update sets the given fields on an event after validating them against the
// stored document. Timestamps are re-parsed, the event type is checked, and
// the resulting window must stay ordered. The id itself cannot change.
func (s *Service) Update(ctx context.Context, eventID string, fields map[string]any) (Event, error) {
	event, err := s.repo.FindByID(ctx, eventID)
	if err != nil {
		return Event{}, err
	}

	merged := make(map[string]any, len(fields))
	start, end := event.StartDate, event.EndDate
	for field, value := range fields {
		switch field {
		case "_id", "id":
			return Event{}, ValidationError{Field: field, Message: "event id cannot be changed"}
		case "start_date":
			start, err = coerceTime(field, value)
			if err != nil {
				return Event{}, err
			}
			merged[field] = start
		case "end_date":
			end, err = coerceTime(field, value)
			if err != nil {
				return Event{}, err
			}
			merged[field] = end
		case "event_type":
			raw, _ := value.(string)
			eventType, err := ParseEventType(raw)
			if err != nil {
				return Event{}, err
			}
			merged[field] = eventType
		default:
			merged[field] = value
		}
	}
	if err := ValidateWindow(start, end); err != nil {
		return Event{}, err
	}

	if err := s.repo.SetFields(ctx, eventID, merged); err != nil {
		return Event{}, err
	}
	return s.repo.FindByID(ctx, eventID)
}

func coerceTime(field string, value any) (time.Time, error) {
	raw, ok := value.(string)
	if !ok {
		return time.Time{}, ValidationError{Field: field, Message: "timestamp must be a string"}
	}
	t, err := ParseTime(raw)
	if err != nil {
		return time.Time{}, ValidationError{Field: field, Message: err.Error()}
	}
	return t, nil
}
