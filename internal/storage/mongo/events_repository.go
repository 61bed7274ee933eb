package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gatherhub/server/internal/domain/events"
)

type EventsRepository struct {
	coll *mongo.Collection
}

var _ events.Repository = (*EventsRepository)(nil)

func (r *EventsRepository) Insert(ctx context.Context, event events.Event) (events.Event, error) {
	result, err := r.coll.InsertOne(ctx, event)
	if err != nil {
		return events.Event{}, fmt.Errorf("inserting event: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		event.ID = id
	}
	return event, nil
}

func (r *EventsRepository) FindByID(ctx context.Context, id string) (events.Event, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return events.Event{}, events.ErrNotFound
	}

	var event events.Event
	err = r.coll.FindOne(ctx, bson.M{"_id": objectID}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return events.Event{}, events.ErrNotFound
	}
	if err != nil {
		return events.Event{}, fmt.Errorf("finding event: %w", err)
	}
	return event, nil
}

func (r *EventsRepository) FindVisible(ctx context.Context, start, end time.Time, email string) ([]events.Event, error) {
	filter := bson.M{
		"start_date": bson.M{"$gte": start},
		"end_date":   bson.M{"$lte": end},
		"$or": bson.A{
			bson.M{"event_type": events.TypePublic},
			bson.M{"attendees.attendee": email},
		},
	}

	sort := options.Find().SetSort(bson.M{"start_date": 1})
	cursor, err := r.coll.Find(ctx, filter, sort)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer cursor.Close(ctx)

	var found []events.Event
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("decoding events: %w", err)
	}
	return found, nil
}

func (r *EventsRepository) AddAttendee(ctx context.Context, id string, attendee events.Attendee) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return events.ErrNotFound
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$push": bson.M{"attendees": attendee}})
	if err != nil {
		return fmt.Errorf("adding attendee: %w", err)
	}
	if result.MatchedCount == 0 {
		return events.ErrNotFound
	}
	return nil
}

func (r *EventsRepository) SetFields(ctx context.Context, id string, fields map[string]any) error {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return events.ErrNotFound
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}
	if result.MatchedCount == 0 {
		return events.ErrNotFound
	}
	return nil
}
