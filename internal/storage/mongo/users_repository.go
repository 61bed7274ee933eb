package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gatherhub/server/internal/domain/users"
)

type UsersRepository struct {
	coll *mongo.Collection
}

var _ users.Repository = (*UsersRepository)(nil)

func (r *UsersRepository) FindByEmail(ctx context.Context, email string) (users.User, error) {
	var user users.User
	err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding user: %w", err)
	}
	return user, nil
}

func (r *UsersRepository) Insert(ctx context.Context, user users.User) error {
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (r *UsersRepository) Apply(ctx context.Context, email string, updates users.Updates) error {
	document := bson.M{}
	for op, fields := range updates {
		document[op] = bson.M(fields)
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, document)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if result.MatchedCount == 0 {
		return users.ErrNotFound
	}
	return nil
}

func (r *UsersRepository) FindEmails(ctx context.Context, filter map[string]any) ([]string, error) {
	query := bson.M{}
	for key, value := range filter {
		query[key] = value
	}

	projection := options.Find().SetProjection(bson.M{"email": 1})
	cursor, err := r.coll.Find(ctx, query, projection)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer cursor.Close(ctx)

	var emails []string
	for cursor.Next(ctx) {
		var doc struct {
			Email string `bson:"email"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding user: %w", err)
		}
		if doc.Email != "" {
			emails = append(emails, doc.Email)
		}
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}
	return emails, nil
}

func (r *UsersRepository) SetSessionToken(ctx context.Context, email, token string) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"token": token}})
	if err != nil {
		return fmt.Errorf("storing session token: %w", err)
	}
	if result.MatchedCount == 0 {
		return users.ErrNotFound
	}
	return nil
}
