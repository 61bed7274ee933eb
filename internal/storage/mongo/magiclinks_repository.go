package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/gatherhub/server/internal/auth"
)

type MagicLinksRepository struct {
	coll *mongo.Collection
}

var _ auth.MagicLinkStore = (*MagicLinksRepository)(nil)

func (r *MagicLinksRepository) Insert(ctx context.Context, link auth.MagicLink) error {
	if _, err := r.coll.InsertOne(ctx, link); err != nil {
		return fmt.Errorf("storing magic link: %w", err)
	}
	return nil
}

// Consume atomically removes and returns the link so a token can never be
// redeemed twice.
func (r *MagicLinksRepository) Consume(ctx context.Context, token string) (auth.MagicLink, error) {
	var link auth.MagicLink
	err := r.coll.FindOneAndDelete(ctx, bson.M{"token": token}).Decode(&link)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return auth.MagicLink{}, auth.ErrLinkNotFound
	}
	if err != nil {
		return auth.MagicLink{}, fmt.Errorf("consuming magic link: %w", err)
	}
	return link, nil
}
