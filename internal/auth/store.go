package auth

import (
	"context"
	"errors"
)

var (
	ErrLinkNotFound = errors.New("magic link not found")
	ErrLinkExpired  = errors.New("magic link expired")
)

// MagicLinkStore persists single-use login links. Consume must remove the
// link so it can never be redeemed twice.
type MagicLinkStore interface {
	Insert(ctx context.Context, link MagicLink) error
	Consume(ctx context.Context, token string) (MagicLink, error)
}
