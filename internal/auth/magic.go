package auth

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// MagicLink is a single-use login token. It is persisted until redeemed or
// expired; redeeming one issues a regular session token.
type MagicLink struct {
	Token     string    `bson:"token"`
	Email     string    `bson:"email"`
	ExpiresAt time.Time `bson:"expires_at"`
}

func NewMagicLink(email string, ttl time.Duration) MagicLink {
	return MagicLink{
		Token:     uuid.NewString(),
		Email:     email,
		ExpiresAt: time.Now().Add(ttl),
	}
}

func (l MagicLink) Expired(now time.Time) bool {
	return now.After(l.ExpiresAt)
}

// URL renders the login link delivered by email.
func (l MagicLink) URL(baseURL string) string {
	return fmt.Sprintf("%s/v1/auth/redeem?token=%s", baseURL, url.QueryEscape(l.Token))
}
