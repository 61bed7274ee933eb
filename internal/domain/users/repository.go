package users

import "context"

// Repository is the storage contract for user documents.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	Insert(ctx context.Context, user User) error
	// Apply runs pre-filtered operator groups against the user document.
	Apply(ctx context.Context, email string, updates Updates) error
	// FindEmails returns the email of every user matching the filter.
	FindEmails(ctx context.Context, filter map[string]any) ([]string, error)
	SetSessionToken(ctx context.Context, email, token string) error
}
