package users

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatherhub/server/internal/auth"
)

// Service implements user-facing account operations: login, magic-link
// issuance and redemption, token resolution and policy-filtered updates.
type Service struct {
	repo        Repository
	tokens      *auth.TokenManager
	links       auth.MagicLinkStore
	policy      *Policy
	magicExpiry time.Duration
	logger      zerolog.Logger
}

func NewService(repo Repository, tokens *auth.TokenManager, links auth.MagicLinkStore, magicExpiry time.Duration, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		tokens:      tokens,
		links:       links,
		policy:      DefaultPolicy(),
		magicExpiry: magicExpiry,
		logger:      logger.With().Str("component", "users").Logger(),
	}
}

// BootstrapDirector seeds a director account when none exists for the given
// email. A fresh deployment needs at least one director to create events.
func (s *Service) BootstrapDirector(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		s.logger.Warn().Msg("director bootstrap env vars not fully set; skipping")
		return nil
	}

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	director := User{
		"email":    email,
		"password": string(hash),
		"role":     map[string]any{"director": true},
	}
	if err := s.repo.Insert(ctx, director); err != nil {
		return err
	}

	s.logger.Info().Str("email", email).Msg("bootstrapped director account")
	return nil
}

// ResolveToken validates a session token and loads the user it names.
func (s *Service) ResolveToken(ctx context.Context, token string) (User, error) {
	claims, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}
	return s.repo.FindByEmail(ctx, claims.Subject)
}

// Login checks the password against the stored bcrypt hash and issues a
// fresh session token.
func (s *Service) Login(ctx context.Context, email, password string) (User, string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash()), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.issueSession(ctx, email)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// RequestMagicLink creates and stores a single-use login link for the user.
func (s *Service) RequestMagicLink(ctx context.Context, email string) (auth.MagicLink, error) {
	if _, err := s.repo.FindByEmail(ctx, email); err != nil {
		return auth.MagicLink{}, err
	}

	link := auth.NewMagicLink(email, s.magicExpiry)
	if err := s.links.Insert(ctx, link); err != nil {
		return auth.MagicLink{}, err
	}

	s.logger.Info().Str("email", email).Time("expires_at", link.ExpiresAt).Msg("magic link issued")
	return link, nil
}

// RedeemMagicLink consumes a single-use link and exchanges it for a session
// token. The link is removed from storage whether or not it has expired.
func (s *Service) RedeemMagicLink(ctx context.Context, token string) (User, string, error) {
	link, err := s.links.Consume(ctx, token)
	if err != nil {
		return nil, "", err
	}
	if link.Expired(time.Now()) {
		return nil, "", auth.ErrLinkExpired
	}

	user, err := s.repo.FindByEmail(ctx, link.Email)
	if err != nil {
		return nil, "", err
	}

	session, err := s.issueSession(ctx, link.Email)
	if err != nil {
		return nil, "", err
	}
	return user, session, nil
}

// Update applies operator-grouped changes to the target user. A caller may
// update their own record; directors may update anyone. Disallowed fields
// are filtered out rather than rejected, and an update left empty after
// filtering is a no-op.
func (s *Service) Update(ctx context.Context, caller User, targetEmail string, updates Updates) error {
	if caller.Email() != targetEmail && !caller.IsDirector() {
		return ErrForbidden
	}

	target, err := s.repo.FindByEmail(ctx, targetEmail)
	if err != nil {
		return err
	}

	filtered := s.policy.FilterUpdates(target, updates)
	if len(filtered) == 0 {
		s.logger.Debug().Str("email", targetEmail).Msg("update filtered to nothing")
		return nil
	}
	return s.repo.Apply(ctx, targetEmail, filtered)
}

// Emails resolves a document filter to the matching users' addresses.
func (s *Service) Emails(ctx context.Context, filter map[string]any) ([]string, error) {
	return s.repo.FindEmails(ctx, filter)
}

func (s *Service) issueSession(ctx context.Context, email string) (string, error) {
	token, err := s.tokens.Generate(email)
	if err != nil {
		return "", err
	}
	// The stored copy mirrors the issued token for audit; failing to
	// persist it does not invalidate the session.
	if err := s.repo.SetSessionToken(ctx, email, token); err != nil && !errors.Is(err, ErrNotFound) {
		s.logger.Warn().Err(err).Str("email", email).Msg("failed to persist session token")
	}
	return token, nil
}
