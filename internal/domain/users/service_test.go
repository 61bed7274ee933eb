package users

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/gatherhub/server/internal/auth"
)

type fakeRepo struct {
	users   map[string]User
	applied []Updates
	tokens  map[string]string
}

func newFakeRepo(docs ...User) *fakeRepo {
	repo := &fakeRepo{
		users:  make(map[string]User),
		tokens: make(map[string]string),
	}
	for _, doc := range docs {
		repo.users[doc.Email()] = doc
	}
	return repo
}

func (r *fakeRepo) FindByEmail(ctx context.Context, email string) (User, error) {
	user, ok := r.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return user, nil
}

func (r *fakeRepo) Insert(ctx context.Context, user User) error {
	r.users[user.Email()] = user
	return nil
}

func (r *fakeRepo) Apply(ctx context.Context, email string, updates Updates) error {
	if _, ok := r.users[email]; !ok {
		return ErrNotFound
	}
	r.applied = append(r.applied, updates)
	return nil
}

func (r *fakeRepo) FindEmails(ctx context.Context, filter map[string]any) ([]string, error) {
	var emails []string
	for email := range r.users {
		emails = append(emails, email)
	}
	return emails, nil
}

func (r *fakeRepo) SetSessionToken(ctx context.Context, email, token string) error {
	r.tokens[email] = token
	return nil
}

type fakeLinkStore struct {
	links map[string]auth.MagicLink
}

func newFakeLinkStore() *fakeLinkStore {
	return &fakeLinkStore{links: make(map[string]auth.MagicLink)}
}

func (s *fakeLinkStore) Insert(ctx context.Context, link auth.MagicLink) error {
	s.links[link.Token] = link
	return nil
}

func (s *fakeLinkStore) Consume(ctx context.Context, token string) (auth.MagicLink, error) {
	link, ok := s.links[token]
	if !ok {
		return auth.MagicLink{}, auth.ErrLinkNotFound
	}
	delete(s.links, token)
	return link, nil
}

func newTestService(t *testing.T, repo Repository, links auth.MagicLinkStore) *Service {
	t.Helper()
	tokens := auth.NewTokenManager("test-secret-test-secret-12345678", time.Hour, "gatherhub")
	return NewService(repo, tokens, links, 30*time.Minute, zerolog.Nop())
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func TestLogin(t *testing.T) {
	repo := newFakeRepo(User{
		"email":    "alice@example.com",
		"password": hashPassword(t, "hunter2"),
	})
	service := newTestService(t, repo, newFakeLinkStore())

	user, token, err := service.Login(context.Background(), "alice@example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email())
	assert.NotEmpty(t, token)
	assert.Equal(t, token, repo.tokens["alice@example.com"], "issued token should be persisted")
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeRepo(User{
		"email":    "alice@example.com",
		"password": hashPassword(t, "hunter2"),
	})
	service := newTestService(t, repo, newFakeLinkStore())

	_, _, err := service.Login(context.Background(), "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	service := newTestService(t, newFakeRepo(), newFakeLinkStore())

	_, _, err := service.Login(context.Background(), "nobody@example.com", "pw")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestResolveToken(t *testing.T) {
	repo := newFakeRepo(User{"email": "alice@example.com"})
	service := newTestService(t, repo, newFakeLinkStore())

	_, token, err := serviceLoginless(t, service, "alice@example.com")
	require.NoError(t, err)

	user, err := service.ResolveToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email())
}

// serviceLoginless issues a session without a password check, via the magic
// link path.
func serviceLoginless(t *testing.T, service *Service, email string) (User, string, error) {
	t.Helper()
	link, err := service.RequestMagicLink(context.Background(), email)
	require.NoError(t, err)
	return service.RedeemMagicLink(context.Background(), link.Token)
}

func TestResolveToken_Garbage(t *testing.T) {
	service := newTestService(t, newFakeRepo(), newFakeLinkStore())

	_, err := service.ResolveToken(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestMagicLinkRoundTrip(t *testing.T) {
	repo := newFakeRepo(User{"email": "alice@example.com"})
	store := newFakeLinkStore()
	service := newTestService(t, repo, store)

	link, err := service.RequestMagicLink(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, link.Token)

	user, session, err := service.RedeemMagicLink(context.Background(), link.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email())
	assert.NotEmpty(t, session)

	// The link is single use.
	_, _, err = service.RedeemMagicLink(context.Background(), link.Token)
	assert.ErrorIs(t, err, auth.ErrLinkNotFound)
}

func TestRequestMagicLink_UnknownUser(t *testing.T) {
	service := newTestService(t, newFakeRepo(), newFakeLinkStore())

	_, err := service.RequestMagicLink(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedeemMagicLink_Expired(t *testing.T) {
	repo := newFakeRepo(User{"email": "alice@example.com"})
	store := newFakeLinkStore()
	service := newTestService(t, repo, store)

	expired := auth.MagicLink{
		Token:     "tok-expired",
		Email:     "alice@example.com",
		ExpiresAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, store.Insert(context.Background(), expired))

	_, _, err := service.RedeemMagicLink(context.Background(), "tok-expired")
	assert.ErrorIs(t, err, auth.ErrLinkExpired)

	// Even a failed redemption consumes the link.
	_, _, err = service.RedeemMagicLink(context.Background(), "tok-expired")
	assert.ErrorIs(t, err, auth.ErrLinkNotFound)
}

func TestUpdate_SelfAllowed(t *testing.T) {
	alice := User{"email": "alice@example.com"}
	repo := newFakeRepo(alice)
	service := newTestService(t, repo, newFakeLinkStore())

	err := service.Update(context.Background(), alice, "alice@example.com", Updates{
		"$set": {"nickname": "Al"},
	})
	require.NoError(t, err)
	require.Len(t, repo.applied, 1)
	assert.Equal(t, map[string]any{"nickname": "Al"}, repo.applied[0]["$set"])
}

func TestUpdate_OtherUserForbidden(t *testing.T) {
	alice := User{"email": "alice@example.com"}
	bob := User{"email": "bob@example.com"}
	repo := newFakeRepo(alice, bob)
	service := newTestService(t, repo, newFakeLinkStore())

	err := service.Update(context.Background(), alice, "bob@example.com", Updates{
		"$set": {"nickname": "Bobby"},
	})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, repo.applied)
}

func TestUpdate_DirectorMayUpdateAnyone(t *testing.T) {
	director := User{
		"email": "dir@example.com",
		"role":  map[string]any{"director": true},
	}
	bob := User{"email": "bob@example.com"}
	repo := newFakeRepo(director, bob)
	service := newTestService(t, repo, newFakeLinkStore())

	err := service.Update(context.Background(), director, "bob@example.com", Updates{
		"$set": {"nickname": "Bobby"},
	})
	require.NoError(t, err)
	require.Len(t, repo.applied, 1)
}

func TestBootstrapDirector(t *testing.T) {
	repo := newFakeRepo()
	service := newTestService(t, repo, newFakeLinkStore())

	err := service.BootstrapDirector(context.Background(), "dir@example.com", "first-pw")
	require.NoError(t, err)

	director, err := repo.FindByEmail(context.Background(), "dir@example.com")
	require.NoError(t, err)
	assert.True(t, director.IsDirector())
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(director.PasswordHash()), []byte("first-pw")))

	// Re-running against an existing account is a no-op.
	err = service.BootstrapDirector(context.Background(), "dir@example.com", "changed-pw")
	require.NoError(t, err)
	director, err = repo.FindByEmail(context.Background(), "dir@example.com")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(director.PasswordHash()), []byte("first-pw")))
}

func TestBootstrapDirector_SkipsWhenUnconfigured(t *testing.T) {
	repo := newFakeRepo()
	service := newTestService(t, repo, newFakeLinkStore())

	require.NoError(t, service.BootstrapDirector(context.Background(), "", ""))
	assert.Empty(t, repo.users)
}

func TestUpdate_FullyFilteredIsNoOp(t *testing.T) {
	alice := User{"email": "alice@example.com"}
	repo := newFakeRepo(alice)
	service := newTestService(t, repo, newFakeLinkStore())

	err := service.Update(context.Background(), alice, "alice@example.com", Updates{
		"$set": {"password": "sneaky", "role.director": true},
	})
	require.NoError(t, err)
	assert.Empty(t, repo.applied, "a fully filtered update must not hit storage")
}
