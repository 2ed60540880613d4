package auth_test

import (
	"context"
	"database/sql"
	"strings"
	"time"

	auth "github.com/hauslet/go-auth"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// memStore is a map backed datastore shared by the repository stubs.
// RunInTx snapshots it before the callback and restores it on error so
// the rollback contract holds in tests.
type memStore struct {
	users  map[uuid.UUID]*auth.User
	tokens map[uuid.UUID]*auth.PasswordResetToken
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[uuid.UUID]*auth.User{},
		tokens: map[uuid.UUID]*auth.PasswordResetToken{},
	}
}

func (s *memStore) snapshot() *memStore {
	out := newMemStore()
	for id, u := range s.users {
		copied := *u
		out.users[id] = &copied
	}
	for id, t := range s.tokens {
		copied := *t
		out.tokens[id] = &copied
	}
	return out
}

func (s *memStore) restore(backup *memStore) {
	s.users = backup.users
	s.tokens = backup.tokens
}

type stubRepoManager struct {
	store  *memStore
	users  *stubUsers
	resets *stubResetTokens
}

func newStubRepoManager() *stubRepoManager {
	store := newMemStore()
	return &stubRepoManager{
		store:  store,
		users:  &stubUsers{store: store},
		resets: &stubResetTokens{store: store},
	}
}

func (m *stubRepoManager) Users() auth.Users { return m.users }

func (m *stubRepoManager) PasswordResetTokens() auth.PasswordResetTokens { return m.resets }

func (m *stubRepoManager) Validate() error { return nil }

func (m *stubRepoManager) MustValidate() {}

func (m *stubRepoManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	backup := m.store.snapshot()
	var tx bun.Tx
	if err := f(ctx, tx); err != nil {
		m.store.restore(backup)
		return err
	}
	return nil
}

type stubUsers struct {
	auth.Users
	store *memStore
}

func (s *stubUsers) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, repository.NewRecordNotFound()
	}
	user, ok := s.store.users[uid]
	if !ok || user.DeletedAt != nil {
		return nil, repository.NewRecordNotFound()
	}
	return user, nil
}

func (s *stubUsers) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.GetByEmailTx(ctx, nil, email)
}

func (s *stubUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*auth.User, error) {
	for _, user := range s.store.users {
		if strings.EqualFold(user.Email, email) && user.DeletedAt == nil {
			return user, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (s *stubUsers) EmailTaken(ctx context.Context, email string) (bool, error) {
	if _, err := s.GetByEmail(ctx, email); err == nil {
		return true, nil
	}
	return false, nil
}

func (s *stubUsers) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	return s.RegisterTx(ctx, nil, user)
}

func (s *stubUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Role == "" {
		user.Role = auth.RoleTenant
	}
	now := time.Now()
	user.CreatedAt = &now
	s.store.users[user.ID] = user
	return user, nil
}

func (s *stubUsers) UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	user, ok := s.store.users[id]
	if !ok || user.DeletedAt != nil {
		return repository.NewRecordNotFound()
	}
	user.PasswordHash = passwordHash
	return nil
}

type stubResetTokens struct {
	auth.PasswordResetTokens
	store       *memStore
	markUsedErr error
}

func (s *stubResetTokens) CreateTx(ctx context.Context, tx bun.IDB, record *auth.PasswordResetToken, criteria ...repository.InsertCriteria) (*auth.PasswordResetToken, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	copied := *record
	s.store.tokens[record.ID] = &copied
	return record, nil
}

func (s *stubResetTokens) GetBySecret(ctx context.Context, secret string) (*auth.PasswordResetToken, error) {
	return s.GetBySecretTx(ctx, nil, secret)
}

func (s *stubResetTokens) GetBySecretTx(ctx context.Context, tx bun.IDB, secret string) (*auth.PasswordResetToken, error) {
	for _, token := range s.store.tokens {
		if token.Secret == secret {
			copied := *token
			return &copied, nil
		}
	}
	return nil, repository.NewRecordNotFound()
}

func (s *stubResetTokens) InvalidateActiveTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	for _, token := range s.store.tokens {
		if token.UserID == userID && !token.Used {
			token.Used = true
		}
	}
	return nil
}

func (s *stubResetTokens) MarkUsedTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	if s.markUsedErr != nil {
		return s.markUsedErr
	}
	token, ok := s.store.tokens[id]
	if !ok || token.Used {
		return auth.ErrResetTokenUsed
	}
	token.Used = true
	return nil
}

func (s *stubResetTokens) CountActive(ctx context.Context, userID uuid.UUID) (int, error) {
	count := 0
	for _, token := range s.store.tokens {
		if token.UserID == userID && !token.Used {
			count++
		}
	}
	return count, nil
}

// testConfig satisfies auth.Config with values tuned for fast tests
type testConfig struct {
	signingKey string
	tokenTTL   time.Duration
	resetTTL   time.Duration
	bcryptCost int
	issuer     string
	audience   []string
}

func newTestConfig() *testConfig {
	return &testConfig{
		signingKey: "test-signing-key-not-for-production",
		bcryptCost: 4,
	}
}

func (c *testConfig) GetSigningKey() string           { return c.signingKey }
func (c *testConfig) GetTokenTTL() time.Duration      { return c.tokenTTL }
func (c *testConfig) GetResetTokenTTL() time.Duration { return c.resetTTL }
func (c *testConfig) GetBcryptCost() int              { return c.bcryptCost }
func (c *testConfig) GetIssuer() string               { return c.issuer }
func (c *testConfig) GetAudience() []string           { return c.audience }

// captureNotifier records the last reset secret it was asked to deliver
type captureNotifier struct {
	email  string
	secret string
	err    error
}

func (n *captureNotifier) SendPasswordReset(ctx context.Context, email, fullName, secret string) error {
	if n.err != nil {
		return n.err
	}
	n.email = email
	n.secret = secret
	return nil
}
