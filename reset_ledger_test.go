package auth_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	auth "github.com/hauslet/go-auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var hexSecret = regexp.MustCompile(`^[0-9a-f]{64}$`)

func seedUser(repo *stubRepoManager, email string) *auth.User {
	user := &auth.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "$2a$04$existinghashexistinghashexistingha",
		FullName:     "Test Account",
		Role:         auth.RoleTenant,
	}
	repo.store.users[user.ID] = user
	return user
}

func TestResetLedgerIssue(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepoManager()
	user := seedUser(repo, "tenant@example.com")

	ledger := auth.NewResetLedger(repo)

	secret, err := ledger.Issue(ctx, user.ID)
	require.NoError(t, err)
	assert.Regexp(t, hexSecret, secret)

	userID, err := ledger.Validate(ctx, secret)
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	count, err := repo.resets.CountActive(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestResetLedgerIssueInvalidatesPriorTokens(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepoManager()
	user := seedUser(repo, "tenant@example.com")

	ledger := auth.NewResetLedger(repo)

	first, err := ledger.Issue(ctx, user.ID)
	require.NoError(t, err)

	second, err := ledger.Issue(ctx, user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// only the newest token stays active
	_, err = ledger.Validate(ctx, first)
	assert.ErrorIs(t, err, auth.ErrResetTokenUsed)

	_, err = ledger.Validate(ctx, second)
	assert.NoError(t, err)

	count, err := repo.resets.CountActive(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestResetLedgerValidate(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepoManager()
	user := seedUser(repo, "tenant@example.com")

	current := time.Now()
	ledger := auth.NewResetLedger(repo,
		auth.WithResetClock(func() time.Time { return current }),
	)

	secret, err := ledger.Issue(ctx, user.ID)
	require.NoError(t, err)

	t.Run("unknown secret", func(t *testing.T) {
		_, err := ledger.Validate(ctx, "0000000000000000000000000000000000000000000000000000000000000000")
		assert.ErrorIs(t, err, auth.ErrResetTokenNotFound)
	})

	t.Run("valid secret does not consume", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			userID, err := ledger.Validate(ctx, secret)
			require.NoError(t, err)
			assert.Equal(t, user.ID, userID)
		}

		count, err := repo.resets.CountActive(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("expired secret", func(t *testing.T) {
		current = current.Add(auth.DefaultResetTokenTTL + time.Minute)
		_, err := ledger.Validate(ctx, secret)
		assert.ErrorIs(t, err, auth.ErrResetTokenExpired)
	})
}

func TestResetLedgerConsume(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepoManager()
	user := seedUser(repo, "tenant@example.com")
	previousHash := user.PasswordHash

	ledger := auth.NewResetLedger(repo)

	secret, err := ledger.Issue(ctx, user.ID)
	require.NoError(t, err)

	userID, err := ledger.Consume(ctx, secret, "$2a$04$replacementhashreplacementhashrepl")
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)

	stored := repo.store.users[user.ID]
	assert.NotEqual(t, previousHash, stored.PasswordHash)
	assert.Equal(t, "$2a$04$replacementhashreplacementhashrepl", stored.PasswordHash)

	t.Run("second consume is rejected", func(t *testing.T) {
		_, err := ledger.Consume(ctx, secret, "$2a$04$anotherhashanotherhashanotherhash0")
		assert.ErrorIs(t, err, auth.ErrResetTokenUsed)

		// the first replacement is still in place
		assert.Equal(t, "$2a$04$replacementhashreplacementhashrepl", repo.store.users[user.ID].PasswordHash)
	})
}

func TestResetLedgerConsumeExpiredLeavesPasswordAlone(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepoManager()
	user := seedUser(repo, "tenant@example.com")
	previousHash := user.PasswordHash

	current := time.Now()
	ledger := auth.NewResetLedger(repo,
		auth.WithResetTTL(10*time.Minute),
		auth.WithResetClock(func() time.Time { return current }),
	)

	secret, err := ledger.Issue(ctx, user.ID)
	require.NoError(t, err)

	current = current.Add(11 * time.Minute)

	_, err = ledger.Consume(ctx, secret, "$2a$04$replacementhashreplacementhashrepl")
	assert.ErrorIs(t, err, auth.ErrResetTokenExpired)
	assert.Equal(t, previousHash, repo.store.users[user.ID].PasswordHash)
}

func TestResetLedgerConsumeRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	repo := newStubRepoManager()
	user := seedUser(repo, "tenant@example.com")
	previousHash := user.PasswordHash

	ledger := auth.NewResetLedger(repo)

	secret, err := ledger.Issue(ctx, user.ID)
	require.NoError(t, err)

	// the password update and the used flag commit together or not at all
	repo.resets.markUsedErr = errors.New("datastore hiccup")

	_, err = ledger.Consume(ctx, secret, "$2a$04$replacementhashreplacementhashrepl")
	require.Error(t, err)
	assert.Equal(t, previousHash, repo.store.users[user.ID].PasswordHash)

	repo.resets.markUsedErr = nil

	userID, err := ledger.Consume(ctx, secret, "$2a$04$replacementhashreplacementhashrepl")
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}
