package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fawziabuhussin/task-manager-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestAccountRepo_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Accounts()

	require.NoError(t, repo.Create(ctx, &domain.Account{AccountID: "a1", Email: "x@y.com", CreatedAt: t0, UpdatedAt: t0}))

	got, err := repo.GetByEmail(ctx, "x@y.com")
	require.NoError(t, err)
	assert.Equal(t, "a1", got.AccountID)
	assert.Nil(t, got.EmailVerifiedAt)
	assert.True(t, t0.Equal(got.CreatedAt))

	_, err = repo.GetByEmail(ctx, "nobody@y.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAccountRepo_CreateDuplicateID(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Accounts()
	require.NoError(t, repo.Create(ctx, &domain.Account{AccountID: "a1"}))

	err := repo.Create(ctx, &domain.Account{AccountID: "a1"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAccountRepo_ConcurrentCreateSameEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Accounts()

	var (
		wg      sync.WaitGroup
		created atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Create(ctx, &domain.Account{AccountID: fmt.Sprintf("a%d", i), Email: "dup@y.com"})
			if err == nil {
				created.Add(1)
				return
			}
			assert.ErrorIs(t, err, domain.ErrConflict)
		}(i)
	}
	wg.Wait()
	assert.Equal(t, int32(1), created.Load())
}

func TestAccountRepo_UpdateSetsAndClearsFields(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Accounts()
	lock := t0.Add(2 * time.Minute)
	require.NoError(t, repo.Create(ctx, &domain.Account{AccountID: "a1", FailedLoginCount: 2, LockoutUntil: &lock}))

	require.NoError(t, repo.Update(ctx, "a1", map[string]interface{}{
		"failed_login_count": 0,
		"lockout_until":      (*time.Time)(nil),
		"email_verified_at":  t0,
	}))

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 0, got.FailedLoginCount)
	assert.Nil(t, got.LockoutUntil)
	require.NotNil(t, got.EmailVerifiedAt)
	assert.True(t, t0.Equal(*got.EmailVerifiedAt))
}

func TestAccountRepo_UpdateMissing(t *testing.T) {
	err := NewStore().Accounts().Update(context.Background(), "nope", map[string]interface{}{"email": "a"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestVerificationRepo_LatestWins(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Verifications()

	_, err := repo.Latest(ctx, "a1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, repo.Put(ctx, &domain.VerificationCode{AccountID: "a1", CodeID: "01A", CodeHash: "old"}))
	require.NoError(t, repo.Put(ctx, &domain.VerificationCode{AccountID: "a1", CodeID: "01B", CodeHash: "new"}))

	got, err := repo.Latest(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.CodeHash)

	require.NoError(t, repo.Update(ctx, "a1", "01B", map[string]interface{}{"failed_attempts": 3, "last_attempt_at": t0}))
	got, err = repo.Latest(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, 3, got.FailedAttempts)
	require.NotNil(t, got.LastAttemptAt)
}

func TestTaskRepo_ListByUserNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tasks()
	require.NoError(t, repo.Put(ctx, &domain.Task{TaskID: "t1", UserID: "u1", Title: "first", CreatedAt: t0}))
	require.NoError(t, repo.Put(ctx, &domain.Task{TaskID: "t2", UserID: "u1", Title: "second", CreatedAt: t0.Add(time.Minute)}))
	require.NoError(t, repo.Put(ctx, &domain.Task{TaskID: "t3", UserID: "u2", Title: "other", CreatedAt: t0}))

	tasks, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "t2", tasks[0].TaskID)
	assert.Equal(t, "t1", tasks[1].TaskID)
}

func TestTaskRepo_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Tasks()
	require.NoError(t, repo.Put(ctx, &domain.Task{TaskID: "t1", UserID: "u1", Title: "a"}))

	require.NoError(t, repo.Update(ctx, "t1", map[string]interface{}{"title": "b", "done": true}))
	got, err := repo.Get(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "b", got.Title)
	assert.True(t, got.Done)

	require.NoError(t, repo.Delete(ctx, "t1"))
	_, err = repo.Get(ctx, "t1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOutboxRepo_ListRecent(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Outbox()
	for _, id := range []string{"e1", "e2", "e3"} {
		require.NoError(t, repo.Put(ctx, &domain.OutboxEmail{EmailID: id, To: "x@y.com"}))
	}

	emails, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, emails, 2)
	assert.Equal(t, "e3", emails[0].EmailID)
	assert.Equal(t, "e2", emails[1].EmailID)
}

func TestRepos_HonourCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStore().Accounts().Get(ctx, "a1")
	assert.ErrorIs(t, err, context.Canceled)
}
