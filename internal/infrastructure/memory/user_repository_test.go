package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/invest-tracker/internal/domain/entity"
	"github.com/oksasatya/invest-tracker/internal/domain/repository"
)

func TestCreateAndGet(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	u := &entity.User{Email: "a@b.com", PasswordHash: "h", Name: "A"}
	require.NoError(t, repo.Create(ctx, u))
	require.NotEmpty(t, u.ID)
	require.False(t, u.CreatedAt.IsZero())

	byMail, err := repo.GetByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, *u, *byMail)

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, *u, *byID)

	// returned values are copies
	byID.Name = "changed"
	again, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", again.Name)
}

func TestEmailIsExactMatch(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.User{Email: "a@b.com", PasswordHash: "h", Name: "A"}))
	require.NoError(t, repo.Create(ctx, &entity.User{Email: "A@b.com", PasswordHash: "h", Name: "A"}))

	_, err := repo.GetByEmail(ctx, "a@B.com")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreate_Duplicate(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.User{Email: "a@b.com", PasswordHash: "h", Name: "A"}))
	err := repo.Create(ctx, &entity.User{Email: "a@b.com", PasswordHash: "h2", Name: "B"})
	require.ErrorIs(t, err, repository.ErrDuplicateEmail)
	assert.Equal(t, 1, repo.Len())
}

func TestCreate_ConcurrentSameEmail(t *testing.T) {
	repo := NewUserRepository()
	const n = 50

	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- repo.Create(context.Background(), &entity.User{Email: "race@b.com", PasswordHash: "h", Name: fmt.Sprint(i)})
		}(i)
	}
	wg.Wait()
	close(errs)

	ok, dup := 0, 0
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, repository.ErrDuplicateEmail):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, dup)
}

func TestNotFoundAndCanceled(t *testing.T) {
	repo := NewUserRepository()

	_, err := repo.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, repo.Create(ctx, &entity.User{Email: "x@y.z"}), context.Canceled)
	_, err = repo.GetByEmail(ctx, "x@y.z")
	require.ErrorIs(t, err, context.Canceled)
	require.ErrorIs(t, repo.Ping(ctx), context.Canceled)
}
