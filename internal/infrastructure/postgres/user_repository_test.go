package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/invest-tracker/internal/domain/entity"
	"github.com/oksasatya/invest-tracker/internal/domain/repository"
)

const (
	insertUserQ   = `(?s)^\s*INSERT\s+INTO\s+users\s*\(email,\s*password_hash,\s*name\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3\)\s*RETURNING\s+id,\s*created_at\s*$`
	selectByIDQ   = `(?s)^\s*SELECT\s+id,\s*email,\s*password_hash,\s*name,\s*created_at\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	selectByMailQ = `(?s)^\s*SELECT\s+id,\s*email,\s*password_hash,\s*name,\s*created_at\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
)

func newRepoWithMock(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewUserRepository(mock), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(insertUserQ).
		WithArgs("a@b.com", "$2a$10$hash", "A").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("6f1c1c3e-0000-4000-8000-000000000001", now))

	u := &entity.User{Email: "a@b.com", PasswordHash: "$2a$10$hash", Name: "A"}
	require.NoError(t, repo.Create(context.Background(), u))
	assert.Equal(t, "6f1c1c3e-0000-4000-8000-000000000001", u.ID)
	assert.Equal(t, now, u.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_NameIsBoundNotInterpolated(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	evil := "a'; DROP TABLE users; --"

	mock.ExpectQuery(insertUserQ).
		WithArgs("x@y.com", "h", evil).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("id-1", time.Now()))

	u := &entity.User{Email: "x@y.com", PasswordHash: "h", Name: evil}
	require.NoError(t, repo.Create(context.Background(), u))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertUserQ).
		WithArgs("a@b.com", "h", "A").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), &entity.User{Email: "a@b.com", PasswordHash: "h", Name: "A"})
	require.ErrorIs(t, err, repository.ErrDuplicateEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertUserQ).
		WithArgs("a@b.com", "h", "A").
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &entity.User{Email: "a@b.com", PasswordHash: "h", Name: "A"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrDuplicateEmail)
	assert.Contains(t, err.Error(), "db down")
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(selectByMailQ).
		WithArgs("a@b.com").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "name", "created_at"}).
			AddRow("u-1", "a@b.com", "h", "A", now))

	u, err := repo.GetByEmail(context.Background(), "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, &entity.User{ID: "u-1", Email: "a@b.com", PasswordHash: "h", Name: "A", CreatedAt: now}, u)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByMailQ).WithArgs("nobody@b.com").WillReturnError(pgx.ErrNoRows)

	u, err := repo.GetByEmail(context.Background(), "nobody@b.com")
	require.ErrorIs(t, err, repository.ErrNotFound)
	assert.Nil(t, u)
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(selectByIDQ).
		WithArgs("u-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "password_hash", "name", "created_at"}).
			AddRow("u-1", "a@b.com", "h", "A", now))
	mock.ExpectQuery(selectByIDQ).
		WithArgs("not-a-uuid").
		WillReturnError(&pgconn.PgError{Code: pgerrcode.InvalidTextRepresentation})
	mock.ExpectQuery(selectByIDQ).
		WithArgs("u-2").
		WillReturnError(context.DeadlineExceeded)

	u, err := repo.GetByID(context.Background(), "u-1")
	require.NoError(t, err)
	assert.Equal(t, "A", u.Name)

	_, err = repo.GetByID(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, repository.ErrNotFound)

	_, err = repo.GetByID(context.Background(), "u-2")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPing(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("conn refused"))

	require.NoError(t, repo.Ping(context.Background()))
	require.Error(t, repo.Ping(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
