package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"taskboard/internal/domain"
	"taskboard/internal/repository"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	repo := NewUserRepository(db)
	require.NoError(t, repo.Init(ctx))

	user := &domain.User{
		Name:         "Ann",
		Email:        "ann@x.com",
		PasswordHash: "digest",
	}
	id, err := repo.Create(ctx, user)
	require.NoError(t, err)
	require.Equal(t, id, user.ID)
	require.False(t, user.CreatedAt.IsZero())

	byEmail, err := repo.GetByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	require.Equal(t, id, byEmail.ID)
	require.Equal(t, "Ann", byEmail.Name)
	require.Equal(t, "digest", byEmail.PasswordHash)

	byID, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "ann@x.com", byID.Email)
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	repo := NewUserRepository(db)
	require.NoError(t, repo.Init(ctx))

	_, err := repo.Create(ctx, &domain.User{Name: "Ann", Email: "ann@x.com", PasswordHash: "d1"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, &domain.User{Name: "Ann Again", Email: "ann@x.com", PasswordHash: "d2"})
	require.ErrorIs(t, err, repository.ErrDuplicate)
}

func TestUserRepository_EmailMatchIsCaseSensitive(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	repo := NewUserRepository(db)
	require.NoError(t, repo.Init(ctx))

	_, err := repo.Create(ctx, &domain.User{Name: "Ann", Email: "Ann@x.com", PasswordHash: "d"})
	require.NoError(t, err)

	_, err = repo.GetByEmail(ctx, "ann@x.com")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_GetMissing(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	repo := NewUserRepository(db)
	require.NoError(t, repo.Init(ctx))

	_, err := repo.GetByID(ctx, 12345)
	require.ErrorIs(t, err, repository.ErrNotFound)
}
