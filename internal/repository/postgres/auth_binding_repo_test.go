package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/userauth-api/internal/domain/entity"
	"github.com/yourusername/userauth-api/internal/domain/repository"
	apperrors "github.com/yourusername/userauth-api/internal/pkg/errors"
	"github.com/yourusername/userauth-api/internal/testutil"
)

func TestAuthBindingRepo_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewAuthBindingRepo(testutil.NewDB(t))

	b := &entity.AuthBinding{Provider: "GitLab", ExternalAccountID: "acc-1", UserID: 10, Payload: entity.JSONMap{"k": "v"}}
	require.NoError(t, repo.Create(ctx, b))
	assert.NotZero(t, b.ID)

	byExt, err := repo.GetByExternalID(ctx, "GitLab", "acc-1")
	require.NoError(t, err)
	assert.Equal(t, uint(10), byExt.UserID)
	assert.Equal(t, "v", byExt.Payload["k"])

	byUser, err := repo.GetByUserID(ctx, "GitLab", 10)
	require.NoError(t, err)
	assert.Equal(t, b.ID, byUser.ID)

	_, err = repo.GetByExternalID(ctx, "GitLab", "ACC-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	_, err = repo.GetByUserID(ctx, "Other", 10)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAuthBindingRepo_Create_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	repo := NewAuthBindingRepo(testutil.NewDB(t))

	require.NoError(t, repo.Create(ctx, &entity.AuthBinding{Provider: "GitLab", ExternalAccountID: "acc-1", UserID: 1}))

	err := repo.Create(ctx, &entity.AuthBinding{Provider: "GitLab", ExternalAccountID: "acc-1", UserID: 2})
	assert.ErrorIs(t, err, repository.ErrDuplicateBinding, "same external account twice")

	err = repo.Create(ctx, &entity.AuthBinding{Provider: "GitLab", ExternalAccountID: "acc-2", UserID: 1})
	assert.ErrorIs(t, err, repository.ErrDuplicateBinding, "same user twice")

	// Другой провайдер — не конфликт
	assert.NoError(t, repo.Create(ctx, &entity.AuthBinding{Provider: "Google", ExternalAccountID: "acc-1", UserID: 1}))
}

func TestAuthBindingRepo_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewAuthBindingRepo(testutil.NewDB(t))

	b := &entity.AuthBinding{Provider: "GitLab", ExternalAccountID: "acc-1", UserID: 3}
	require.NoError(t, repo.Create(ctx, b))

	scopeSetID := uint(42)
	b.ScopeSetID = &scopeSetID
	b.Payload = entity.JSONMap{"login": "octo"}
	require.NoError(t, repo.Update(ctx, b))

	got, err := repo.GetByUserID(ctx, "GitLab", 3)
	require.NoError(t, err)
	require.NotNil(t, got.ScopeSetID)
	assert.Equal(t, uint(42), *got.ScopeSetID)
	assert.Equal(t, "octo", got.Payload["login"])
	assert.Nil(t, got.LastLoginTime)

	list, err := repo.ListByUserID(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	deleted, err := repo.DeleteByUserID(ctx, "GitLab", 3)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.DeleteByUserID(ctx, "GitLab", 3)
	require.NoError(t, err)
	assert.False(t, deleted)

	err = repo.Update(ctx, b)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
