package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/userauth-api/internal/domain/entity"
	apperrors "github.com/yourusername/userauth-api/internal/pkg/errors"
	"github.com/yourusername/userauth-api/internal/testutil"
)

func TestScopeSetRepo_CreateReplaceDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewScopeSetRepo(testutil.NewDB(t))

	set := &entity.ScopeSet{}
	set.Add(entity.ScopeItem{Name: "read"})
	require.NoError(t, repo.Create(ctx, set))
	require.NotZero(t, set.ID)

	got, err := repo.GetByID(ctx, set.ID)
	require.NoError(t, err)
	assert.Equal(t, "[W]read", got.String())

	require.NoError(t, repo.ReplaceItems(ctx, set.ID, []entity.ScopeItem{
		{Name: "write", Status: entity.ScopeStatusAccepted},
		{Name: "admin", Status: entity.ScopeStatusRejected},
	}))
	got, err = repo.GetByID(ctx, set.ID)
	require.NoError(t, err)
	assert.Equal(t, "[R]admin [A]write", got.String())

	require.NoError(t, repo.Delete(ctx, set.ID))
	_, err = repo.GetByID(ctx, set.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestScopeSetRepo_DefaultID(t *testing.T) {
	ctx := context.Background()
	repo := NewScopeSetRepo(testutil.NewDB(t))

	_, err := repo.GetDefaultID(ctx, "GitLab")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	id, err := repo.ClaimDefaultID(ctx, "GitLab", 5)
	require.NoError(t, err)
	assert.Equal(t, uint(5), id)

	// второй претендент не перезаписывает ссылку и получает id победителя
	id, err = repo.ClaimDefaultID(ctx, "GitLab", 6)
	require.NoError(t, err)
	assert.Equal(t, uint(5), id)

	id, err = repo.GetDefaultID(ctx, "GitLab")
	require.NoError(t, err)
	assert.Equal(t, uint(5), id)

	id, err = repo.ClaimDefaultID(ctx, "Other", 6)
	require.NoError(t, err)
	assert.Equal(t, uint(6), id)
}
