package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/userauth-api/internal/domain/repository"
	apperrors "github.com/yourusername/userauth-api/internal/pkg/errors"
	"github.com/yourusername/userauth-api/internal/repository/postgres"
	"github.com/yourusername/userauth-api/internal/service/authprovider"
	"github.com/yourusername/userauth-api/internal/service/gitlab"
	"github.com/yourusername/userauth-api/internal/testutil"
)

// MockCascadeDestroyer реализует CascadeDestroyer
type MockCascadeDestroyer struct {
	mock.Mock
}

func (m *MockCascadeDestroyer) DestroyOnCascade(ctx context.Context, uow repository.UnitOfWork, userID uint) error {
	args := m.Called(ctx, uow, userID)
	return args.Error(0)
}

func TestUserService_CreateUser(t *testing.T) {
	ctx := context.Background()
	svc := NewUserService(postgres.NewStore(testutil.NewDB(t)), nil, nil)

	u, err := svc.CreateUser(ctx, 1, "  alice ")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.UserName)
	assert.NotZero(t, u.ID)

	_, err = svc.CreateUser(ctx, 1, "alice")
	assert.ErrorIs(t, err, ErrUserNameTaken)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = svc.CreateUser(ctx, 1, "   ")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestUserService_DestroyUser_CascadesToProviders(t *testing.T) {
	ctx := context.Background()
	store := postgres.NewStore(testutil.NewDB(t))
	gl := gitlab.NewProvider(store)
	reg, err := authprovider.NewRegistry(gl)
	require.NoError(t, err)
	svc := NewUserService(store, reg, nil)

	u, err := svc.CreateUser(ctx, 1, "bob")
	require.NoError(t, err)
	_, err = gl.CreateOrUpdate(ctx, 1, u.ID, gitlab.Info{GitLabAccountID: "gl-bob"}, authprovider.Mode{})
	require.NoError(t, err)

	bindings, err := svc.ListBindings(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, bindings, 1)
	assert.Equal(t, gitlab.ProviderName, bindings[0].Provider)

	require.NoError(t, svc.DestroyUser(ctx, 1, u.ID))

	found, err := gl.FindByExternalID(ctx, "gl-bob")
	require.NoError(t, err)
	assert.Nil(t, found)
	_, err = svc.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// idempotent
	assert.NoError(t, svc.DestroyUser(ctx, 1, u.ID))

	_, err = svc.ListBindings(ctx, u.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserService_DestroyUser_CascadeFailureKeepsUser(t *testing.T) {
	ctx := context.Background()
	cascade := new(MockCascadeDestroyer)
	svc := NewUserService(postgres.NewStore(testutil.NewDB(t)), cascade, nil)

	u, err := svc.CreateUser(ctx, 1, "carol")
	require.NoError(t, err)

	cascade.On("DestroyOnCascade", mock.Anything, mock.Anything, u.ID).Return(errors.New("provider down")).Once()

	err = svc.DestroyUser(ctx, 1, u.ID)
	require.Error(t, err)

	got, err := svc.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "carol", got.UserName)
	cascade.AssertExpectations(t)
}
