package repository

import (
	"context"

	"github.com/yourusername/userauth-api/internal/domain/entity"
)

// AuthBindingRepository stores provider bindings.
// Lookups return apperrors.ErrNotFound when no row matches.
type AuthBindingRepository interface {
	GetByExternalID(ctx context.Context, provider, externalAccountID string) (*entity.AuthBinding, error)
	GetByUserID(ctx context.Context, provider string, userID uint) (*entity.AuthBinding, error)
	ListByUserID(ctx context.Context, userID uint) ([]entity.AuthBinding, error)
	// Create returns ErrDuplicateBinding when a uniqueness constraint is violated.
	Create(ctx context.Context, binding *entity.AuthBinding) error
	Update(ctx context.Context, binding *entity.AuthBinding) error
	// DeleteByUserID reports whether a row was removed.
	DeleteByUserID(ctx context.Context, provider string, userID uint) (bool, error)
}
