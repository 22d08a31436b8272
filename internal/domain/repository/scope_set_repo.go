package repository

import (
	"context"

	"github.com/yourusername/userauth-api/internal/domain/entity"
)

// ScopeSetRepository stores scope sets and the per-provider default template reference.
type ScopeSetRepository interface {
	Create(ctx context.Context, set *entity.ScopeSet) error
	GetByID(ctx context.Context, id uint) (*entity.ScopeSet, error)
	ReplaceItems(ctx context.Context, id uint, items []entity.ScopeItem) error
	Delete(ctx context.Context, id uint) error

	GetDefaultID(ctx context.Context, provider string) (uint, error)
	// ClaimDefaultID registers scopeSetID as the template of provider unless another
	// template is already registered, and returns the id that is registered.
	ClaimDefaultID(ctx context.Context, provider string, scopeSetID uint) (uint, error)
}
