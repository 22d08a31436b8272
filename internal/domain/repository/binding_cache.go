package repository

import (
	"context"

	"github.com/yourusername/userauth-api/internal/domain/entity"
)

// BindingCache caches bindings by provider and external account id.
// Get returns apperrors.ErrNotFound on a miss.
// After Invalidate an implementation must not serve a row read before it, so Set may be
// skipped silently.
type BindingCache interface {
	Get(ctx context.Context, provider, externalAccountID string) (*entity.AuthBinding, error)
	Set(ctx context.Context, binding *entity.AuthBinding) error
	Invalidate(ctx context.Context, provider, externalAccountID string) error
}
