package authprovider

import (
	"context"

	"github.com/yourusername/userauth-api/internal/domain/entity"
	"github.com/yourusername/userauth-api/internal/domain/repository"
)

// Extension seeds per-binding auxiliary state. OnCreated is called exactly once,
// inside the creating transaction, right after the binding row is inserted.
// A returned error rolls the creation back.
type Extension interface {
	OnCreated(ctx context.Context, uow repository.UnitOfWork, binding *entity.AuthBinding) error
}

// DestroyHook is optionally implemented by an Extension that owns state which must go
// away together with the binding.
type DestroyHook interface {
	OnDestroyed(ctx context.Context, uow repository.UnitOfWork, binding *entity.AuthBinding) error
}

// ExtensionFunc adapts a function to Extension.
type ExtensionFunc func(ctx context.Context, uow repository.UnitOfWork, binding *entity.AuthBinding) error

func (f ExtensionFunc) OnCreated(ctx context.Context, uow repository.UnitOfWork, binding *entity.AuthBinding) error {
	return f(ctx, uow, binding)
}
