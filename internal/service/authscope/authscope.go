// Package authscope attaches a scope set to every binding of a provider.
//
// A provider owns one default scope set (the template). When a binding is created the
// template is cloned and the clone is owned by that binding from then on: later template
// changes never reach existing bindings.
package authscope

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourusername/userauth-api/internal/domain/entity"
	"github.com/yourusername/userauth-api/internal/domain/repository"
	apperrors "github.com/yourusername/userauth-api/internal/pkg/errors"
	"github.com/yourusername/userauth-api/internal/service/authprovider"
)

// Service manages the scope sets of one provider.
type Service struct {
	provider string
	store    repository.Store
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(provider string, store repository.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{provider: provider, store: store, logger: logger, now: time.Now}
}

// Provider returns the name of the provider the service is bound to.
func (s *Service) Provider() string { return s.provider }

// Extension returns the creation hook to install on the provider with authprovider.WithExtension.
func (s *Service) Extension() authprovider.Extension {
	return &hook{s: s}
}

// ReadDefaultScopeSet returns the template, creating an empty one on first use.
func (s *Service) ReadDefaultScopeSet(ctx context.Context) (*entity.ScopeSet, error) {
	var set *entity.ScopeSet
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		id, err := s.defaultID(ctx, uow)
		if err != nil {
			return err
		}
		set, err = uow.ScopeSets().GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read default scope set of %s: %w", s.provider, err)
	}
	return set, nil
}

// SetScopes replaces the items of the template. Existing bindings keep their own copies.
func (s *Service) SetScopes(ctx context.Context, actorID uint, set *entity.ScopeSet) error {
	if err := validateSet(set); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		id, err := s.defaultID(ctx, uow)
		if err != nil {
			return err
		}
		return uow.ScopeSets().ReplaceItems(ctx, id, set.Items)
	})
	if err != nil {
		s.logger.Error("failed to set default scopes", "provider", s.provider, "actor_id", actorID, "error", err)
		return err
	}
	s.logger.Info("default scopes replaced", "provider", s.provider, "actor_id", actorID, "scopes", set.String())
	return nil
}

// SetUserScopes replaces the items of the scope set owned by the user's binding.
// The template and the sets of other bindings are not touched. A binding created before
// the extension was installed gets a new set. Returns apperrors.ErrNotFound when the user
// has no binding for the provider.
func (s *Service) SetUserScopes(ctx context.Context, actorID, userID uint, set *entity.ScopeSet) error {
	if err := validateSet(set); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		binding, err := uow.Bindings().GetByUserID(ctx, s.provider, userID)
		if err != nil {
			return fmt.Errorf("user %d is not bound to %s: %w", userID, s.provider, err)
		}
		if binding.ScopeSetID == nil {
			owned := &entity.ScopeSet{}
			if err := uow.ScopeSets().Create(ctx, owned); err != nil {
				return err
			}
			binding.ScopeSetID = &owned.ID
			if err := uow.Bindings().Update(ctx, binding); err != nil {
				return err
			}
		}
		return uow.ScopeSets().ReplaceItems(ctx, *binding.ScopeSetID, set.Items)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Error("failed to set user scopes", "provider", s.provider, "user_id", userID, "actor_id", actorID, "error", err)
		}
		return err
	}
	s.logger.Info("user scopes replaced", "provider", s.provider, "user_id", userID, "actor_id", actorID, "scopes", set.String())
	return nil
}

func validateSet(set *entity.ScopeSet) error {
	if set == nil {
		return fmt.Errorf("%w: scope set is required", apperrors.ErrValidation)
	}
	if err := set.Validate(); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	return nil
}

// ReadScopeSet returns the scope set of the user's binding, or nil when the user has
// no binding for the provider or the binding carries no scope set.
func (s *Service) ReadScopeSet(ctx context.Context, userID uint) (*entity.ScopeSet, error) {
	binding, err := s.store.Bindings().GetByUserID(ctx, s.provider, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if binding.ScopeSetID == nil {
		return nil, nil
	}

	set, err := s.store.ScopeSets().GetByID(ctx, *binding.ScopeSetID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	return set, err
}

// defaultID returns the id of the template, creating it inside uow when missing.
func (s *Service) defaultID(ctx context.Context, uow repository.UnitOfWork) (uint, error) {
	id, err := uow.ScopeSets().GetDefaultID(ctx, s.provider)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return 0, err
	}

	set := &entity.ScopeSet{}
	if err := uow.ScopeSets().Create(ctx, set); err != nil {
		return 0, err
	}
	id, err = uow.ScopeSets().ClaimDefaultID(ctx, s.provider, set.ID)
	if err != nil {
		return 0, err
	}
	if id != set.ID {
		// a concurrent first use registered its template first
		if err := uow.ScopeSets().Delete(ctx, set.ID); err != nil {
			return 0, err
		}
		return id, nil
	}
	s.logger.Info("default scope set created", "provider", s.provider, "scope_set_id", set.ID)
	return set.ID, nil
}

var _ authprovider.DestroyHook = (*hook)(nil)

type hook struct {
	s *Service
}

// OnCreated clones the template into a scope set owned by the new binding.
// Every cloned scope starts as waiting, whatever its status in the template.
func (h *hook) OnCreated(ctx context.Context, uow repository.UnitOfWork, binding *entity.AuthBinding) error {
	id, err := h.s.defaultID(ctx, uow)
	if err != nil {
		return err
	}
	template, err := uow.ScopeSets().GetByID(ctx, id)
	if err != nil {
		return err
	}

	clone := template.Clone()
	now := h.s.now()
	for i := range clone.Items {
		clone.Items[i].Status = entity.ScopeStatusWaiting
		clone.Items[i].LastWrite = now
	}
	if err := uow.ScopeSets().Create(ctx, clone); err != nil {
		return err
	}

	binding.ScopeSetID = &clone.ID
	return uow.Bindings().Update(ctx, binding)
}

// OnDestroyed removes the scope set owned by a destroyed binding.
func (h *hook) OnDestroyed(ctx context.Context, uow repository.UnitOfWork, binding *entity.AuthBinding) error {
	if binding.ScopeSetID == nil {
		return nil
	}
	return uow.ScopeSets().Delete(ctx, *binding.ScopeSetID)
}
