package authprovider

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/yourusername/userauth-api/internal/domain/repository"
)

// Registry holds the configured providers by name and dispatches untyped calls to them.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]AuthProvider
}

// NewRegistry registers the given providers. Names must be unique.
func NewRegistry(list ...AuthProvider) (*Registry, error) {
	r := &Registry{providers: make(map[string]AuthProvider, len(list))}
	for _, p := range list {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds p under p.Name().
func (r *Registry) Register(p AuthProvider) error {
	name := p.Name()
	if name == "" {
		return fmt.Errorf("auth provider without a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("auth provider %q is already registered", name)
	}
	r.providers[name] = p
	return nil
}

// Get returns the provider registered under name or ErrUnknownProvider.
func (r *Registry) Get(name string) (AuthProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return p, nil
}

// Names returns the registered provider names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) CreateOrUpdate(ctx context.Context, name string, actorID, userID uint, payload Fields, mode Mode) (UCLResult, error) {
	p, err := r.Get(name)
	if err != nil {
		return UCLResult{}, err
	}
	return p.CreateOrUpdateUser(ctx, actorID, userID, payload, mode)
}

func (r *Registry) Login(ctx context.Context, name string, payload Fields, actualLogin bool) (LoginResult, error) {
	p, err := r.Get(name)
	if err != nil {
		return LoginResult{}, err
	}
	return p.LoginUser(ctx, payload, actualLogin)
}

func (r *Registry) Destroy(ctx context.Context, name string, actorID, userID uint) error {
	p, err := r.Get(name)
	if err != nil {
		return err
	}
	return p.DestroyUser(ctx, actorID, userID)
}

func (r *Registry) Find(ctx context.Context, name, externalID string) (*IdentifiedUser[Fields], error) {
	p, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	return p.FindUser(ctx, externalID)
}

// DestroyOnCascade removes the bindings of userID from every provider inside uow.
func (r *Registry) DestroyOnCascade(ctx context.Context, uow repository.UnitOfWork, userID uint) error {
	for _, name := range r.Names() {
		p, err := r.Get(name)
		if err != nil {
			return err
		}
		if err := p.DestroyOnCascade(ctx, uow, userID); err != nil {
			return fmt.Errorf("failed to destroy %s binding of user %d: %w", name, userID, err)
		}
	}
	return nil
}
