package authprovider

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yourusername/userauth-api/internal/domain/entity"
	"github.com/yourusername/userauth-api/internal/domain/repository"
	apperrors "github.com/yourusername/userauth-api/internal/pkg/errors"
)

// AuthProvider is the provider contract seen by the registry and other generic callers.
// Payloads cross this boundary as Fields.
type AuthProvider interface {
	Name() string
	CreatePayloadFields() Fields
	CreateOrUpdateUser(ctx context.Context, actorID, userID uint, payload Fields, mode Mode) (UCLResult, error)
	LoginUser(ctx context.Context, payload Fields, actualLogin bool) (LoginResult, error)
	DestroyUser(ctx context.Context, actorID, userID uint) error
	// FindUser returns nil when the external id is not bound.
	FindUser(ctx context.Context, externalID string) (*IdentifiedUser[Fields], error)
	// DestroyOnCascade removes the binding of userID inside the caller's transaction.
	DestroyOnCascade(ctx context.Context, uow repository.UnitOfWork, userID uint) error
}

// IdentifiedUser is a bound local user together with its provider payload.
type IdentifiedUser[P any] struct {
	UserID  uint `json:"user_id"`
	Payload P    `json:"payload"`
}

type options struct {
	ext    Extension
	cache  repository.BindingCache
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Provider.
type Option func(*options)

// WithExtension installs the creation hook.
func WithExtension(ext Extension) Option {
	return func(o *options) { o.ext = ext }
}

// WithCache enables the read-through cache for lookups by external id.
func WithCache(cache repository.BindingCache) Option {
	return func(o *options) { o.cache = cache }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithClock overrides time.Now, used for LastLoginTime.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// Provider is the binding engine of one authentication provider with payload type P.
type Provider[P any] struct {
	name  string
	codec PayloadCodec[P]
	store repository.Store
	options
}

// New creates a provider registered under name.
func New[P any](name string, codec PayloadCodec[P], store repository.Store, opts ...Option) *Provider[P] {
	o := options{logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Provider[P]{
		name:    name,
		codec:   codec,
		store:   store,
		options: o,
	}
}

func (p *Provider[P]) Name() string { return p.name }

// CreatePayload returns an empty payload.
func (p *Provider[P]) CreatePayload() P { return p.codec.New() }

// Codec exposes the payload codec of the provider.
func (p *Provider[P]) Codec() PayloadCodec[P] { return p.codec }

// Login runs the login challenge located by the payload's external id.
// An actual login refreshes the stored payload and LastLoginTime; a check never writes.
func (p *Provider[P]) Login(ctx context.Context, payload P, actualLogin bool) (LoginResult, error) {
	mode := Mode{Bind: LoginOnly, Login: CheckLogin}
	if actualLogin {
		mode = Mode{Bind: UpdateOnly, Login: ActualLogin}
	}
	res, err := p.CreateOrUpdate(ctx, 0, 0, payload, mode)
	if err != nil {
		return LoginResult{}, err
	}
	if res.LoginResult == nil {
		// UpdateOnly refused before the login check
		return *loginFailure(LoginInvalidCredentials, errString(res.Err)), nil
	}
	return *res.LoginResult, nil
}

// Destroy removes the binding of userID. A missing binding is not an error.
func (p *Provider[P]) Destroy(ctx context.Context, actorID, userID uint) error {
	var removed *entity.AuthBinding
	err := p.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		var err error
		removed, err = p.destroy(ctx, uow, userID)
		return err
	})
	if err != nil {
		p.logger.Error("failed to destroy binding", "provider", p.name, "user_id", userID, "actor_id", actorID, "error", err)
		return err
	}
	if removed != nil {
		p.invalidate(ctx, removed.ExternalAccountID)
		p.logger.Info("binding destroyed", "provider", p.name, "user_id", userID, "actor_id", actorID)
	}
	return nil
}

// DestroyOnCascade implements AuthProvider.
func (p *Provider[P]) DestroyOnCascade(ctx context.Context, uow repository.UnitOfWork, userID uint) error {
	removed, err := p.destroy(ctx, uow, userID)
	if err != nil {
		return err
	}
	if removed != nil {
		// before commit; see BindingCache for how a concurrent reader is kept out
		p.invalidate(ctx, removed.ExternalAccountID)
	}
	return nil
}

func (p *Provider[P]) destroy(ctx context.Context, uow repository.UnitOfWork, userID uint) (*entity.AuthBinding, error) {
	binding, err := uow.Bindings().GetByUserID(ctx, p.name, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if _, err := uow.Bindings().DeleteByUserID(ctx, p.name, userID); err != nil {
		return nil, err
	}
	if hook, ok := p.ext.(DestroyHook); ok {
		if err := hook.OnDestroyed(ctx, uow, binding); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExtensionHookFailed, err)
		}
	}
	return binding, nil
}

// FindByExternalID returns the user bound to externalID, or nil when it is not bound.
func (p *Provider[P]) FindByExternalID(ctx context.Context, externalID string) (*IdentifiedUser[P], error) {
	if externalID == "" {
		return nil, fmt.Errorf("%w: empty external account id", ErrInvalidPayload)
	}
	binding, err := p.lookup(ctx, externalID)
	if err != nil || binding == nil {
		return nil, err
	}
	payload, err := p.codec.FromBinding(binding)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload of user %d: %w", p.name, binding.UserID, err)
	}
	return &IdentifiedUser[P]{UserID: binding.UserID, Payload: payload}, nil
}

func (p *Provider[P]) lookup(ctx context.Context, externalID string) (*entity.AuthBinding, error) {
	if p.cache != nil {
		cached, err := p.cache.Get(ctx, p.name, externalID)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			p.logger.Warn("binding cache read failed", "provider", p.name, "error", err)
		}
	}

	binding, err := p.store.Bindings().GetByExternalID(ctx, p.name, externalID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if p.cache != nil {
		if err := p.cache.Set(ctx, binding); err != nil {
			p.logger.Warn("binding cache write failed", "provider", p.name, "error", err)
		}
	}
	return binding, nil
}

func (p *Provider[P]) invalidate(ctx context.Context, externalID string) {
	if p.cache == nil || externalID == "" {
		return
	}
	if err := p.cache.Invalidate(context.WithoutCancel(ctx), p.name, externalID); err != nil {
		p.logger.Warn("binding cache invalidation failed", "provider", p.name, "error", err)
	}
}

// Untyped surface

func (p *Provider[P]) CreatePayloadFields() Fields {
	return p.codec.ToFields(p.codec.New())
}

func (p *Provider[P]) CreateOrUpdateUser(ctx context.Context, actorID, userID uint, payload Fields, mode Mode) (UCLResult, error) {
	typed, err := p.codec.FromFields(payload)
	if err != nil {
		return UCLResult{}, err
	}
	return p.CreateOrUpdate(ctx, actorID, userID, typed, mode)
}

func (p *Provider[P]) LoginUser(ctx context.Context, payload Fields, actualLogin bool) (LoginResult, error) {
	typed, err := p.codec.FromFields(payload)
	if err != nil {
		return LoginResult{}, err
	}
	return p.Login(ctx, typed, actualLogin)
}

func (p *Provider[P]) DestroyUser(ctx context.Context, actorID, userID uint) error {
	return p.Destroy(ctx, actorID, userID)
}

func (p *Provider[P]) FindUser(ctx context.Context, externalID string) (*IdentifiedUser[Fields], error) {
	found, err := p.FindByExternalID(ctx, externalID)
	if err != nil || found == nil {
		return nil, err
	}
	return &IdentifiedUser[Fields]{UserID: found.UserID, Payload: p.codec.ToFields(found.Payload)}, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
