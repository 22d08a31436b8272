package authprovider

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/yourusername/userauth-api/internal/domain/entity"
	"github.com/yourusername/userauth-api/internal/domain/repository"
	"github.com/yourusername/userauth-api/internal/repository/postgres"
	"github.com/yourusername/userauth-api/internal/testutil"
)

const demoProvider = "Demo"

// demoPayload has a mutable display name and a secret checked by the login challenge.
type demoPayload struct {
	AccountID   string
	DisplayName string
	Secret      string
}

type demoCodec struct{}

func (demoCodec) New() demoPayload { return demoPayload{} }
func (demoCodec) ExternalID(p demoPayload) string { return p.AccountID }

func (demoCodec) Validate(p demoPayload) error {
	if p.AccountID == "" {
		return errors.New("AccountId is empty")
	}
	return nil
}

func (demoCodec) Apply(p demoPayload, b *entity.AuthBinding) {
	if b.Payload == nil {
		b.Payload = entity.JSONMap{}
	}
	b.Payload["display_name"] = p.DisplayName
	b.Payload["secret"] = p.Secret
}

func (demoCodec) FromBinding(b *entity.AuthBinding) (demoPayload, error) {
	name, _ := b.Payload["display_name"].(string)
	secret, _ := b.Payload["secret"].(string)
	return demoPayload{AccountID: b.ExternalAccountID, DisplayName: name, Secret: secret}, nil
}

func (demoCodec) Challenge(stored *entity.AuthBinding, presented demoPayload) bool {
	secret, _ := stored.Payload["secret"].(string)
	return stored.ExternalAccountID == presented.AccountID && secret == presented.Secret
}

func (demoCodec) FromFields(f Fields) (demoPayload, error) {
	if err := CheckFields(f, []string{"AccountId", "DisplayName", "Secret"}, []string{"AccountId"}); err != nil {
		return demoPayload{}, err
	}
	var p demoPayload
	var err error
	if p.AccountID, err = StringField(f, "AccountId"); err != nil {
		return demoPayload{}, err
	}
	if p.DisplayName, err = StringField(f, "DisplayName"); err != nil {
		return demoPayload{}, err
	}
	if p.Secret, err = StringField(f, "Secret"); err != nil {
		return demoPayload{}, err
	}
	return p, nil
}

func (demoCodec) ToFields(p demoPayload) Fields {
	return Fields{"AccountId": p.AccountID, "DisplayName": p.DisplayName, "Secret": p.Secret}
}

func newDemoProvider(t *testing.T, opts ...Option) (*Provider[demoPayload], *postgres.Store) {
	t.Helper()
	store := postgres.NewStore(testutil.NewDB(t))
	return New[demoPayload](demoProvider, demoCodec{}, store, opts...), store
}

// conflictingStore makes the first failures binding inserts report a lost race.
type conflictingStore struct {
	repository.Store
	failures int
}

func (s *conflictingStore) InTx(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	return s.Store.InTx(ctx, func(uow repository.UnitOfWork) error {
		return fn(&conflictingUnit{UnitOfWork: uow, store: s})
	})
}

type conflictingUnit struct {
	repository.UnitOfWork
	store *conflictingStore
}

func (u *conflictingUnit) Bindings() repository.AuthBindingRepository {
	return &conflictingBindings{AuthBindingRepository: u.UnitOfWork.Bindings(), store: u.store}
}

type conflictingBindings struct {
	repository.AuthBindingRepository
	store *conflictingStore
}

func (b *conflictingBindings) Create(ctx context.Context, binding *entity.AuthBinding) error {
	if b.store.failures > 0 {
		b.store.failures--
		return fmt.Errorf("%w: simulated race", repository.ErrDuplicateBinding)
	}
	return b.AuthBindingRepository.Create(ctx, binding)
}

// MockBindingCache implements repository.BindingCache.
type MockBindingCache struct {
	mock.Mock
}

func (m *MockBindingCache) Get(ctx context.Context, provider, externalAccountID string) (*entity.AuthBinding, error) {
	args := m.Called(ctx, provider, externalAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AuthBinding), args.Error(1)
}

func (m *MockBindingCache) Set(ctx context.Context, binding *entity.AuthBinding) error {
	args := m.Called(ctx, binding)
	return args.Error(0)
}

func (m *MockBindingCache) Invalidate(ctx context.Context, provider, externalAccountID string) error {
	args := m.Called(ctx, provider, externalAccountID)
	return args.Error(0)
}
