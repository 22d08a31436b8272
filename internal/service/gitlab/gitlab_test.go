package gitlab

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/userauth-api/internal/domain/entity"
	"github.com/yourusername/userauth-api/internal/repository/postgres"
	"github.com/yourusername/userauth-api/internal/service/authprovider"
	"github.com/yourusername/userauth-api/internal/testutil"
)

const actor uint = 1

func newTestProvider(t *testing.T) (*authprovider.Provider[Info], *postgres.Store) {
	t.Helper()
	store := postgres.NewStore(testutil.NewDB(t))
	return NewProvider(store), store
}

func createUser(t *testing.T, store *postgres.Store) *entity.User {
	t.Helper()
	u := &entity.User{UserName: uuid.NewString()}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u
}

func TestCreateAndReadInfo(t *testing.T) {
	ctx := context.Background()
	p, store := newTestProvider(t)
	u := createUser(t, store)
	accountID := strings.ReplaceAll(uuid.NewString(), "-", "")

	created, err := p.CreateOrUpdate(ctx, actor, u.ID, Info{GitLabAccountID: accountID}, authprovider.Mode{})
	require.NoError(t, err)
	assert.Equal(t, authprovider.UCCreated, created.OperationResult)

	found, err := p.FindByExternalID(ctx, accountID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, u.ID, found.UserID)
	assert.Equal(t, accountID, found.Payload.GitLabAccountID)

	missing, err := p.FindByExternalID(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, p.Destroy(ctx, actor, u.ID))
	found, err = p.FindByExternalID(ctx, accountID)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestProviderName(t *testing.T) {
	p, _ := newTestProvider(t)
	reg, err := authprovider.NewRegistry(p)
	require.NoError(t, err)
	assert.Contains(t, reg.Names(), "GitLab")
	assert.Equal(t, authprovider.Fields{"GitLabAccountId": ""}, p.CreatePayloadFields())
	assert.Equal(t, Info{}, p.CreatePayload())
}

// runStandardGenericTest drives the provider through the untyped surface only.
func runStandardGenericTest(t *testing.T, p authprovider.AuthProvider, store *postgres.Store,
	forCreate, forLogin, forLoginFail func(userName string) authprovider.Fields) {
	t.Helper()
	ctx := context.Background()
	u := createUser(t, store)

	res, err := p.CreateOrUpdateUser(ctx, actor, u.ID, forCreate(u.UserName), authprovider.Mode{})
	require.NoError(t, err)
	assert.Equal(t, authprovider.UCCreated, res.OperationResult)

	res, err = p.CreateOrUpdateUser(ctx, actor, u.ID, forCreate(u.UserName), authprovider.Mode{Bind: authprovider.CreateOnly})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, authprovider.ErrAlreadyBound)

	res, err = p.CreateOrUpdateUser(ctx, actor, u.ID, forCreate(u.UserName), authprovider.Mode{Bind: authprovider.UpdateOnly})
	require.NoError(t, err)
	assert.Equal(t, authprovider.UCUpdated, res.OperationResult)

	for _, actual := range []bool{false, true} {
		lr, err := p.LoginUser(ctx, forLogin(u.UserName), actual)
		require.NoError(t, err)
		assert.True(t, lr.Success)
		assert.Equal(t, u.ID, lr.UserID)

		lr, err = p.LoginUser(ctx, forLoginFail(u.UserName), actual)
		require.NoError(t, err)
		assert.False(t, lr.Success)
	}

	require.NoError(t, p.DestroyUser(ctx, actor, u.ID))
	require.NoError(t, p.DestroyUser(ctx, actor, u.ID))

	lr, err := p.LoginUser(ctx, forLogin(u.UserName), true)
	require.NoError(t, err)
	assert.False(t, lr.Success)
	assert.Equal(t, authprovider.LoginUnregistered, lr.FailureCode)

	res, err = p.CreateOrUpdateUser(ctx, actor, u.ID, forCreate(u.UserName), authprovider.Mode{Bind: authprovider.UpdateOnly})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, authprovider.ErrNotBound)
}

func TestStandardGeneric_TypedFields(t *testing.T) {
	p, store := newTestProvider(t)
	codec := Codec{}
	runStandardGenericTest(t, p, store,
		func(name string) authprovider.Fields {
			return codec.ToFields(Info{GitLabAccountID: "GitLabAccountIdFor:" + name})
		},
		func(name string) authprovider.Fields {
			return codec.ToFields(Info{GitLabAccountID: "GitLabAccountIdFor:" + name})
		},
		func(name string) authprovider.Fields {
			return codec.ToFields(Info{GitLabAccountID: "NO!" + name})
		},
	)
}

func TestStandardGeneric_KeyValue(t *testing.T) {
	p, store := newTestProvider(t)
	runStandardGenericTest(t, p, store,
		func(name string) authprovider.Fields {
			return authprovider.Fields{"GitLabAccountId": "IdFor:" + name}
		},
		func(name string) authprovider.Fields {
			return authprovider.Fields{"GitLabAccountId": "IdFor:" + name}
		},
		func(name string) authprovider.Fields {
			// account ids are case sensitive
			return authprovider.Fields{"GitLabAccountId": strings.ToUpper("IdFor:" + name)}
		},
	)
}

func TestCodec_FromFields(t *testing.T) {
	codec := Codec{}

	info, err := codec.FromFields(authprovider.Fields{"GitLabAccountId": "42"})
	require.NoError(t, err)
	assert.Equal(t, Info{GitLabAccountID: "42"}, info)

	info, err = codec.FromFields(authprovider.Fields{"GitLabAccountId": float64(42), "ScopeSetId": float64(7)})
	require.NoError(t, err)
	assert.Equal(t, Info{GitLabAccountID: "42", ScopeSetID: 7}, info)

	_, err = codec.FromFields(authprovider.Fields{"GitLabAccountId": "42", "Email": "a@b.c"})
	assert.ErrorIs(t, err, authprovider.ErrUnknownField)

	_, err = codec.FromFields(authprovider.Fields{})
	assert.ErrorIs(t, err, authprovider.ErrMissingField)

	_, err = codec.FromFields(authprovider.Fields{"GitLabAccountId": "42", "ScopeSetId": "x"})
	assert.ErrorIs(t, err, authprovider.ErrInvalidPayload)

	info, err = codec.FromFields(authprovider.Fields{"GitLabAccountId": json.Number("12345678901234567891")})
	require.NoError(t, err)
	assert.Equal(t, "12345678901234567891", info.GitLabAccountID)

	_, err = codec.FromFields(authprovider.Fields{"GitLabAccountId": 1.5})
	assert.ErrorIs(t, err, authprovider.ErrInvalidPayload)

	_, err = codec.FromFields(authprovider.Fields{"GitLabAccountId": 1e30})
	assert.ErrorIs(t, err, authprovider.ErrInvalidPayload)

	_, err = codec.FromFields(authprovider.Fields{"GitLabAccountId": "42", "ScopeSetId": 7.5})
	assert.ErrorIs(t, err, authprovider.ErrInvalidPayload)

	back, err := codec.FromFields(codec.ToFields(Info{GitLabAccountID: "a", ScopeSetID: 3}))
	require.NoError(t, err)
	assert.Equal(t, Info{GitLabAccountID: "a", ScopeSetID: 3}, back)
}

func TestScopeSetIDIsIntrinsic(t *testing.T) {
	ctx := context.Background()
	p, store := newTestProvider(t)
	u := createUser(t, store)

	// caller supplied scope set id is ignored on creation and update
	_, err := p.CreateOrUpdate(ctx, actor, u.ID, Info{GitLabAccountID: "acc", ScopeSetID: 77}, authprovider.Mode{})
	require.NoError(t, err)

	found, err := p.FindByExternalID(ctx, "acc")
	require.NoError(t, err)
	assert.Zero(t, found.Payload.ScopeSetID)

	b, err := store.Bindings().GetByUserID(ctx, ProviderName, u.ID)
	require.NoError(t, err)
	id := uint(5)
	b.ScopeSetID = &id
	require.NoError(t, store.Bindings().Update(ctx, b))

	_, err = p.CreateOrUpdate(ctx, actor, u.ID, Info{GitLabAccountID: "acc", ScopeSetID: 77}, authprovider.Mode{Bind: authprovider.UpdateOnly})
	require.NoError(t, err)

	found, err = p.FindByExternalID(ctx, "acc")
	require.NoError(t, err)
	assert.Equal(t, uint(5), found.Payload.ScopeSetID)
}

func TestValidate(t *testing.T) {
	p, _ := newTestProvider(t)
	_, err := p.CreateOrUpdate(context.Background(), actor, 3, Info{GitLabAccountID: "  "}, authprovider.Mode{})
	assert.ErrorIs(t, err, authprovider.ErrInvalidPayload)
}
