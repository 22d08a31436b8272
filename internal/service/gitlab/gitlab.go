// Package gitlab binds GitLab account identifiers to local users.
// GitLab is never contacted: the account id presented by the caller is trusted as is.
package gitlab

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/userauth-api/internal/domain/entity"
	"github.com/yourusername/userauth-api/internal/domain/repository"
	"github.com/yourusername/userauth-api/internal/service/authprovider"
)

// ProviderName is the scheme name GitLab bindings are registered under.
const ProviderName = "GitLab"

const (
	fieldAccountID  = "GitLabAccountId"
	fieldScopeSetID = "ScopeSetId"
)

// Info is the GitLab payload.
// ScopeSetID is intrinsic to the binding: it is assigned when the binding is created
// and is ignored when supplied by a caller.
type Info struct {
	GitLabAccountID string `json:"GitLabAccountId"`
	ScopeSetID      uint   `json:"ScopeSetId,omitempty"`
}

// Codec implements authprovider.PayloadCodec for Info.
type Codec struct{}

var _ authprovider.PayloadCodec[Info] = Codec{}

func (Codec) New() Info { return Info{} }

func (Codec) ExternalID(p Info) string { return p.GitLabAccountID }

func (Codec) Validate(p Info) error {
	if strings.TrimSpace(p.GitLabAccountID) == "" {
		return errors.New("GitLabAccountId is required")
	}
	return nil
}

// Apply is a no-op: the account id is the binding key and the scope set is intrinsic.
func (Codec) Apply(Info, *entity.AuthBinding) {}

func (Codec) FromBinding(b *entity.AuthBinding) (Info, error) {
	info := Info{GitLabAccountID: b.ExternalAccountID}
	if b.ScopeSetID != nil {
		info.ScopeSetID = *b.ScopeSetID
	}
	return info, nil
}

// Challenge compares account ids exactly; GitLab ids are case sensitive.
func (Codec) Challenge(stored *entity.AuthBinding, presented Info) bool {
	return stored.ExternalAccountID == presented.GitLabAccountID
}

func (Codec) FromFields(f authprovider.Fields) (Info, error) {
	if err := authprovider.CheckFields(f, []string{fieldAccountID, fieldScopeSetID}, []string{fieldAccountID}); err != nil {
		return Info{}, err
	}
	accountID, err := authprovider.StringField(f, fieldAccountID)
	if err != nil {
		return Info{}, err
	}

	info := Info{GitLabAccountID: accountID}
	if raw, ok := f[fieldScopeSetID]; ok && raw != nil {
		s, err := authprovider.StringField(f, fieldScopeSetID)
		if err != nil {
			return Info{}, err
		}
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Info{}, fmt.Errorf("%w: %s must be a positive integer", authprovider.ErrInvalidPayload, fieldScopeSetID)
		}
		info.ScopeSetID = uint(id)
	}
	return info, nil
}

func (Codec) ToFields(p Info) authprovider.Fields {
	f := authprovider.Fields{fieldAccountID: p.GitLabAccountID}
	if p.ScopeSetID != 0 {
		f[fieldScopeSetID] = p.ScopeSetID
	}
	return f
}

// NewProvider creates the GitLab binding engine.
func NewProvider(store repository.Store, opts ...authprovider.Option) *authprovider.Provider[Info] {
	return authprovider.New[Info](ProviderName, Codec{}, store, opts...)
}
