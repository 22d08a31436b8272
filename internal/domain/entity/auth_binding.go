package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// JSONMap holds provider specific payload fields in a jsonb column.
type JSONMap map[string]interface{}

// Scan implements sql.Scanner for JSONMap.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("failed to unmarshal JSONB value: expected []byte or string")
	}

	if len(data) == 0 {
		*m = JSONMap{}
		return nil
	}

	return json.Unmarshal(data, m)
}

// Value implements driver.Valuer for JSONMap.
func (m JSONMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// AuthBinding links a local user to an account of an external authentication provider.
// A user has at most one binding per provider and an external account is bound to at most
// one user per provider.
type AuthBinding struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	Provider          string     `gorm:"size:64;not null;uniqueIndex:idx_auth_bindings_provider_account,priority:1;uniqueIndex:idx_auth_bindings_provider_user,priority:1" json:"provider"`
	ExternalAccountID string     `gorm:"size:255;not null;uniqueIndex:idx_auth_bindings_provider_account,priority:2" json:"external_account_id"`
	UserID            uint       `gorm:"not null;uniqueIndex:idx_auth_bindings_provider_user,priority:2" json:"user_id"`
	Payload           JSONMap    `gorm:"type:jsonb;not null" json:"payload"`
	ScopeSetID        *uint      `json:"scope_set_id,omitempty"`
	LastLoginTime     *time.Time `json:"last_login_time,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func (AuthBinding) TableName() string {
	return "auth_bindings"
}
