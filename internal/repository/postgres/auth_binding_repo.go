package postgres

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/userauth-api/internal/domain/entity"
	"github.com/yourusername/userauth-api/internal/domain/repository"
	apperrors "github.com/yourusername/userauth-api/internal/pkg/errors"
)

type AuthBindingRepo struct {
	db *gorm.DB
}

func NewAuthBindingRepo(db *gorm.DB) *AuthBindingRepo {
	return &AuthBindingRepo{db: db}
}

func (r *AuthBindingRepo) GetByExternalID(ctx context.Context, provider, externalAccountID string) (*entity.AuthBinding, error) {
	var binding entity.AuthBinding
	err := r.db.WithContext(ctx).
		Where("provider = ? AND external_account_id = ?", provider, externalAccountID).
		First(&binding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get binding by external account: %w", err)
	}
	return &binding, nil
}

func (r *AuthBindingRepo) GetByUserID(ctx context.Context, provider string, userID uint) (*entity.AuthBinding, error) {
	var binding entity.AuthBinding
	err := r.db.WithContext(ctx).
		Where("provider = ? AND user_id = ?", provider, userID).
		First(&binding).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get binding by user/provider: %w", err)
	}
	return &binding, nil
}

func (r *AuthBindingRepo) ListByUserID(ctx context.Context, userID uint) ([]entity.AuthBinding, error) {
	var bindings []entity.AuthBinding
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("provider").
		Find(&bindings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bindings of user %d: %w", userID, err)
	}
	return bindings, nil
}

func (r *AuthBindingRepo) Create(ctx context.Context, binding *entity.AuthBinding) error {
	if binding.Payload == nil {
		binding.Payload = entity.JSONMap{}
	}
	if err := r.db.WithContext(ctx).Create(binding).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s/%s", repository.ErrDuplicateBinding, binding.Provider, binding.ExternalAccountID)
		}
		return fmt.Errorf("failed to create binding: %w", err)
	}
	return nil
}

func (r *AuthBindingRepo) Update(ctx context.Context, binding *entity.AuthBinding) error {
	result := r.db.WithContext(ctx).
		Model(&entity.AuthBinding{}).
		Where("id = ?", binding.ID).
		Updates(map[string]interface{}{
			"payload":         binding.Payload,
			"scope_set_id":    binding.ScopeSetID,
			"last_login_time": binding.LastLoginTime,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update binding #%d: %w", binding.ID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("binding #%d: %w", binding.ID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *AuthBindingRepo) DeleteByUserID(ctx context.Context, provider string, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("provider = ? AND user_id = ?", provider, userID).
		Delete(&entity.AuthBinding{})
	if result.Error != nil {
		return false, fmt.Errorf("failed to delete binding of user %d: %w", userID, result.Error)
	}
	return result.RowsAffected > 0, nil
}
