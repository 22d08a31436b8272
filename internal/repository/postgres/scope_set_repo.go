package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yourusername/userauth-api/internal/domain/entity"
	apperrors "github.com/yourusername/userauth-api/internal/pkg/errors"
)

// ScopeSetRepo реализует repository.ScopeSetRepository
type ScopeSetRepo struct {
	db *gorm.DB
}

func NewScopeSetRepo(db *gorm.DB) *ScopeSetRepo {
	return &ScopeSetRepo{db: db}
}

// Create inserts the set and its items. Item ids are assigned by the database.
func (r *ScopeSetRepo) Create(ctx context.Context, set *entity.ScopeSet) error {
	now := time.Now()
	for i := range set.Items {
		set.Items[i].ID = 0
		if set.Items[i].LastWrite.IsZero() {
			set.Items[i].LastWrite = now
		}
	}
	if err := r.db.WithContext(ctx).Create(set).Error; err != nil {
		return fmt.Errorf("failed to create scope set: %w", err)
	}
	return nil
}

func (r *ScopeSetRepo) GetByID(ctx context.Context, id uint) (*entity.ScopeSet, error) {
	var set entity.ScopeSet
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("name") }).
		First(&set, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get scope set #%d: %w", id, err)
	}
	return &set, nil
}

// ReplaceItems removes every item of the set and inserts items instead.
// Callers run it inside a transaction.
func (r *ScopeSetRepo) ReplaceItems(ctx context.Context, id uint, items []entity.ScopeItem) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("scope_set_id = ?", id).Delete(&entity.ScopeItem{}).Error; err != nil {
		return fmt.Errorf("failed to clear scope set #%d: %w", id, err)
	}
	if len(items) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]entity.ScopeItem, 0, len(items))
	for _, it := range items {
		lastWrite := it.LastWrite
		if lastWrite.IsZero() {
			lastWrite = now
		}
		rows = append(rows, entity.ScopeItem{ScopeSetID: id, Name: it.Name, Status: it.Status, LastWrite: lastWrite})
	}
	if err := db.Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to write scope set #%d: %w", id, err)
	}
	return nil
}

func (r *ScopeSetRepo) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("scope_set_id = ?", id).Delete(&entity.ScopeItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete items of scope set #%d: %w", id, err)
	}
	if err := db.Delete(&entity.ScopeSet{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete scope set #%d: %w", id, err)
	}
	return nil
}

func (r *ScopeSetRepo) GetDefaultID(ctx context.Context, provider string) (uint, error) {
	var def entity.DefaultScopeSet
	err := r.db.WithContext(ctx).Where("provider = ?", provider).First(&def).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, apperrors.ErrNotFound
		}
		return 0, fmt.Errorf("failed to get default scope set of %s: %w", provider, err)
	}
	return def.ScopeSetID, nil
}

// ClaimDefaultID не перезаписывает существующую ссылку: при гонке двух первых
// обращений побеждает тот, кто вставил строку первым, второй получает его id.
func (r *ScopeSetRepo) ClaimDefaultID(ctx context.Context, provider string, scopeSetID uint) (uint, error) {
	def := entity.DefaultScopeSet{Provider: provider, ScopeSetID: scopeSetID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}},
			DoNothing: true,
		}).
		Create(&def).Error
	if err != nil {
		return 0, fmt.Errorf("failed to set default scope set of %s: %w", provider, err)
	}
	return r.GetDefaultID(ctx, provider)
}
