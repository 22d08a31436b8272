package repository

import (
	"context"

	"github.com/yourusername/userauth-api/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, id uint) (*entity.User, error)
	GetByUserName(ctx context.Context, userName string) (*entity.User, error)
	Delete(ctx context.Context, id uint) error
}
