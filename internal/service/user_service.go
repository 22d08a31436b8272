package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/yourusername/userauth-api/internal/domain/entity"
	"github.com/yourusername/userauth-api/internal/domain/repository"
)

// CascadeDestroyer removes everything a user owns inside the caller's transaction.
// *authprovider.Registry implements it for provider bindings.
type CascadeDestroyer interface {
	DestroyOnCascade(ctx context.Context, uow repository.UnitOfWork, userID uint) error
}

// UserService предоставляет методы для работы с пользователями
type UserService struct {
	store   repository.Store
	cascade CascadeDestroyer
	logger  *slog.Logger
}

// NewUserService создает новый сервис пользователей
func NewUserService(store repository.Store, cascade CascadeDestroyer, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{
		store:   store,
		cascade: cascade,
		logger:  logger,
	}
}

// CreateUser создает пользователя с уникальным именем
func (s *UserService) CreateUser(ctx context.Context, actorID uint, userName string) (*entity.User, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return nil, ErrUserNameRequired
	}

	user := &entity.User{UserName: userName}
	if err := s.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, fmt.Errorf("%w: %s", ErrUserNameTaken, userName)
		}
		s.logger.Error("failed to create user", "actor_id", actorID, "error", err)
		return nil, err
	}

	s.logger.Info("user created", "user_id", user.ID, "actor_id", actorID)
	return user, nil
}

// GetUser возвращает пользователя по ID
func (s *UserService) GetUser(ctx context.Context, userID uint) (*entity.User, error) {
	return s.store.Users().GetByID(ctx, userID)
}

// ListBindings returns the provider bindings of the user ordered by provider name.
func (s *UserService) ListBindings(ctx context.Context, userID uint) ([]entity.AuthBinding, error) {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Bindings().ListByUserID(ctx, userID)
}

// DestroyUser удаляет пользователя вместе с привязками всех провайдеров в одной транзакции.
// Удаление несуществующего пользователя не является ошибкой.
func (s *UserService) DestroyUser(ctx context.Context, actorID, userID uint) error {
	err := s.store.InTx(ctx, func(uow repository.UnitOfWork) error {
		if s.cascade != nil {
			if err := s.cascade.DestroyOnCascade(ctx, uow, userID); err != nil {
				return err
			}
		}
		return uow.Users().Delete(ctx, userID)
	})
	if err != nil {
		s.logger.Error("failed to destroy user", "user_id", userID, "actor_id", actorID, "error", err)
		return fmt.Errorf("failed to destroy user %d: %w", userID, err)
	}

	s.logger.Info("user destroyed", "user_id", userID, "actor_id", actorID)
	return nil
}
