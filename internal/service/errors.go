package service

import (
	"fmt"

	apperrors "github.com/yourusername/userauth-api/internal/pkg/errors"
)

// Определяем кастомные ошибки для сервисов
var (
	ErrUserNameRequired = fmt.Errorf("user name is required: %w", apperrors.ErrValidation)
	ErrUserNameTaken    = fmt.Errorf("user name is already taken: %w", apperrors.ErrConflict)
)
