package authprovider

import (
	"errors"
	"fmt"

	apperrors "github.com/yourusername/userauth-api/internal/pkg/errors"
)

// Errors of external account bindings.
var (
	// ErrAlreadyBound: creation requested but a binding already exists and the mode forbids update.
	ErrAlreadyBound = errors.New("already bound")
	// ErrNotBound: update or login requested but no binding exists.
	ErrNotBound = errors.New("not bound")

	ErrInvalidPayload = fmt.Errorf("invalid payload: %w", apperrors.ErrValidation)
	ErrUnknownField   = fmt.Errorf("unknown payload field: %w", apperrors.ErrValidation)
	ErrMissingField   = fmt.Errorf("missing payload field: %w", apperrors.ErrValidation)
	ErrInvalidMode    = fmt.Errorf("invalid mode: %w", apperrors.ErrValidation)

	ErrExtensionHookFailed = errors.New("provider extension hook failed")
	ErrConflict            = fmt.Errorf("concurrent binding write: %w", apperrors.ErrConflict)
	ErrUnknownProvider     = fmt.Errorf("unknown auth provider: %w", apperrors.ErrNotFound)
)
