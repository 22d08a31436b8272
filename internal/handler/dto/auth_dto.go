package dto

import (
	"time"

	"github.com/yourusername/userauth-api/internal/service/authprovider"
)

// BindRequest — запрос на создание/обновление привязки
type BindRequest struct {
	UserID uint `json:"user_id"`
	// Mode: "CreateOnly", "UpdateOnly|WithActualLogin", "LoginOnly|CheckLogin"... Пусто = CreateOrUpdate.
	Mode    string                 `json:"mode"`
	Payload map[string]interface{} `json:"payload" binding:"required"`
}

// LoginRequest — проверка учетных данных провайдера
type LoginRequest struct {
	Payload     map[string]interface{} `json:"payload" binding:"required"`
	ActualLogin bool                   `json:"actual_login"`
}

// UCLResponse — результат Create/Update/Login
type UCLResponse struct {
	OperationResult string                    `json:"operation_result"`
	Error           string                    `json:"error,omitempty"`
	UserID          uint                      `json:"user_id,omitempty"`
	LoginResult     *authprovider.LoginResult `json:"login_result,omitempty"`
}

// NewUCLResponse конвертирует результат движка в ответ API
func NewUCLResponse(res authprovider.UCLResult) UCLResponse {
	out := UCLResponse{
		OperationResult: res.OperationResult.String(),
		UserID:          res.UserID,
		LoginResult:     res.LoginResult,
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}

// ProvidersResponse — список зарегистрированных провайдеров
type ProvidersResponse struct {
	Providers []string `json:"providers"`
}

// ScopeItemDTO — одна запись набора скоупов
type ScopeItemDTO struct {
	Name      string    `json:"name" binding:"required,max=255"`
	Status    string    `json:"status" binding:"omitempty,oneof=W A R"`
	LastWrite time.Time `json:"last_write,omitempty"`
}

// ScopeSetRequest заменяет шаблон скоупов провайдера
type ScopeSetRequest struct {
	Scopes []ScopeItemDTO `json:"scopes" binding:"dive"`
}

// ScopeSetResponse — набор скоупов; Rendered в виде "[W]read [A]write"
type ScopeSetResponse struct {
	ID       uint           `json:"id"`
	Scopes   []ScopeItemDTO `json:"scopes"`
	Rendered string         `json:"rendered"`
}

// CreateUserRequest — создание локального пользователя
type CreateUserRequest struct {
	UserName string `json:"user_name" binding:"required,max=255"`
}

// UserResponse — локальный пользователь
type UserResponse struct {
	ID        uint      `json:"id"`
	UserName  string    `json:"user_name"`
	CreatedAt time.Time `json:"created_at"`
}

// BindingResponse — привязка пользователя к провайдеру
type BindingResponse struct {
	Provider          string     `json:"provider"`
	ExternalAccountID string     `json:"external_account_id"`
	ScopeSetID        *uint      `json:"scope_set_id,omitempty"`
	LastLoginTime     *time.Time `json:"last_login_time,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
