package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/userauth-api/internal/handler/dto"
	"github.com/yourusername/userauth-api/internal/middleware"
	"github.com/yourusername/userauth-api/internal/service"
)

// UserHandler обрабатывает запросы, связанные с пользователями
type UserHandler struct {
	userService *service.UserService
	logger      *slog.Logger
}

// NewUserHandler создает новый обработчик пользователей
func NewUserHandler(userService *service.UserService, logger *slog.Logger) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{userService: userService, logger: logger}
}

// CreateUser POST /api/users
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req dto.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), middleware.ActorID(c), req.UserName)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, dto.UserResponse{ID: user.ID, UserName: user.UserName, CreatedAt: user.CreatedAt})
}

// GetUser GET /api/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userService.GetUser(c.Request.Context(), c.GetUint("userID"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, dto.UserResponse{ID: user.ID, UserName: user.UserName, CreatedAt: user.CreatedAt})
}

// ListBindings GET /api/users/:id/providers
func (h *UserHandler) ListBindings(c *gin.Context) {
	bindings, err := h.userService.ListBindings(c.Request.Context(), c.GetUint("userID"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	out := make([]dto.BindingResponse, 0, len(bindings))
	for _, b := range bindings {
		out = append(out, dto.BindingResponse{
			Provider:          b.Provider,
			ExternalAccountID: b.ExternalAccountID,
			ScopeSetID:        b.ScopeSetID,
			LastLoginTime:     b.LastLoginTime,
			CreatedAt:         b.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// DestroyUser DELETE /api/users/:id
func (h *UserHandler) DestroyUser(c *gin.Context) {
	if err := h.userService.DestroyUser(c.Request.Context(), middleware.ActorID(c), c.GetUint("userID")); err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}
