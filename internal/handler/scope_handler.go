package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/userauth-api/internal/domain/entity"
	"github.com/yourusername/userauth-api/internal/handler/dto"
	"github.com/yourusername/userauth-api/internal/middleware"
	"github.com/yourusername/userauth-api/internal/service/authscope"
)

// ScopeHandler управляет шаблоном скоупов и скоупами привязок
type ScopeHandler struct {
	scopes *authscope.Service
	logger *slog.Logger
}

// NewScopeHandler создает обработчик скоупов
func NewScopeHandler(scopes *authscope.Service, logger *slog.Logger) *ScopeHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScopeHandler{scopes: scopes, logger: logger}
}

// GetDefault GET /api/auth/scopes/default
func (h *ScopeHandler) GetDefault(c *gin.Context) {
	set, err := h.scopes.ReadDefaultScopeSet(c.Request.Context())
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toScopeSetResponse(set))
}

// SetDefault PUT /api/auth/scopes/default
// Меняет только шаблон: уже созданные привязки сохраняют свои копии.
func (h *ScopeHandler) SetDefault(c *gin.Context) {
	set, ok := bindScopeSet(c)
	if !ok {
		return
	}
	if err := h.scopes.SetScopes(c.Request.Context(), middleware.ActorID(c), set); err != nil {
		handleError(c, h.logger, err)
		return
	}
	h.GetDefault(c)
}

// SetUserScopes PUT /api/auth/scopes/users/:userId
// Меняет только набор привязки пользователя, шаблон и чужие наборы не затрагиваются.
func (h *ScopeHandler) SetUserScopes(c *gin.Context) {
	set, ok := bindScopeSet(c)
	if !ok {
		return
	}
	if err := h.scopes.SetUserScopes(c.Request.Context(), middleware.ActorID(c), c.GetUint("userID"), set); err != nil {
		handleError(c, h.logger, err)
		return
	}
	h.GetUserScopes(c)
}

// bindScopeSet читает ScopeSetRequest; статус по умолчанию W
func bindScopeSet(c *gin.Context) (*entity.ScopeSet, bool) {
	var req dto.ScopeSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindingError(c, err)
		return nil, false
	}

	set := &entity.ScopeSet{Items: make([]entity.ScopeItem, 0, len(req.Scopes))}
	for _, s := range req.Scopes {
		status := entity.ScopeStatus(s.Status)
		if status == "" {
			status = entity.ScopeStatusWaiting
		}
		set.Items = append(set.Items, entity.ScopeItem{Name: s.Name, Status: status})
	}
	return set, true
}

// GetUserScopes GET /api/auth/scopes/users/:userId
func (h *ScopeHandler) GetUserScopes(c *gin.Context) {
	set, err := h.scopes.ReadScopeSet(c.Request.Context(), c.GetUint("userID"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	if set == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User has no scope set", "error_type": "not_found"})
		return
	}
	c.JSON(http.StatusOK, toScopeSetResponse(set))
}

func toScopeSetResponse(set *entity.ScopeSet) dto.ScopeSetResponse {
	out := dto.ScopeSetResponse{ID: set.ID, Scopes: make([]dto.ScopeItemDTO, 0, len(set.Items)), Rendered: set.String()}
	for _, it := range set.Items {
		out.Scopes = append(out.Scopes, dto.ScopeItemDTO{Name: it.Name, Status: string(it.Status), LastWrite: it.LastWrite})
	}
	return out
}
