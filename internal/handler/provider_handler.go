package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/yourusername/userauth-api/internal/handler/dto"
	"github.com/yourusername/userauth-api/internal/middleware"
	"github.com/yourusername/userauth-api/internal/service/authprovider"
)

// ProviderHandler — универсальный диспетчер: провайдер выбирается по имени из URL,
// payload передается как JSON объект без типизации.
type ProviderHandler struct {
	registry *authprovider.Registry
	logger   *slog.Logger
}

// NewProviderHandler создает обработчик провайдеров
func NewProviderHandler(registry *authprovider.Registry, logger *slog.Logger) *ProviderHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProviderHandler{registry: registry, logger: logger}
}

// ListProviders GET /api/auth/providers
func (h *ProviderHandler) ListProviders(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ProvidersResponse{Providers: h.registry.Names()})
}

// DescribePayload GET /api/auth/providers/:name/payload
func (h *ProviderHandler) DescribePayload(c *gin.Context) {
	p, err := h.registry.Get(c.Param("name"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, p.CreatePayloadFields())
}

// Bind POST /api/auth/providers/:name/bindings
// AlreadyBound/NotBound и неуспешный логин — нормальные результаты, они возвращаются с 200.
func (h *ProviderHandler) Bind(c *gin.Context) {
	var req dto.BindRequest
	if err := bindPayloadJSON(c, &req); err != nil {
		bindingError(c, err)
		return
	}
	mode, err := authprovider.ParseMode(req.Mode)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	res, err := h.registry.CreateOrUpdate(c.Request.Context(), c.Param("name"), middleware.ActorID(c), req.UserID, req.Payload, mode)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}

	status := http.StatusOK
	if res.OperationResult == authprovider.UCCreated {
		status = http.StatusCreated
	}
	c.JSON(status, dto.NewUCLResponse(res))
}

// Login POST /api/auth/providers/:name/login
func (h *ProviderHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := bindPayloadJSON(c, &req); err != nil {
		bindingError(c, err)
		return
	}

	res, err := h.registry.Login(c.Request.Context(), c.Param("name"), req.Payload, req.ActualLogin)
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Unbind DELETE /api/auth/providers/:name/bindings/:userId
func (h *ProviderHandler) Unbind(c *gin.Context) {
	userID := c.GetUint("userID")
	if err := h.registry.Destroy(c.Request.Context(), c.Param("name"), middleware.ActorID(c), userID); err != nil {
		handleError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// FindAccount GET /api/auth/providers/:name/accounts/:externalId
func (h *ProviderHandler) FindAccount(c *gin.Context) {
	found, err := h.registry.Find(c.Request.Context(), c.Param("name"), c.Param("externalId"))
	if err != nil {
		handleError(c, h.logger, err)
		return
	}
	if found == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "External account is not bound", "error_type": "not_bound"})
		return
	}
	c.JSON(http.StatusOK, found)
}

// bindPayloadJSON работает как ShouldBindJSON, но числа в payload остаются json.Number:
// идентификаторы больше 2^53 не теряют точность при декодировании.
func bindPayloadJSON(c *gin.Context, obj interface{}) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(obj); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(obj)
}
