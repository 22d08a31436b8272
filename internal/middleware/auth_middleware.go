package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/userauth-api/pkg/auth"
)

// ActorIDKey — ключ в контексте Gin с id автора операции
const ActorIDKey = "actor_id"

// ActorMiddleware определяет, от чьего имени выполняется вызов
type ActorMiddleware struct {
	jwtService     *auth.JWTService
	defaultActorID uint
	logger         *slog.Logger
}

// NewActorMiddleware создает middleware. Без jwtService все вызовы выполняются от defaultActorID.
func NewActorMiddleware(jwtService *auth.JWTService, defaultActorID uint, logger *slog.Logger) *ActorMiddleware {
	if logger == nil {
		logger = slog.Default()
	}
	return &ActorMiddleware{jwtService: jwtService, defaultActorID: defaultActorID, logger: logger}
}

// RequireActor кладет actor id в контекст или отвечает 401
func (m *ActorMiddleware) RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.jwtService == nil {
			c.Set(ActorIDKey, m.defaultActorID)
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required", "error_type": "token_missing"})
			return
		}

		// Проверяем формат заголовка Bearer {token}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header format must be Bearer {token}", "error_type": "token_format"})
			return
		}

		claims, err := m.jwtService.ParseToken(parts[1])
		if err != nil {
			m.logger.Info("rejected bearer token", "path", c.Request.URL.Path, "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token", "error_type": "token_invalid"})
			return
		}
		actorID, err := claims.Actor()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token has no actor", "error_type": "token_invalid"})
			return
		}

		c.Set(ActorIDKey, actorID)
		c.Next()
	}
}

// ActorID достает id автора операции, положенный RequireActor
func ActorID(c *gin.Context) uint {
	if v, ok := c.Get(ActorIDKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}
