package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/yourusername/userauth-api/internal/middleware"
)

// Routes собирает все обработчики и middleware API
type Routes struct {
	Providers *ProviderHandler
	Scopes    *ScopeHandler // nil, если расширение скоупов не подключено
	Users     *UserHandler

	Actor      *middleware.ActorMiddleware
	Limiter    *middleware.RateLimiter
	LoginLimit middleware.RateLimitConfig
}

// Register настраивает маршруты API на router
func (r Routes) Register(router gin.IRouter) {
	api := router.Group("/api")
	api.Use(r.Actor.RequireActor())

	providers := api.Group("/auth/providers")
	{
		providers.GET("", r.Providers.ListProviders)
		providers.GET("/:name/payload", r.Providers.DescribePayload)
		providers.POST("/:name/bindings", r.Providers.Bind)
		providers.DELETE("/:name/bindings/:userId", middleware.ExtractUintParam("userId", "userID"), r.Providers.Unbind)
		providers.GET("/:name/accounts/:externalId", r.Providers.FindAccount)

		login := []gin.HandlerFunc{}
		if r.Limiter != nil {
			login = append(login, r.Limiter.Limit(r.LoginLimit))
		}
		login = append(login, r.Providers.Login)
		providers.POST("/:name/login", login...)
	}

	if r.Scopes != nil {
		scopes := api.Group("/auth/scopes")
		scopes.GET("/default", r.Scopes.GetDefault)
		scopes.PUT("/default", r.Scopes.SetDefault)
		scopes.GET("/users/:userId", middleware.ExtractUintParam("userId", "userID"), r.Scopes.GetUserScopes)
		scopes.PUT("/users/:userId", middleware.ExtractUintParam("userId", "userID"), r.Scopes.SetUserScopes)
	}

	users := api.Group("/users")
	{
		users.POST("", r.Users.CreateUser)
		withID := users.Group("/:id", middleware.ExtractUintParam("id", "userID"))
		withID.GET("", r.Users.GetUser)
		withID.GET("/providers", r.Users.ListBindings)
		withID.DELETE("", r.Users.DestroyUser)
	}
}
