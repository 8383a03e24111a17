package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/comitanigiacomo/kanso-grid/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-grid/internal/core/services"
)

const (
	statusConnected   = "connected"
	statusUnreachable = "unreachable"
	statusDisabled    = "disabled"
)

// RouterDependencies wires the engine. DB and Redis are optional: a nil DB
// means in-memory storage, a nil Redis disables rate limiting.
type RouterDependencies struct {
	AuthHandler       *AuthHandler
	HabitHandler      *HabitHandler
	EntryHandler      *EntryHandler
	ViewHandler       *ViewHandler
	StatsHandler      *StatsHandler
	PreferenceHandler *PreferenceHandler
	GroupHandler      *GroupHandler
	TokenService      *services.TokenService
	DB                *sqlx.DB
	Redis             *redis.Client
	RateLimit         middleware.RateLimit
	StartTime         time.Time
}

func NewRouter(deps RouterDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS())

	if deps.Redis != nil && deps.RateLimit.Limit > 0 {
		router.Use(middleware.RateLimiterMiddleware(deps.Redis, deps.RateLimit))
	}

	router.GET("/health", healthHandler(deps))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := router.Group("/api/v1")

	deps.AuthHandler.RegisterRoutes(apiV1)

	protected := apiV1.Group("")
	protected.Use(middleware.AuthMiddleware(deps.TokenService))
	{
		deps.HabitHandler.RegisterRoutes(protected)
		deps.ViewHandler.RegisterRoutes(protected)
		deps.EntryHandler.RegisterRoutes(protected)
		deps.StatsHandler.RegisterRoutes(protected)
		deps.PreferenceHandler.RegisterRoutes(protected)
		deps.GroupHandler.RegisterRoutes(protected)
	}

	return router
}

// healthHandler reports 503 when a configured backend does not answer.
func healthHandler(deps RouterDependencies) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		dbStatus := statusDisabled
		if deps.DB != nil {
			dbStatus = statusConnected
			if err := deps.DB.PingContext(ctx); err != nil {
				dbStatus = statusUnreachable
			}
		}

		redisStatus := statusDisabled
		if deps.Redis != nil {
			redisStatus = statusConnected
			if err := deps.Redis.Ping(ctx).Err(); err != nil {
				redisStatus = statusUnreachable
			}
		}

		status, code := "ok", http.StatusOK
		if dbStatus == statusUnreachable || redisStatus == statusUnreachable {
			status, code = "degraded", http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":   status,
			"database": dbStatus,
			"redis":    redisStatus,
			"uptime":   time.Since(deps.StartTime).String(),
		})
	}
}
