package server

import (
	"github.com/gin-gonic/gin"

	"jdgap-backend/internal/gap"
	"jdgap-backend/internal/resumes"
	"jdgap-backend/internal/services/health"
	"jdgap-backend/internal/sessions"
	"jdgap-backend/internal/shared/config"
	"jdgap-backend/internal/shared/server/middleware"
	"jdgap-backend/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router wires up.
type RouterDeps struct {
	Config         config.Config
	Health         *health.Service
	SessionHandler *sessions.Handler
	ResumeHandler  *resumes.Handler
	GapHandler     *gap.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, deps.Health.Status())
	})
	deps.SessionHandler.RegisterRoutes(api)
	deps.ResumeHandler.RegisterRoutes(api)
	deps.GapHandler.RegisterRoutes(api)

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
