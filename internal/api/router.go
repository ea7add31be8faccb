package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ingenieria-ia/booking-chat-backend/internal/appointment"
	apptHttp "github.com/ingenieria-ia/booking-chat-backend/internal/appointment/http"
	"github.com/ingenieria-ia/booking-chat-backend/internal/auth"
	"github.com/ingenieria-ia/booking-chat-backend/internal/chat"
	chatHttp "github.com/ingenieria-ia/booking-chat-backend/internal/chat/http"
	"github.com/ingenieria-ia/booking-chat-backend/internal/config"
)

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth, rate
// limiting) and registering routes for the chat and admin modules.
func NewRouter(
	cfg *config.Config,
	apptService appointment.Service,
	dispatcher *chat.Dispatcher,
	jwtManager *auth.JWTManager,
	hasher auth.SecretHasher,
	promReg *prometheus.Registry,
	logger *zap.Logger,
) *gin.Engine {

	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = cfg.ProdOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// adminMiddleware: valid JWT carrying the admin role.
	authMiddleware := auth.AuthRequired(jwtManager)
	adminMiddleware := auth.RequireAdmin()

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	authHandler := NewAuthHandler(cfg.AdminPINHash, hasher, jwtManager, logger)
	apptHandler := apptHttp.NewHandler(apptService)
	chatHandler := chatHttp.NewHandler(dispatcher)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		v1.POST("/auth/login", authHandler.Login)
		chatHttp.RegisterRoutes(v1, chatHandler, RateLimit(cfg.ChatRatePerMin, cfg.ChatRateBurst))
		apptHttp.RegisterRoutes(v1, apptHandler, authMiddleware, adminMiddleware)
	}

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})))

	return r
}
