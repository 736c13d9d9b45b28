package handler

import (
	"digital-wallet/internal/adapter/http/middleware"
	redisStore "digital-wallet/internal/adapter/storage/redis"
	"digital-wallet/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	Mode           string // gin mode: debug, release, test
	AuthSvc        ports.AuthService
	WalletSvc      ports.WalletService
	TransactionSvc ports.TransactionService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Mode != "" {
		gin.SetMode(deps.Mode)
	}
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Deep health check, verifies PostgreSQL and Redis
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- JWT-authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	walletHandler := NewWalletHandler(deps.WalletSvc)
	txHandler := NewTransactionHandler(deps.TransactionSvc)

	wallets := v1.Group("/wallets", jwtAuth)
	{
		wallets.POST("", rl("wallets"), walletHandler.Create)
		wallets.GET("", rl("wallets"), walletHandler.List)
		wallets.POST("/:id/deposit", rl("transfers"), walletHandler.Deposit)
		wallets.POST("/:id/withdraw", rl("transfers"), walletHandler.Withdraw)
		wallets.GET("/:id/transactions", rl("transactions"), txHandler.ListByWallet)
	}

	transactions := v1.Group("/transactions", jwtAuth)
	{
		transactions.GET("", rl("transactions"), txHandler.ListAll)
		transactions.POST("/:id/decision", rl("transactions"), txHandler.Decide)
	}

	return r
}
