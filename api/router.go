package api

import (
	"github.com/gin-gonic/gin"

	"github.com/kbukum/forohub/auth"
	"github.com/kbukum/forohub/authz"
	"github.com/kbukum/forohub/logger"
	"github.com/kbukum/forohub/observability"
	"github.com/kbukum/forohub/resilience"
	"github.com/kbukum/forohub/server/middleware"
)

// TokenCodec issues and verifies bearer tokens.
type TokenCodec interface {
	TokenIssuer
	middleware.TokenVerifier
}

// Deps are the collaborators the API is built from.
type Deps struct {
	Verifier Authenticator
	Tokens   TokenCodec
	Store    auth.CredentialStore
	Accounts Accounts
	Metrics  *observability.AuthMetrics
	Log      *logger.Logger
	// Policy overrides the default route table.
	Policy *authz.Policy
	// LoginLimiter throttles POST /login per client address. Nil disables it.
	LoginLimiter *resilience.KeyedLimiter
}

// Register installs the auth gates on engine and mounts the API routes.
// Gin applies middleware only to routes registered after it, so call
// Register before mounting any other route that must be gated.
func Register(engine *gin.Engine, deps Deps) *Handlers {
	policy := deps.Policy
	if policy == nil {
		policy = Policy()
	}

	engine.Use(
		middleware.Authenticate(deps.Tokens, deps.Store, deps.Log),
		middleware.Authorize(policy, deps.Metrics, deps.Log),
	)

	h := NewHandlers(deps.Verifier, deps.Tokens, deps.Accounts, deps.Log)
	engine.POST("/login", middleware.RateLimit(deps.LoginLimiter, deps.Metrics, deps.Log), h.Login)
	engine.GET("/me", h.Me)

	usuarios := engine.Group("/usuarios")
	usuarios.POST("", h.RegisterUser)
	usuarios.GET("/:id", h.GetUser)
	usuarios.PUT("/:id/bloquear", h.BlockUser)
	usuarios.PUT("/:id/desbloquear", h.UnblockUser)
	return h
}
