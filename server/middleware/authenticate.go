package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/forohub/auth"
	"github.com/kbukum/forohub/auth/authctx"
	"github.com/kbukum/forohub/logger"
)

// AuthState is where a request stands in authentication and authorization.
type AuthState string

const (
	StateUnstarted      AuthState = "UNSTARTED"
	StateTokenExtracted AuthState = "TOKEN_EXTRACTED"
	StateAnonymous      AuthState = "ANONYMOUS"
	StateIdentified     AuthState = "IDENTIFIED"
	StateAuthorized     AuthState = "AUTHORIZED"
	StateRejected       AuthState = "REJECTED"
)

const (
	bearerPrefix = "Bearer "
	authStateKey = "auth_state"
)

// TokenVerifier checks a bearer token and returns its subject login.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// BearerToken extracts the token from an Authorization header value.
// The scheme is matched case-insensitively and whitespace is trimmed.
func BearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// Authenticate resolves the bearer token of a request to an identity and
// stores it with authctx. It never rejects: a missing or bad token, an
// unknown or disabled account, or a store failure all leave the request
// anonymous for Authorize to judge.
func Authenticate(tokens TokenVerifier, store auth.CredentialStore, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithComponent("authn")

	return func(c *gin.Context) {
		setState(c, StateUnstarted)
		ctx := c.Request.Context()
		reqLog := log.WithContext(ctx)

		raw, ok := BearerToken(c.GetHeader("Authorization"))
		if !ok {
			setState(c, StateAnonymous)
			c.Next()
			return
		}
		setState(c, StateTokenExtracted)

		login, err := tokens.Verify(raw)
		if err != nil {
			reqLog.Debug("bearer token rejected", logger.Fields(
				logger.FieldAuthState, StateAnonymous,
				logger.FieldReason, err.Error(),
			))
			setState(c, StateAnonymous)
			c.Next()
			return
		}

		identity, err := store.FindByLogin(ctx, login)
		switch {
		case errors.Is(err, auth.ErrIdentityNotFound):
			reqLog.Debug("token subject unknown", logger.Fields(
				logger.FieldAuthState, StateAnonymous,
				logger.FieldLogin, login,
			))
			identity = nil
		case err != nil:
			reqLog.Warn("identity lookup failed", logger.Fields(
				logger.FieldAuthState, StateAnonymous,
				logger.FieldLogin, login,
				logger.FieldError, err.Error(),
			))
			identity = nil
		case !identity.Enabled:
			reqLog.Debug("token subject disabled", logger.Fields(
				logger.FieldAuthState, StateAnonymous,
				logger.FieldLogin, login,
			))
			identity = nil
		}

		if identity == nil {
			setState(c, StateAnonymous)
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(authctx.With(ctx, identity))
		setState(c, StateIdentified)
		reqLog.Debug("request identified", logger.Fields(
			logger.FieldAuthState, StateIdentified,
			logger.FieldLogin, identity.Login,
			logger.FieldUserID, identity.ID,
		))
		c.Next()
	}
}

// State returns the auth state recorded on c.
func State(c *gin.Context) AuthState {
	if v, ok := c.Get(authStateKey); ok {
		if s, ok := v.(AuthState); ok {
			return s
		}
	}
	return StateUnstarted
}

func setState(c *gin.Context, s AuthState) {
	c.Set(authStateKey, s)
}
