package api

import (
	"context"
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/forohub/auth"
	"github.com/kbukum/forohub/auth/authctx"
	apperrors "github.com/kbukum/forohub/errors"
	"github.com/kbukum/forohub/logger"
	"github.com/kbukum/forohub/server"
	"github.com/kbukum/forohub/users"
	"github.com/kbukum/forohub/validation"
)

// Authenticator checks a login and secret.
type Authenticator interface {
	Authenticate(ctx context.Context, login, secret string) (*auth.Identity, error)
}

// TokenIssuer mints a bearer token for an identity.
type TokenIssuer interface {
	Issue(identity *auth.Identity) (string, error)
}

// Accounts is the account management the handlers expose.
type Accounts interface {
	Register(ctx context.Context, in users.RegisterInput) (*users.User, error)
	Get(ctx context.Context, id uint64) (*users.User, error)
	Block(ctx context.Context, id uint64) (*users.User, error)
	Unblock(ctx context.Context, id uint64) (*users.User, error)
}

// LoginInput is the login request.
type LoginInput struct {
	Email      string `json:"email" validate:"required,email"`
	Contrasena string `json:"contrasena" validate:"required"`
}

// TokenResponse answers a successful login.
type TokenResponse struct {
	Token string `json:"token"`
}

// MeResponse describes the calling identity.
type MeResponse struct {
	ID    uint64   `json:"id"`
	Login string   `json:"login"`
	Roles []string `json:"roles"`
}

// Handlers implements the API endpoints.
type Handlers struct {
	verifier Authenticator
	tokens   TokenIssuer
	accounts Accounts
	log      *logger.Logger
}

// NewHandlers creates the API handlers.
func NewHandlers(verifier Authenticator, tokens TokenIssuer, accounts Accounts, log *logger.Logger) *Handlers {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handlers{
		verifier: verifier,
		tokens:   tokens,
		accounts: accounts,
		log:      log.WithComponent("api"),
	}
}

// Login exchanges valid credentials for a bearer token. Every credential
// failure gets the same 401 body.
func (h *Handlers) Login(c *gin.Context) {
	var in LoginInput
	if appErr := server.BindJSON(c, &in); appErr != nil {
		server.RespondWithError(c, appErr)
		return
	}
	if err := validation.Validate(in); err != nil {
		server.RespondWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	identity, err := h.verifier.Authenticate(ctx, in.Email, in.Contrasena)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		server.RespondWithError(c, apperrors.InvalidCredentials())
		return
	case err != nil:
		server.RespondWithError(c, apperrors.DatabaseError(err))
		return
	}

	token, err := h.tokens.Issue(identity)
	if err != nil {
		h.log.WithContext(ctx).Error("token issuance failed", logger.Fields(
			logger.FieldLogin, identity.Login,
			logger.FieldError, err.Error(),
		))
		server.RespondWithError(c, apperrors.Internal(err))
		return
	}
	server.RespondOK(c, TokenResponse{Token: token})
}

// RegisterUser creates an account with ROLE_USER.
func (h *Handlers) RegisterUser(c *gin.Context) {
	var in users.RegisterInput
	if appErr := server.BindJSON(c, &in); appErr != nil {
		server.RespondWithError(c, appErr)
		return
	}
	if err := validation.Validate(in); err != nil {
		server.RespondWithError(c, err)
		return
	}

	u, err := h.accounts.Register(c.Request.Context(), in)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, "/usuarios/"+strconv.FormatUint(u.ID, 10), u.Detail())
}

// GetUser returns one account.
func (h *Handlers) GetUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	u, err := h.accounts.Get(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, u.Detail())
}

// BlockUser disables an account.
func (h *Handlers) BlockUser(c *gin.Context) {
	h.changeState(c, h.accounts.Block)
}

// UnblockUser re-enables an account.
func (h *Handlers) UnblockUser(c *gin.Context) {
	h.changeState(c, h.accounts.Unblock)
}

func (h *Handlers) changeState(c *gin.Context, op func(context.Context, uint64) (*users.User, error)) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	u, err := op(ctx, id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if actor, ok := authctx.From(ctx); ok {
		h.log.WithContext(ctx).Info("account state changed by administrator", logger.Fields(
			logger.FieldLogin, actor.Login,
			logger.FieldUserID, u.ID,
			"activo", u.Activo,
		))
	}
	server.RespondOK(c, u.Detail())
}

// Me describes the calling identity.
func (h *Handlers) Me(c *gin.Context) {
	identity, ok := authctx.From(c.Request.Context())
	if !ok {
		server.RespondWithError(c, apperrors.Unauthorized(""))
		return
	}
	server.RespondOK(c, MeResponse{ID: identity.ID, Login: identity.Login, Roles: identity.Roles})
}

func pathID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		server.RespondWithError(c, apperrors.Validation("id must be a positive integer.").
			WithDetail("fields", []validation.FieldError{{Field: "id", Message: "must be a positive integer"}}))
		return 0, false
	}
	return id, true
}
