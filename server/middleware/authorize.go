package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/forohub/auth"
	"github.com/kbukum/forohub/auth/authctx"
	"github.com/kbukum/forohub/authz"
	apperrors "github.com/kbukum/forohub/errors"
	"github.com/kbukum/forohub/logger"
	"github.com/kbukum/forohub/observability"
)

// Authorize enforces policy on every request after Authenticate has run.
// It matches on gin's route template when the route is known and on the
// raw path otherwise, answering 401 without an identity and 403 when the
// identity lacks the required role.
func Authorize(policy *authz.Policy, metrics *observability.AuthMetrics, log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		log = logger.NewNop()
	}
	log = log.WithComponent("authz")

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		req := policy.Requirement(c.Request.Method, path)
		var identity *auth.Identity
		if !req.IsPublic() {
			identity, _ = authctx.From(ctx)
		}

		err := req.Check(identity)
		if err == nil {
			setState(c, StateAuthorized)
			metrics.RecordRequest(ctx, string(StateAuthorized))
			c.Next()
			return
		}

		setState(c, StateRejected)
		metrics.RecordRequest(ctx, string(StateRejected))

		var appErr *apperrors.AppError
		if errors.Is(err, authz.ErrForbidden) {
			appErr = apperrors.Forbidden("")
		} else {
			appErr = apperrors.Unauthorized("")
			c.Header("WWW-Authenticate", `Bearer realm="forohub"`)
		}

		fields := logger.Fields(
			logger.FieldAuthState, StateRejected,
			"method", c.Request.Method,
			"route", path,
			logger.FieldReason, err.Error(),
			"requirement", req.String(),
		)
		if role := req.RoleName(); role != "" {
			fields["required_role"] = role
		}
		if identity != nil {
			fields[logger.FieldLogin] = identity.Login
		}
		log.WithContext(ctx).Debug("request rejected", fields)

		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
	}
}
