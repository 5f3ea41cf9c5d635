package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/forohub/errors"
)

// BearerChallenge is sent with every 401.
const BearerChallenge = `Bearer realm="forohub"`

// RespondWithError writes err as the JSON error envelope and stops the
// chain. Anything that is not an AppError goes out as INTERNAL_ERROR with
// its text kept server side.
func RespondWithError(c *gin.Context, err error) {
	appErr := apperrors.Wrap(err)
	if appErr == nil {
		appErr = apperrors.Internal(nil)
	}
	if appErr.HTTPStatus == http.StatusUnauthorized && c.Writer.Header().Get("WWW-Authenticate") == "" {
		c.Header("WWW-Authenticate", BearerChallenge)
	}
	c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
}

func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

// RespondCreated answers 201 with a Location header for the new resource.
func RespondCreated(c *gin.Context, location string, data any) {
	c.Header("Location", location)
	c.JSON(http.StatusCreated, data)
}

// BindJSON decodes the request body into dst. An empty, oversized or
// undecodable body comes back as a validation AppError.
func BindJSON(c *gin.Context, dst any) *apperrors.AppError {
	err := c.ShouldBindJSON(dst)
	var tooLarge *http.MaxBytesError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &tooLarge):
		return apperrors.Validation("Request body too large.")
	case errors.Is(err, io.EOF):
		return apperrors.Validation("Request body is required.")
	default:
		return apperrors.Validation("Request body is not valid JSON.").WithCause(err)
	}
}
