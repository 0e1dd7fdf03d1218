package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/internflow/internal/app/models/dto"
	"github.com/yigit/internflow/internal/pkg/apperrors"
	"github.com/yigit/internflow/internal/pkg/logger"
)

// RetryAfterSeconds is advertised on retryable persistence failures
const RetryAfterSeconds = 1

// HandleAPIError handles common API errors and returns appropriate responses
func HandleAPIError(c *gin.Context, err error) {
	message := err.Error()
	details := apperrors.Details(err)

	switch {
	case apperrors.IsRetryable(err):
		logger.Warn().Err(err).Str("path", c.FullPath()).Msg("Retryable storage failure")
		c.Header("Retry-After", strconv.Itoa(RetryAfterSeconds))
		abort(c, http.StatusServiceUnavailable, dto.NewErrorDetail(dto.ErrorCodeServiceUnavailable, "Storage temporarily unavailable, retry later").
			WithSeverity(dto.ErrorSeverityWarning))
	case errors.Is(err, apperrors.ErrResourceNotFound):
		abort(c, http.StatusNotFound, dto.NewErrorDetail(dto.ErrorCodeResourceNotFound, message))
	case errors.Is(err, apperrors.ErrPermissionDenied):
		abort(c, http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, message))
	case errors.Is(err, apperrors.ErrInvalidTransition):
		abort(c, http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeInvalidTransition, message).WithDetails(details))
	case errors.Is(err, apperrors.ErrValidationFailed):
		detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, message)
		if field, ok := details["field"].(string); ok && field != "" {
			detail = detail.WithField(field)
		}
		abort(c, http.StatusBadRequest, detail)
	case errors.Is(err, apperrors.ErrBadRequest):
		abort(c, http.StatusBadRequest, dto.NewErrorDetail(dto.ErrorCodeResourceInvalid, message))
	case errors.Is(err, apperrors.ErrConflict):
		abort(c, http.StatusConflict, dto.NewErrorDetail(dto.ErrorCodeResourceAlreadyExists, message))
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		abort(c, http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidCredentials, "Invalid credentials"))
	case errors.Is(err, apperrors.ErrAccountDisabled):
		abort(c, http.StatusForbidden, dto.NewErrorDetail(dto.ErrorCodeForbidden, "Account is disabled"))
	case errors.Is(err, apperrors.ErrTokenExpired):
		abort(c, http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeExpiredToken, "Token expired"))
	case errors.Is(err, apperrors.ErrTokenInvalid), errors.Is(err, apperrors.ErrInvalidFormat):
		abort(c, http.StatusUnauthorized, dto.NewErrorDetail(dto.ErrorCodeInvalidToken, "Invalid token"))
	default:
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Unhandled error")
		abort(c, http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error").
			WithSeverity(dto.ErrorSeverityCritical))
	}
}

func abort(c *gin.Context, status int, detail *dto.ErrorDetail) {
	c.AbortWithStatusJSON(status, dto.APIResponse{Error: detail})
}
