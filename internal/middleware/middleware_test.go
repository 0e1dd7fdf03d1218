package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/internflow/internal/app/models/dto"
	"github.com/yigit/internflow/internal/pkg/apperrors"
	"github.com/yigit/internflow/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJWT() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) *dto.ErrorDetail {
	t.Helper()
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	return resp.Error
}

func TestJWTAuth(t *testing.T) {
	jwtService := newJWT()
	token, _, err := jwtService.GenerateAccessToken(42)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", NewAuthMiddleware(jwtService).JWTAuth(), func(c *gin.Context) {
		id, ok := UserID(c)
		require.True(t, ok)
		c.String(http.StatusOK, fmt.Sprint(id))
	})

	cases := []struct {
		name   string
		header string
		query  string
		status int
		code   dto.ErrorCode
	}{
		{name: "bearer header", header: "Bearer " + token, status: http.StatusOK},
		{name: "query token", query: "?token=Bearer%20" + token, status: http.StatusOK},
		{name: "missing", status: http.StatusUnauthorized, code: dto.ErrorCodeUnauthorized},
		{name: "wrong scheme", header: "Basic abc", status: http.StatusUnauthorized, code: dto.ErrorCodeUnauthorized},
		{name: "garbage token", header: "Bearer not-a-jwt", status: http.StatusUnauthorized, code: dto.ErrorCodeInvalidToken},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "42", w.Body.String())
				return
			}
			assert.Equal(t, tc.code, decodeError(t, w).Code)
		})
	}
}

func TestJWTAuthExpiredToken(t *testing.T) {
	expired := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: -time.Minute, TokenIssuer: "test"})
	token, _, err := expired.GenerateAccessToken(1)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", NewAuthMiddleware(newJWT()).JWTAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrorCodeExpiredToken, decodeError(t, w).Code)
}

func TestHandleAPIErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   dto.ErrorCode
	}{
		{"not found", apperrors.ErrInternshipNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"forbidden", apperrors.NewForbiddenError("not assigned"), http.StatusForbidden, dto.ErrorCodeForbidden},
		{"invalid transition", fmt.Errorf("apply: %w", apperrors.NewInvalidTransitionError("APPROVED", "PENDING")), http.StatusConflict, dto.ErrorCodeInvalidTransition},
		{"validation", apperrors.NewValidationError("comment", "comment is required"), http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"persistence", apperrors.NewPersistenceError("update failed", errors.New("lock timeout")), http.StatusServiceUnavailable, dto.ErrorCodeServiceUnavailable},
		{"credentials", apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", func(c *gin.Context) { HandleAPIError(c, tc.err) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

			assert.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.code, decodeError(t, w).Code)
		})
	}
}

func TestHandleAPIErrorDetails(t *testing.T) {
	r := gin.New()
	r.GET("/validation", func(c *gin.Context) {
		HandleAPIError(c, apperrors.NewValidationError("comment", "comment is required"))
	})
	r.GET("/persistence", func(c *gin.Context) {
		HandleAPIError(c, apperrors.NewPersistenceError("update failed", errors.New("lock timeout")))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/validation", nil))
	detail := decodeError(t, w)
	assert.Equal(t, "comment", detail.Field)
	assert.Equal(t, "comment is required", detail.Message)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/persistence", nil))
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRateLimiter(t *testing.T) {
	limiter := NewRateLimiter(1, 2)

	r := gin.New()
	r.GET("/x", limiter.Handler(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		statuses = append(statuses, w.Code)
		if w.Code == http.StatusTooManyRequests {
			assert.Equal(t, dto.ErrorCodeRateLimited, decodeError(t, w).Code)
			assert.Equal(t, "1", w.Header().Get("Retry-After"))
		}
	}

	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, statuses)
}

func TestRateLimiterKeysByUser(t *testing.T) {
	limiter := NewRateLimiter(1, 1)

	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		var id int64
		_, _ = fmt.Sscan(c.Query("user"), &id)
		c.Set(ContextUserID, id)
	}, limiter.Handler(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, user := range []string{"1", "2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x?user="+user, nil))
		assert.Equal(t, http.StatusNoContent, w.Code, "user %s has its own bucket", user)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x?user=1", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(RequestIDHeader, "abc")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc", w.Header().Get(RequestIDHeader))
}
