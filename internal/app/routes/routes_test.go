package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	appAuth "github.com/yigit/internflow/internal/app/auth"
	"github.com/yigit/internflow/internal/app/controllers"
	"github.com/yigit/internflow/internal/app/metrics"
	"github.com/yigit/internflow/internal/app/models"
	"github.com/yigit/internflow/internal/app/models/dto"
	"github.com/yigit/internflow/internal/app/notify"
	"github.com/yigit/internflow/internal/app/repositories/memory"
	"github.com/yigit/internflow/internal/app/services"
	"github.com/yigit/internflow/internal/middleware"
	"github.com/yigit/internflow/internal/pkg/auth"
	"github.com/yigit/internflow/internal/pkg/filestorage"
	"github.com/yigit/internflow/internal/pkg/websocket"
)

const testPassword = "s3cret-pass"

type envelope struct {
	Data  json.RawMessage  `json:"data"`
	Error *dto.ErrorDetail `json:"error"`
}

type api struct {
	t          *testing.T
	router     *gin.Engine
	store      *memory.Store
	jwt        *auth.JWTService
	dispatcher *notify.Dispatcher
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memory.NewStore()
	files, err := filestorage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "routes-test", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	authz := appAuth.NewAuthorizationService()
	planner := notify.NewPlanner(store, store)
	dispatcher := notify.NewDispatcher(64, []notify.Sink{notify.NewInboxSink(store)}, notify.WithWorkers(1))
	dispatcher.Start()
	t.Cleanup(func() { _ = dispatcher.Stop(context.Background()) })

	lgr := zerolog.Nop()
	hub := websocket.NewHub(lgr)

	router := gin.New()
	router.Use(metrics.Middleware("/metrics"))
	SetupRouter(router,
		"/metrics",
		controllers.NewAuthController(services.NewAuthService(store, jwtService), lgr),
		controllers.NewInternshipController(services.NewInternshipService(store, authz, files, planner, dispatcher), lgr),
		controllers.NewWorkflowController(
			services.NewWorkflowService(store, authz, planner, dispatcher),
			services.NewApprovalService(store, authz),
			lgr,
		),
		controllers.NewNotificationController(services.NewNotificationService(store, authz)),
		websocket.NewHandler(hub, middleware.UserID, lgr),
		middleware.NewAuthMiddleware(jwtService),
		middleware.NewRateLimiter(1000, 1000),
	)

	return &api{t: t, router: router, store: store, jwt: jwtService, dispatcher: dispatcher}
}

func (a *api) user(email string, roles ...models.Role) *models.User {
	a.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(a.t, err)

	u := &models.User{Email: email, Password: string(hash), FirstName: "Test", LastName: "User", IsActive: true, Roles: roles}
	_, err = a.store.CreateUser(context.Background(), u)
	require.NoError(a.t, err)
	return u
}

func (a *api) token(u *models.User) string {
	a.t.Helper()
	token, _, err := a.jwt.GenerateAccessToken(u.ID)
	require.NoError(a.t, err)
	return token
}

func (a *api) do(method, path, token string, body interface{}) (int, envelope) {
	a.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func createBody() dto.CreateInternshipRequest {
	return dto.CreateInternshipRequest{
		CompanyName:    "Acme Corp",
		CompanyAddress: "Maslak, Istanbul",
		CompanyPhone:   "+90 212 555 0000",
		StartDate:      "2025-07-01",
		EndDate:        "2025-08-26",
		WorkDays:       40,
		Type:           "COMPULSORY",
	}
}

func TestApprovalChainOverHTTP(t *testing.T) {
	a := newAPI(t)
	student := a.user("student@uni.edu", models.RoleStudent)
	advisor := a.user("advisor@uni.edu", models.RoleFacultyAdvisor)
	dept := a.user("dept@uni.edu", models.RoleDepartmentCoordinator)

	// login issues a usable token
	code, env := a.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "Student@uni.edu", Password: testPassword})
	require.Equal(t, http.StatusOK, code)
	studentToken := decode[dto.TokenResponse](t, env).AccessToken
	require.NotEmpty(t, studentToken)

	code, env = a.do(http.MethodGet, "/api/v1/auth/me", studentToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []string{"STUDENT"}, decode[dto.ProfileResponse](t, env).Roles)

	code, env = a.do(http.MethodPost, "/api/v1/internships", studentToken, createBody())
	require.Equal(t, http.StatusCreated, code)
	in := decode[models.Internship](t, env)
	assert.Equal(t, models.StatusPending, in.Status)
	assert.Equal(t, student.ID, in.StudentID)
	base := fmt.Sprintf("/api/v1/internships/%d", in.ID)

	advisorToken, deptToken := a.token(advisor), a.token(dept)

	// not yet assigned
	code, env = a.do(http.MethodPost, base+"/decisions/approve", advisorToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, dto.ErrorCodeForbidden, env.Error.Code)

	code, _ = a.do(http.MethodPut, base+"/advisor", deptToken, dto.AssignAdvisorRequest{AdvisorID: advisor.ID})
	require.Equal(t, http.StatusOK, code)

	code, env = a.do(http.MethodPost, base+"/decisions/approve", advisorToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.StatusAdvisorApproved, decode[dto.TransitionResponse](t, env).Status)

	// students never approve
	code, _ = a.do(http.MethodPost, base+"/decisions/approve", studentToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	// rejection needs a comment
	code, env = a.do(http.MethodPost, base+"/decisions/reject", deptToken, dto.DecisionRequest{})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "comment", env.Error.Field)

	code, env = a.do(http.MethodPost, base+"/transitions", deptToken, dto.TransitionRequest{Status: "COORDINATOR_APPROVED"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.StatusCoordinatorApproved, decode[dto.TransitionResponse](t, env).Status)

	// same target again is not a valid move
	code, env = a.do(http.MethodPost, base+"/decisions/approve", deptToken, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, dto.ErrorCodeInvalidTransition, env.Error.Code)

	code, env = a.do(http.MethodGet, base+"/approvals", studentToken, nil)
	require.Equal(t, http.StatusOK, code)
	approvals := decode[dto.ApprovalListResponse](t, env).Approvals
	require.Len(t, approvals, 3)
	assert.Equal(t, models.ActionApprove, approvals[0].Action)
	assert.Equal(t, models.StatusCoordinatorApproved, approvals[0].ResultStatus)
	assert.Equal(t, models.ActionAssignAdvisor, approvals[2].Action)

	code, env = a.do(http.MethodGet, base+"/approvals/latest", advisorToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, approvals[0].ID, decode[models.ApprovalRecord](t, env).ID)

	code, env = a.do(http.MethodGet, "/api/v1/internships/"+fmt.Sprint(in.ID), studentToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, models.StatusCoordinatorApproved, decode[models.Internship](t, env).Status)

	// report reviews accept any case and need an existing report
	code, env = a.do(http.MethodPut, base+"/documents/99/review", deptToken, dto.ReviewReportRequest{Status: "approved"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, dto.ErrorCodeResourceNotFound, env.Error.Code)

	// notifications land in the inbox once the queue drains
	require.NoError(t, a.dispatcher.Stop(context.Background()))
	code, env = a.do(http.MethodGet, "/api/v1/notifications?unread=true", studentToken, nil)
	require.Equal(t, http.StatusOK, code)
	inbox := decode[dto.NotificationListResponse](t, env).Notifications
	require.NotEmpty(t, inbox)

	code, _ = a.do(http.MethodPut, fmt.Sprintf("/api/v1/notifications/%d/read", inbox[0].ID), studentToken, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = a.do(http.MethodPut, fmt.Sprintf("/api/v1/notifications/%d/read", inbox[0].ID), advisorToken, nil)
	assert.Equal(t, http.StatusNotFound, code, "someone else's notification")
}

func TestRequestErrors(t *testing.T) {
	a := newAPI(t)
	student := a.user("student@uni.edu", models.RoleStudent)
	token := a.token(student)

	code, _ := a.do(http.MethodGet, "/api/v1/internships", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := a.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "student@uni.edu", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, dto.ErrorCodeInvalidCredentials, env.Error.Code)

	// surrounding whitespace and case are ignored
	code, env = a.do(http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Email: "  STUDENT@uni.edu ", Password: testPassword})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, decode[dto.TokenResponse](t, env).AccessToken)

	code, _ = a.do(http.MethodGet, "/api/v1/internships/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = a.do(http.MethodGet, "/api/v1/internships/999", token, nil)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = a.do(http.MethodPost, "/api/v1/internships/1/decisions/escalate", token, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	bad := createBody()
	bad.CompanyPhone = "call me"
	code, env = a.do(http.MethodPost, "/api/v1/internships", token, bad)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "companyPhone", env.Error.Field)

	code, env = a.do(http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
}

func TestMetricsEndpoint(t *testing.T) {
	a := newAPI(t)
	a.do(http.MethodGet, "/api/v1/health", "", nil)

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `internflow_http_requests_total{method="GET",path="/api/v1/health",status="200"}`)
}
