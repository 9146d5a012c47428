package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamzen/hris-backend-go/internal/app"
	"github.com/teamzen/hris-backend-go/internal/config"
	"github.com/teamzen/hris-backend-go/internal/domain/organization"
	"github.com/teamzen/hris-backend-go/internal/domain/user"
	appHTTP "github.com/teamzen/hris-backend-go/internal/handler/http"
	"github.com/teamzen/hris-backend-go/internal/pkg/jwt"
	"github.com/teamzen/hris-backend-go/internal/pkg/metrics"
	"github.com/teamzen/hris-backend-go/internal/pkg/testutil"
	"github.com/teamzen/hris-backend-go/internal/repository/gormstore"
	"golang.org/x/crypto/bcrypt"
)

const routerTestSecret = "test-secret-key-for-jwt"

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Page       int   `json:"page"`
		Limit      int   `json:"limit"`
		TotalItems int64 `json:"total_items"`
		TotalPages int   `json:"total_pages"`
	} `json:"meta"`
}

type routerFixture struct {
	store    *gormstore.Store
	router   *chi.Mux
	jwt      *jwt.JWTService
	org      organization.Organization
	office   organization.OfficeLocation
	admin    user.User
	employee user.User
	year     int
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	store := testutil.NewStore(t)
	repos := app.GormRepositories(store)
	jwtSvc := jwt.NewJWTService(routerTestSecret, time.Hour)
	services := app.NewServices(repos, jwtSvc)
	router := appHTTP.NewRouter(
		config.AppConfig{Env: "test", FrontendURL: "http://localhost:3000"},
		jwtSvc, metrics.New(), repos.Ping, services.Handlers(),
	)

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	org := testutil.CreateOrganization(t, store, "Acme")
	return &routerFixture{
		store:    store,
		router:   router,
		jwt:      jwtSvc,
		org:      org,
		office:   testutil.CreateOffice(t, store, org.ID),
		admin:    testutil.CreateUser(t, store, org.ID, "admin@acme.test", testutil.WithRole(user.RoleAdmin), testutil.WithPasswordHash(string(hash))),
		employee: testutil.CreateUser(t, store, org.ID, "employee@acme.test", testutil.WithPasswordHash(string(hash))),
		year:     time.Now().Year(),
	}
}

func (f *routerFixture) token(t *testing.T, u user.User) string {
	t.Helper()
	token, _, err := f.jwt.GenerateAccessToken(u)
	require.NoError(t, err)
	return token
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func (f *routerFixture) createAnnualLeave(t *testing.T) string {
	t.Helper()
	status, env := f.do(t, http.MethodPost, "/api/v1/leave/types", f.token(t, f.admin), map[string]any{
		"name":              "Annual Leave",
		"code":              "ANNUAL",
		"max_days_per_year": "12",
		"accrual_frequency": "yearly",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	return decode[map[string]any](t, env)["id"].(string)
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture(t)

	status, env := f.do(t, http.MethodGet, "/api/v1/health", "", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestRouter_LoginAndLogout(t *testing.T) {
	f := newRouterFixture(t)

	status, env := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "employee@acme.test", "password": "password123",
	})
	require.Equal(t, http.StatusOK, status)
	login := decode[map[string]any](t, env)
	token := login["access_token"].(string)
	assert.Equal(t, "Bearer", login["token_type"])

	status, env = f.do(t, http.MethodGet, "/api/v1/users/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, f.employee.ID, decode[map[string]any](t, env)["id"])

	status, _ = f.do(t, http.MethodPost, "/api/v1/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, status)

	status, env = f.do(t, http.MethodGet, "/api/v1/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)
}

func TestRouter_LoginFailures(t *testing.T) {
	f := newRouterFixture(t)

	status, env := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email": "employee@acme.test", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	status, env = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	assert.Contains(t, env.Error.Details, "password")
}

func TestRouter_RequiresToken(t *testing.T) {
	f := newRouterFixture(t)

	status, _ := f.do(t, http.MethodGet, "/api/v1/leave/types", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = f.do(t, http.MethodGet, "/api/v1/leave/types", "not.a.jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRouter_Permissions(t *testing.T) {
	f := newRouterFixture(t)
	employeeToken := f.token(t, f.employee)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/leave/types"},
		{http.MethodGet, "/api/v1/leave/requests"},
		{http.MethodGet, "/api/v1/leave/balances?user_id=" + f.admin.ID},
		{http.MethodGet, "/api/v1/attendance"},
		{http.MethodGet, "/api/v1/users"},
		{http.MethodPost, "/api/v1/offices"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			status, env := f.do(t, tt.method, tt.path, employeeToken, map[string]string{})
			assert.Equal(t, http.StatusForbidden, status)
			assert.Equal(t, "FORBIDDEN", env.Error.Code)
		})
	}
}

func TestRouter_LeaveRequestLifecycle(t *testing.T) {
	f := newRouterFixture(t)
	adminToken := f.token(t, f.admin)
	employeeToken := f.token(t, f.employee)
	leaveTypeID := f.createAnnualLeave(t)

	status, env := f.do(t, http.MethodGet, "/api/v1/leave/balances/me", employeeToken, nil)
	require.Equal(t, http.StatusOK, status)
	balances := decode[[]map[string]any](t, env)
	require.Len(t, balances, 1)
	assert.Equal(t, "12", balances[0]["available"])

	status, env = f.do(t, http.MethodPost, "/api/v1/leave/requests", employeeToken, map[string]string{
		"leave_type_id": leaveTypeID,
		"from_date":     fmt.Sprintf("%d-03-02", f.year),
		"to_date":       fmt.Sprintf("%d-03-04", f.year),
		"reason":        "family trip",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	created := decode[map[string]any](t, env)
	requestID := created["id"].(string)
	assert.Equal(t, "pending", created["status"])
	assert.EqualValues(t, 3, created["duration_days"])

	status, _ = f.do(t, http.MethodPost, "/api/v1/leave/requests/"+requestID+"/approve", employeeToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = f.do(t, http.MethodPost, "/api/v1/leave/requests/"+requestID+"/approve", adminToken, map[string]string{"comments": "enjoy"})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, "approved", decode[map[string]any](t, env)["status"])

	status, env = f.do(t, http.MethodPost, "/api/v1/leave/requests/"+requestID+"/approve", adminToken, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	status, env = f.do(t, http.MethodGet, "/api/v1/leave/balances/me", employeeToken, nil)
	require.Equal(t, http.StatusOK, status)
	balances = decode[[]map[string]any](t, env)
	assert.Equal(t, "3", balances[0]["used"])
	assert.Equal(t, "9", balances[0]["available"])

	status, env = f.do(t, http.MethodGet, "/api/v1/leave/requests?status=approved", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.NotNil(t, env.Meta)
	assert.EqualValues(t, 1, env.Meta.TotalItems)
	assert.Equal(t, 1, env.Meta.Page)

	status, env = f.do(t, http.MethodGet, "/api/v1/leave/balances/"+balances[0]["id"].(string)+"/events", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	events := decode[[]map[string]any](t, env)
	require.Len(t, events, 3)
	assert.Equal(t, "initialize", events[0]["type"])
	assert.Equal(t, "reserve", events[1]["type"])
	assert.Equal(t, "consume", events[2]["type"])
}

func TestRouter_LeaveRequestVisibility(t *testing.T) {
	f := newRouterFixture(t)
	leaveTypeID := f.createAnnualLeave(t)
	colleague := testutil.CreateUser(t, f.store, f.org.ID, "colleague@acme.test")

	status, env := f.do(t, http.MethodPost, "/api/v1/leave/requests", f.token(t, f.employee), map[string]string{
		"leave_type_id": leaveTypeID,
		"from_date":     fmt.Sprintf("%d-05-05", f.year),
		"to_date":       fmt.Sprintf("%d-05-05", f.year),
		"reason":        "dentist",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	path := "/api/v1/leave/requests/" + decode[map[string]any](t, env)["id"].(string)

	status, _ = f.do(t, http.MethodGet, path, f.token(t, f.employee), nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = f.do(t, http.MethodGet, path, f.token(t, colleague), nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = f.do(t, http.MethodGet, path, f.token(t, f.admin), nil)
	assert.Equal(t, http.StatusOK, status)

	status, env = f.do(t, http.MethodPost, path+"/cancel", f.token(t, colleague), nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = f.do(t, http.MethodPost, path+"/cancel", f.token(t, f.employee), nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, "cancelled", decode[map[string]any](t, env)["status"])

	status, env = f.do(t, http.MethodGet, "/api/v1/leave/requests/me", f.token(t, f.employee), nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, env.Meta.TotalItems)
}

func TestRouter_InsufficientBalance(t *testing.T) {
	f := newRouterFixture(t)
	leaveTypeID := f.createAnnualLeave(t)

	status, env := f.do(t, http.MethodPost, "/api/v1/leave/requests", f.token(t, f.employee), map[string]string{
		"leave_type_id": leaveTypeID,
		"from_date":     fmt.Sprintf("%d-06-01", f.year),
		"to_date":       fmt.Sprintf("%d-06-30", f.year),
		"reason":        "sabbatical",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "UNPROCESSABLE_ENTITY", env.Error.Code)
}

func TestRouter_Attendance(t *testing.T) {
	f := newRouterFixture(t)
	employeeToken := f.token(t, f.employee)

	status, env := f.do(t, http.MethodPost, "/api/v1/attendance/check-in", employeeToken, map[string]any{
		"office_id": f.office.ID,
		"latitude":  f.office.Latitude,
		"longitude": f.office.Longitude,
		"time":      "08:45:00",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	checkIn := decode[map[string]any](t, env)
	assert.Equal(t, "present", checkIn["status"])
	assert.Equal(t, true, checkIn["is_within_geofence"])

	status, _ = f.do(t, http.MethodPost, "/api/v1/attendance/check-in", employeeToken, map[string]any{
		"office_id": f.office.ID, "latitude": f.office.Latitude, "longitude": f.office.Longitude, "time": "09:10:00",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, env = f.do(t, http.MethodGet, "/api/v1/attendance/me", employeeToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, env.Meta.TotalItems)

	status, env = f.do(t, http.MethodGet, "/api/v1/attendance?status=present", f.token(t, f.admin), nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, env.Meta.TotalItems)
}

func TestRouter_UserDirectory(t *testing.T) {
	f := newRouterFixture(t)
	adminToken := f.token(t, f.admin)

	status, env := f.do(t, http.MethodPost, "/api/v1/users", adminToken, map[string]string{
		"email":           "new.hire@acme.test",
		"password":        "password123",
		"first_name":      "New",
		"last_name":       "Hire",
		"date_of_joining": fmt.Sprintf("%d-01-01", f.year),
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	hireID := decode[map[string]any](t, env)["id"].(string)

	status, env = f.do(t, http.MethodPost, "/api/v1/users", adminToken, map[string]string{
		"email": "new.hire@acme.test", "password": "password123", "first_name": "Dup",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, env = f.do(t, http.MethodPatch, "/api/v1/users/me", f.token(t, f.employee), map[string]string{"last_name": "Renamed"})
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, "Renamed", decode[map[string]any](t, env)["last_name"])

	status, env = f.do(t, http.MethodPost, "/api/v1/users/"+hireID+"/offboard", adminToken, nil)
	require.Equal(t, http.StatusOK, status, env.Error)
	assert.Equal(t, false, decode[map[string]any](t, env)["is_active"])

	status, env = f.do(t, http.MethodGet, "/api/v1/users", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, env), 2)

	status, _ = f.do(t, http.MethodGet, "/api/v1/users/"+hireID, adminToken, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestRouter_Organization(t *testing.T) {
	f := newRouterFixture(t)
	adminToken := f.token(t, f.admin)

	status, env := f.do(t, http.MethodGet, "/api/v1/organization", f.token(t, f.employee), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Acme", decode[map[string]any](t, env)["name"])

	status, env = f.do(t, http.MethodPost, "/api/v1/offices", adminToken, map[string]any{
		"name":        "Bandung",
		"address":     "Jl. Asia Afrika",
		"latitude":    -6.9175,
		"longitude":   107.6191,
		"login_time":  "08:30:00",
		"logout_time": "17:30:00",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)

	status, env = f.do(t, http.MethodGet, "/api/v1/offices", f.token(t, f.employee), nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]map[string]any](t, env), 2)

	status, env = f.do(t, http.MethodPost, "/api/v1/departments", adminToken, map[string]string{"name": "Finance"})
	require.Equal(t, http.StatusCreated, status, env.Error)

	status, env = f.do(t, http.MethodPost, "/api/v1/departments", adminToken, map[string]string{"name": "Finance"})
	assert.Equal(t, http.StatusConflict, status)
}

func TestRouter_Metrics(t *testing.T) {
	f := newRouterFixture(t)
	f.do(t, http.MethodGet, "/api/v1/health", "", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `hris_http_request_duration_seconds_count{method="GET",route="/api/v1/health"}`)
}

func TestRouter_AttendanceCorrectionLifecycle(t *testing.T) {
	f := newRouterFixture(t)
	employeeToken := f.token(t, f.employee)
	adminToken := f.token(t, f.admin)

	status, env := f.do(t, http.MethodPost, "/api/v1/attendance/check-in", employeeToken, map[string]any{
		"office_id": f.office.ID, "latitude": f.office.Latitude, "longitude": f.office.Longitude, "time": "09:40:00",
	})
	require.Equal(t, http.StatusOK, status, env.Error)
	record := decode[map[string]any](t, env)
	require.Equal(t, "late_login", record["status"])

	status, env = f.do(t, http.MethodPost, "/api/v1/attendance/corrections", employeeToken, map[string]any{
		"attendance_id":         record["id"],
		"corrected_login_time":  "08:50:00",
		"corrected_logout_time": "17:20:00",
		"reason":                "forgot to badge in",
	})
	require.Equal(t, http.StatusCreated, status, env.Error)
	correction := decode[map[string]any](t, env)
	assert.Equal(t, "pending", correction["status"])
	path := fmt.Sprintf("/api/v1/attendance/corrections/%s", correction["id"])

	status, _ = f.do(t, http.MethodPost, path+"/approve", employeeToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, env = f.do(t, http.MethodGet, "/api/v1/attendance/corrections/me", employeeToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, env.Meta.TotalItems)

	status, env = f.do(t, http.MethodGet, "/api/v1/attendance/corrections?status=pending", adminToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, env.Meta.TotalItems)

	status, env = f.do(t, http.MethodPost, path+"/approve", adminToken, map[string]any{"comments": "confirmed with security"})
	require.Equal(t, http.StatusOK, status, env.Error)
	approved := decode[map[string]any](t, env)
	assert.Equal(t, "approved", approved["status"])
	corrected, ok := approved["attendance"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "08:50:00", corrected["login_time"])
	assert.Equal(t, "17:20:00", corrected["logout_time"])
	assert.Equal(t, "present", corrected["status"])

	status, env = f.do(t, http.MethodPost, path+"/approve", adminToken, nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	status, _ = f.do(t, http.MethodPost, path+"/cancel", employeeToken, nil)
	assert.Equal(t, http.StatusConflict, status)
}
