package router

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/hpms-api/internal/config"
	"github.com/jwalitptl/hpms-api/internal/email"
	"github.com/jwalitptl/hpms-api/internal/repository/memory"
	"github.com/jwalitptl/hpms-api/internal/service/notification"
	"github.com/jwalitptl/hpms-api/internal/sms"
	"github.com/jwalitptl/hpms-api/pkg/metrics"
)

// TestResponse wraps the API envelope for assertions
type TestResponse struct {
	Code    int
	Header  http.Header
	Status  string
	Message string
	Field   string
	Data    map[string]interface{}
	RawData json.RawMessage
}

func (r TestResponse) IsSuccess() bool {
	return r.Status == "success"
}

func (r TestResponse) GetString(key string) string {
	if v, ok := r.Data[key].(string); ok {
		return v
	}
	return ""
}

func (r TestResponse) GetID() int64 {
	if v, ok := r.Data["id"].(float64); ok {
		return int64(v)
	}
	return 0
}

type testServer struct {
	engine *gin.Engine
	email  *email.MockSender
	sms    *sms.MockSender
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, nil)
}

func newTestServerWith(t *testing.T, configure func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Environment: config.EnvDevelopment,
		Server:      config.ServerConfig{MaxBodyBytes: 1 << 20},
		JWT: config.JWTConfig{
			Secret: "router-test-secret-0123456789abcdef",
			Issuer: "hpms-test",
			Expiry: time.Hour,
		},
		Auth: config.AuthConfig{
			CookieName: "access_token",
			BcryptCost: bcrypt.MinCost,
		},
	}
	if configure != nil {
		configure(cfg)
	}

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("hpms", reg)
	emailSender := &email.MockSender{}
	smsSender := &sms.MockSender{}

	r := NewRouter(cfg, Dependencies{
		Store:    memory.NewStore(),
		Notifier: notification.NewDispatcher(emailSender, smsSender, time.Second, m),
		Metrics:  m,
		Gatherer: reg,
	})
	return &testServer{engine: r.Engine(), email: emailSender, sms: smsSender}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) TestResponse {
	t.Helper()
	resp := TestResponse{Code: w.Code, Header: w.Header()}

	var envelope struct {
		Status  string          `json:"status"`
		Message string          `json:"message"`
		Field   string          `json:"field"`
		Data    json.RawMessage `json:"data"`
	}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	}
	resp.Status, resp.Message, resp.Field, resp.RawData = envelope.Status, envelope.Message, envelope.Field, envelope.Data
	if len(envelope.Data) > 0 && envelope.Data[0] == '{' {
		require.NoError(t, json.Unmarshal(envelope.Data, &resp.Data))
	}
	return resp
}

func (s *testServer) makeRequest(t *testing.T, method, path string, body interface{}, token string) TestResponse {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return decode(t, w)
}

// registerAndLogin creates a user with role and returns its id and token.
func (s *testServer) registerAndLogin(t *testing.T, emailAddr, role string) (int64, string) {
	t.Helper()
	reg := s.makeRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": emailAddr, "password": "password123", "role": role,
	}, "")
	require.Equal(t, http.StatusCreated, reg.Code, reg.Message)

	login := s.makeRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
		"email": emailAddr, "password": "password123",
	}, "")
	require.Equal(t, http.StatusOK, login.Code, login.Message)
	token := login.GetString("access_token")
	require.NotEmpty(t, token)
	return reg.GetID(), token
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/v1/patients", "/api/v1/doctors", "/api/v1/appointments", "/api/v1/users/me"} {
		resp := s.makeRequest(t, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, resp.Code, path)
		assert.Equal(t, "error", resp.Status, path)
		assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"), path)
	}

	resp := s.makeRequest(t, http.MethodGet, "/api/v1/patients", nil, "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	s.registerAndLogin(t, "login@example.com", "user")

	t.Run("wrong password and unknown email fail identically", func(t *testing.T) {
		wrong := s.makeRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email": "login@example.com", "password": "nope-nope",
		}, "")
		unknown := s.makeRequest(t, http.MethodPost, "/api/v1/auth/login", map[string]string{
			"email": "ghost@example.com", "password": "nope-nope",
		}, "")
		assert.Equal(t, http.StatusUnauthorized, wrong.Code)
		assert.Equal(t, wrong.Code, unknown.Code)
		assert.Equal(t, wrong.Message, unknown.Message)
	})

	t.Run("form login sets an http-only cookie that authenticates", func(t *testing.T) {
		form := url.Values{"username": {"login@example.com"}, "password": {"password123"}}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		s.engine.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "access_token", cookies[0].Name)
		assert.True(t, cookies[0].HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)

		me := httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
		me.AddCookie(cookies[0])
		w = httptest.NewRecorder()
		s.engine.ServeHTTP(w, me)
		resp := decode(t, w)
		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Equal(t, "login@example.com", resp.GetString("email"))
		assert.NotContains(t, resp.Data, "password")
	})
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	_, token := s.registerAndLogin(t, "bye@example.com", "user")

	resp := s.makeRequest(t, http.MethodPost, "/api/v1/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, resp.Code, resp.Message)

	resp = s.makeRequest(t, http.MethodGet, "/api/v1/users/me", nil, token)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestUserAccessPolicy(t *testing.T) {
	s := newTestServer(t)
	adminID, adminToken := s.registerAndLogin(t, "admin@example.com", "admin")
	userID, userToken := s.registerAndLogin(t, "user@example.com", "user")

	self := s.makeRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", userID), nil, userToken)
	assert.Equal(t, http.StatusOK, self.Code)

	other := s.makeRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", adminID), nil, userToken)
	assert.Equal(t, http.StatusForbidden, other.Code)

	byAdmin := s.makeRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/users/%d", userID), nil, adminToken)
	assert.Equal(t, http.StatusOK, byAdmin.Code)
	assert.Equal(t, "user@example.com", byAdmin.GetString("email"))

	list := s.makeRequest(t, http.MethodGet, "/api/v1/users", nil, userToken)
	assert.Equal(t, http.StatusForbidden, list.Code)

	list = s.makeRequest(t, http.MethodGet, "/api/v1/users", nil, adminToken)
	require.Equal(t, http.StatusOK, list.Code)
	var users []map[string]interface{}
	require.NoError(t, json.Unmarshal(list.RawData, &users))
	assert.Len(t, users, 2)
}

func TestRoleGatedWrites(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.registerAndLogin(t, "admin@example.com", "admin")
	_, nurseToken := s.registerAndLogin(t, "nurse@example.com", "nurse")
	_, userToken := s.registerAndLogin(t, "user@example.com", "user")

	doctor := map[string]string{"name": "Dr. Who", "specialty": "Time"}
	assert.Equal(t, http.StatusForbidden, s.makeRequest(t, http.MethodPost, "/api/v1/doctors", doctor, nurseToken).Code)
	assert.Equal(t, http.StatusCreated, s.makeRequest(t, http.MethodPost, "/api/v1/doctors", doctor, adminToken).Code)

	patient := map[string]string{"name": "Amy Pond", "email": "amy@example.com", "dateOfBirth": "1990-04-01"}
	assert.Equal(t, http.StatusForbidden, s.makeRequest(t, http.MethodPost, "/api/v1/patients", patient, userToken).Code)
	created := s.makeRequest(t, http.MethodPost, "/api/v1/patients", patient, nurseToken)
	require.Equal(t, http.StatusCreated, created.Code, created.Message)

	path := fmt.Sprintf("/api/v1/patients/%d", created.GetID())
	assert.Equal(t, http.StatusOK, s.makeRequest(t, http.MethodGet, path, nil, userToken).Code)
	assert.Equal(t, http.StatusForbidden, s.makeRequest(t, http.MethodDelete, path, nil, nurseToken).Code)
	assert.Equal(t, http.StatusOK, s.makeRequest(t, http.MethodDelete, path, nil, adminToken).Code)
	assert.Equal(t, http.StatusNotFound, s.makeRequest(t, http.MethodGet, path, nil, userToken).Code)
}

func TestRegisterRolesOutsideDevelopment(t *testing.T) {
	tests := []struct {
		name       string
		allow      bool
		path       string
		role       string
		wantStatus int
	}{
		{"admin refused", false, "/api/v1/auth/register", "admin", http.StatusForbidden},
		{"doctor refused on users", false, "/api/v1/users", "doctor", http.StatusForbidden},
		{"user role accepted", false, "/api/v1/auth/register", "user", http.StatusCreated},
		{"default role accepted", false, "/api/v1/users", "", http.StatusCreated},
		{"admin accepted when enabled", true, "/api/v1/auth/register", "admin", http.StatusCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServerWith(t, func(cfg *config.Config) {
				cfg.Environment = "production"
				cfg.Auth.AllowRoleSignup = tt.allow
			})
			body := map[string]string{"email": "signup@example.com", "password": "password123"}
			if tt.role != "" {
				body["role"] = tt.role
			}

			resp := s.makeRequest(t, http.MethodPost, tt.path, body, "")
			assert.Equal(t, tt.wantStatus, resp.Code, resp.Message)
		})
	}
}

func TestValidationErrorsNameTheField(t *testing.T) {
	s := newTestServer(t)
	_, nurseToken := s.registerAndLogin(t, "nurse@example.com", "nurse")

	resp := s.makeRequest(t, http.MethodPost, "/api/v1/patients", map[string]string{
		"name": "No Email", "dateOfBirth": "1990-04-01",
	}, nurseToken)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "email", resp.Field)

	resp = s.makeRequest(t, http.MethodGet, "/api/v1/patients?limit=-1", nil, nurseToken)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "limit", resp.Field)

	resp = s.makeRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "x@example.com", "password": "password123", "role": "superuser",
	}, "")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "role", resp.Field)
}

func TestAppointmentBookingFlow(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.registerAndLogin(t, "admin@example.com", "admin")

	patient := s.makeRequest(t, http.MethodPost, "/api/v1/patients", map[string]string{
		"name": "Rory Williams", "email": "rory@example.com", "phone": "+15550123", "dateOfBirth": "1988-06-15",
	}, adminToken)
	require.Equal(t, http.StatusCreated, patient.Code, patient.Message)
	doctor := s.makeRequest(t, http.MethodPost, "/api/v1/doctors", map[string]string{
		"name": "Dr. Song", "specialty": "Archaeology",
	}, adminToken)
	require.Equal(t, http.StatusCreated, doctor.Code, doctor.Message)

	booking := map[string]interface{}{
		"patientId": patient.GetID(),
		"doctorId":  doctor.GetID(),
		"dateTime":  "2030-05-01T10:00:00+02:00",
		"purpose":   "Checkup",
	}

	created := s.makeRequest(t, http.MethodPost, "/api/v1/appointments", booking, adminToken)
	require.Equal(t, http.StatusCreated, created.Code, created.Message)
	assert.Equal(t, "Scheduled", created.GetString("status"))
	assert.Equal(t, "2030-05-01T08:00:00Z", created.GetString("dateTime"))
	nested, ok := created.Data["patient"].(map[string]interface{})
	require.True(t, ok)
	assert.Nil(t, nested["medicalHistory"])

	booking["status"] = "Confirmed"
	upgraded := s.makeRequest(t, http.MethodPost, "/api/v1/appointments", booking, adminToken)
	require.Equal(t, http.StatusOK, upgraded.Code, upgraded.Message)
	assert.Equal(t, "Confirmed", upgraded.GetString("status"))
	assert.Equal(t, created.GetID(), upgraded.GetID())

	duplicate := s.makeRequest(t, http.MethodPost, "/api/v1/appointments", booking, adminToken)
	assert.Equal(t, http.StatusConflict, duplicate.Code)

	for _, id := range []int64{9999, 0, -3} {
		booking["patientId"] = id
		missing := s.makeRequest(t, http.MethodPost, "/api/v1/appointments", booking, adminToken)
		assert.Equal(t, http.StatusBadRequest, missing.Code, "patientId %d", id)
		assert.Equal(t, "patientId", missing.Field, "patientId %d", id)
		assert.Contains(t, missing.Message, "does not exist", "patientId %d", id)
	}

	list := s.makeRequest(t, http.MethodGet, "/api/v1/appointments?date=2030-05-01", nil, adminToken)
	require.Equal(t, http.StatusOK, list.Code)
	var appointments []map[string]interface{}
	require.NoError(t, json.Unmarshal(list.RawData, &appointments))
	assert.Len(t, appointments, 1)

	require.Len(t, s.email.Calls(), 2)
	assert.Equal(t, "Appointment Confirmed", s.email.Calls()[0].Subject)
	assert.Equal(t, "Appointment Updated", s.email.Calls()[1].Subject)
	assert.Len(t, s.sms.Calls(), 2)

	cancelled := s.makeRequest(t, http.MethodDelete, fmt.Sprintf("/api/v1/appointments/%d", created.GetID()), nil, adminToken)
	assert.Equal(t, http.StatusOK, cancelled.Code)
	gone := s.makeRequest(t, http.MethodGet, fmt.Sprintf("/api/v1/appointments/%d", created.GetID()), nil, adminToken)
	assert.Equal(t, http.StatusNotFound, gone.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	resp := s.makeRequest(t, http.MethodGet, "/health/live", nil, "")
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = s.makeRequest(t, http.MethodGet, "/health/ready", nil, "")
	assert.Equal(t, http.StatusOK, resp.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hpms_http_requests_total")
}
