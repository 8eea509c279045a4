package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgorbunov/shrtaccounts/internal/auth"
	"github.com/sgorbunov/shrtaccounts/internal/db/memorystorage"
	"github.com/sgorbunov/shrtaccounts/internal/ipchecker"
	"github.com/sgorbunov/shrtaccounts/internal/logger"
	"github.com/sgorbunov/shrtaccounts/internal/models"
	"github.com/sgorbunov/shrtaccounts/internal/passhash"
	"github.com/sgorbunov/shrtaccounts/internal/service"
)

type testServer struct {
	server *httptest.Server
	db     *memorystorage.MemoryStorage
	auth   *auth.Auth
}

func newTestServer(t *testing.T, trustedSubnet string) *testServer {
	t.Helper()

	require.NoError(t, logger.Init("debug"))

	db, err := memorystorage.New()
	require.NoError(t, err)
	theAuth := auth.New([]byte("router-test-secret"), 12*time.Hour)
	ipChecker, err := ipchecker.New(trustedSubnet)
	require.NoError(t, err)

	handler := New(
		service.New(db, passhash.Hasher{}, theAuth),
		theAuth,
		ipChecker,
	)

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return &testServer{
		server: server,
		db:     db,
		auth:   theAuth,
	}
}

func (ts *testServer) client() *resty.Client {
	return resty.New().SetBaseURL(ts.server.URL)
}

func (ts *testServer) registerAndLogin(t *testing.T) string {
	t.Helper()

	response, err := ts.client().R().
		SetHeader("Content-Type", "application/json").
		SetBody(models.RegisterRequest{
			Name:            "Gleb",
			Email:           "gleb@example.com",
			Password:        "Str0ng@pass",
			ConfirmPassword: "Str0ng@pass",
			MobileNo:        "9001234567",
		}).
		Post("/register")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode())

	loginResult := models.LoginResponse{}
	response, err = ts.client().R().
		SetHeader("Content-Type", "application/json").
		SetBody(models.LoginRequest{
			Email:    "gleb@example.com",
			Password: "Str0ng@pass",
		}).
		SetResult(&loginResult).
		Post("/login")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, response.StatusCode())
	require.NotEmpty(t, loginResult.Token)

	return loginResult.Token
}

func TestRegister(t *testing.T) {
	ts := newTestServer(t, "")

	tests := []struct {
		name               string
		body               interface{}
		expectedStatusCode int
		expectedMessage    string
	}{
		{
			name: "successful registration",
			body: models.RegisterRequest{
				Name:            "Gleb",
				Email:           "gleb@example.com",
				Password:        "Str0ng@pass",
				ConfirmPassword: "Str0ng@pass",
				MobileNo:        "9001234567",
			},
			expectedStatusCode: http.StatusOK,
			expectedMessage:    "User registered successfully!",
		},
		{
			name: "duplicate email",
			body: models.RegisterRequest{
				Name:            "Other Gleb",
				Email:           "gleb@example.com",
				Password:        "Str0ng@pass",
				ConfirmPassword: "Str0ng@pass",
				MobileNo:        "9007654321",
			},
			expectedStatusCode: http.StatusUnauthorized,
			expectedMessage:    "User already exists",
		},
		{
			name: "invalid email",
			body: models.RegisterRequest{
				Name:            "Gleb",
				Email:           "gleb-at-example.com",
				Password:        "Str0ng@pass",
				ConfirmPassword: "Str0ng@pass",
				MobileNo:        "9001234567",
			},
			expectedStatusCode: http.StatusBadRequest,
			expectedMessage:    "Email must contain '@' symbol!",
		},
		{
			name:               "malformed body",
			body:               "{not json",
			expectedStatusCode: http.StatusBadRequest,
			expectedMessage:    "Invalid request body!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := models.Response{}
			response, err := ts.client().R().
				SetHeader("Content-Type", "application/json").
				SetBody(tt.body).
				SetResult(&result).
				SetError(&result).
				Post("/register")
			require.NoError(t, err)

			assert.Equal(t, tt.expectedStatusCode, response.StatusCode())
			assert.Equal(t, tt.expectedMessage, result.Message)
			assert.Equal(t, tt.expectedStatusCode == http.StatusOK, result.Success)
		})
	}
}

func TestLoginEndpoint(t *testing.T) {
	ts := newTestServer(t, "")
	ts.registerAndLogin(t)

	tests := []struct {
		name               string
		body               models.LoginRequest
		expectedStatusCode int
		expectedMessage    string
	}{
		{
			name: "unknown email",
			body: models.LoginRequest{
				Email:    "nobody@example.com",
				Password: "Str0ng@pass",
			},
			expectedStatusCode: http.StatusBadRequest,
			expectedMessage:    "User not found!!",
		},
		{
			name: "wrong password",
			body: models.LoginRequest{
				Email:    "gleb@example.com",
				Password: "Wr0ng@pass",
			},
			expectedStatusCode: http.StatusBadRequest,
			expectedMessage:    "Invalid Password",
		},
		{
			name: "missing password",
			body: models.LoginRequest{
				Email: "gleb@example.com",
			},
			expectedStatusCode: http.StatusBadRequest,
			expectedMessage:    "All fields are required!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := models.Response{}
			response, err := ts.client().R().
				SetHeader("Content-Type", "application/json").
				SetBody(tt.body).
				SetError(&result).
				Post("/login")
			require.NoError(t, err)

			assert.Equal(t, tt.expectedStatusCode, response.StatusCode())
			assert.Equal(t, tt.expectedMessage, result.Message)
			assert.False(t, result.Success)
		})
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t, "")

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{name: "update", method: http.MethodPut, path: "/update"},
		{name: "delete", method: http.MethodDelete, path: "/delete"},
		{name: "dashboard", method: http.MethodGet, path: "/dashboard"},
	}
	for _, tt := range tests {
		t.Run(tt.name+" without token", func(t *testing.T) {
			result := models.Response{}
			response, err := ts.client().R().
				SetError(&result).
				Execute(tt.method, tt.path)
			require.NoError(t, err)

			assert.Equal(t, http.StatusUnauthorized, response.StatusCode())
			assert.Equal(t, "Authorization token is required!", result.Message)
		})

		t.Run(tt.name+" with a bad token", func(t *testing.T) {
			result := models.Response{}
			response, err := ts.client().R().
				SetHeader("Authorization", "not-a-real-token").
				SetError(&result).
				Execute(tt.method, tt.path)
			require.NoError(t, err)

			assert.Equal(t, http.StatusUnauthorized, response.StatusCode())
			assert.Equal(t, "Invalid token!! Please Login Again.", result.Message)
		})
	}
}

func TestUpdateEndpoint(t *testing.T) {
	ts := newTestServer(t, "")
	token := ts.registerAndLogin(t)

	result := models.Response{}
	response, err := ts.client().R().
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", token).
		SetBody(models.UpdateRequest{
			NewName:     "Gleb Jr.",
			NewEmail:    "gleb.jr@example.com",
			NewMobileNo: "9007654321",
		}).
		SetResult(&result).
		Put("/update")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, response.StatusCode())
	assert.Equal(t, "Changes saved successfully", result.Message)
	assert.True(t, result.Success)

	loginResult := models.LoginResponse{}
	response, err = ts.client().R().
		SetHeader("Content-Type", "application/json").
		SetBody(models.LoginRequest{
			Email:    "gleb.jr@example.com",
			Password: "Str0ng@pass",
		}).
		SetResult(&loginResult).
		Post("/login")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, response.StatusCode())
	assert.Equal(t, "Gleb Jr.", loginResult.User.Name)
	assert.Equal(t, "9007654321", loginResult.User.MobileNo)
}

func TestDeleteEndpoint(t *testing.T) {
	ts := newTestServer(t, "")
	token := ts.registerAndLogin(t)

	result := models.Response{}
	response, err := ts.client().R().
		SetHeader("Authorization", token).
		SetResult(&result).
		Delete("/delete")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, response.StatusCode())
	assert.Equal(t, "Account deleted successfully!", result.Message)

	t.Run("token of a deleted account", func(t *testing.T) {
		result := models.Response{}
		response, err := ts.client().R().
			SetHeader("Authorization", token).
			SetError(&result).
			Delete("/delete")
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, response.StatusCode())
		assert.Equal(t, "Invalid User", result.Message)
	})
}

func TestDashboardEndpoint(t *testing.T) {
	ts := newTestServer(t, "")
	token := ts.registerAndLogin(t)

	claims, err := ts.auth.ParseToken(token)
	require.NoError(t, err)

	require.NoError(t, ts.db.InsertLink(context.Background(), &models.Link{
		UserID:    claims.UserID,
		ShortLink: "aaa111",
		FullLink:  "https://example.com/one",
	}, nil))
	require.NoError(t, ts.db.InsertVisitLog(context.Background(), &models.VisitLog{
		ShortLink:  "aaa111",
		DeviceType: "Mobile",
		VisitedAt:  time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
	}, nil))

	result := models.DashboardResponse{}
	response, err := ts.client().R().
		SetHeader("Authorization", token).
		SetResult(&result).
		Get("/dashboard")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, response.StatusCode())
	assert.Equal(t, "Data fetched successfully!", result.Message)
	assert.True(t, result.Success)
	assert.Equal(t, int64(1), result.Data.TotalClicks)
	assert.Equal(t, map[string]int64{"2026-08-28": 1}, result.Data.DateWiseClicks)
	assert.Equal(t, map[string]int64{"Mobile": 1}, result.Data.DeviceTypeClicks)
}

func TestPingEndpoint(t *testing.T) {
	ts := newTestServer(t, "")

	response, err := ts.client().R().Get("/ping")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, response.StatusCode())
}

func TestInternalStatsEndpoint(t *testing.T) {
	t.Run("no trusted subnet configured", func(t *testing.T) {
		ts := newTestServer(t, "")

		response, err := ts.client().R().Get("/api/internal/stats")
		require.NoError(t, err)

		assert.Equal(t, http.StatusForbidden, response.StatusCode())
	})

	t.Run("client outside the trusted subnet", func(t *testing.T) {
		ts := newTestServer(t, "10.0.0.0/8")

		response, err := ts.client().R().
			SetHeader("X-Real-IP", "192.168.1.5").
			Get("/api/internal/stats")
		require.NoError(t, err)

		assert.Equal(t, http.StatusForbidden, response.StatusCode())
	})

	t.Run("client inside the trusted subnet", func(t *testing.T) {
		ts := newTestServer(t, "10.0.0.0/8")
		ts.registerAndLogin(t)

		result := models.InternalStatsResponse{}
		response, err := ts.client().R().
			SetHeader("X-Real-IP", "10.1.2.3").
			SetResult(&result).
			Get("/api/internal/stats")
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, response.StatusCode())
		assert.Equal(t, int64(1), result.Users)
	})
}
