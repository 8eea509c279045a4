package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sgorbunov/shrtaccounts/internal/logger"
	"github.com/sgorbunov/shrtaccounts/internal/user"
)

var testUser = &user.User{
	ID:       "8b9f2a1e-0000-4000-8000-000000000001",
	Name:     "Gleb",
	Email:    "gleb@example.com",
	MobileNo: "9001234567",
}

func TestBuildAndParseToken(t *testing.T) {
	theAuth := New([]byte("test-signing-secret"), 12*time.Hour)

	tokenString, err := theAuth.BuildJWTString(testUser)
	require.NoError(t, err)
	require.NotEmpty(t, tokenString)

	claims, err := theAuth.ParseToken(tokenString)
	require.NoError(t, err)

	assert.Equal(t, testUser.ID, claims.UserID)
	assert.Equal(t, testUser.Name, claims.Name)
	assert.Equal(t, testUser.Email, claims.Email)
	assert.Equal(t, testUser.MobileNo, claims.MobileNo)
	assert.WithinDuration(
		t,
		time.Now().Add(12*time.Hour),
		claims.ExpiresAt.Time,
		time.Minute,
	)
}

func TestParseTokenRejectsExpired(t *testing.T) {
	theAuth := New([]byte("test-signing-secret"), -time.Hour)

	tokenString, err := theAuth.BuildJWTString(testUser)
	require.NoError(t, err)

	_, err = theAuth.ParseToken(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	foreignAuth := New([]byte("some-other-secret"), 12*time.Hour)
	tokenString, err := foreignAuth.BuildJWTString(testUser)
	require.NoError(t, err)

	theAuth := New([]byte("test-signing-secret"), 12*time.Hour)
	_, err = theAuth.ParseToken(tokenString)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	theAuth := New([]byte("test-signing-secret"), 12*time.Hour)

	_, err := theAuth.ParseToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestRequireUserMiddleware(t *testing.T) {
	err := logger.Init("debug")
	require.NoError(t, err)

	theAuth := New([]byte("test-signing-secret"), 12*time.Hour)
	expiredAuth := New([]byte("test-signing-secret"), -time.Hour)
	foreignAuth := New([]byte("some-other-secret"), 12*time.Hour)

	validToken, err := theAuth.BuildJWTString(testUser)
	require.NoError(t, err)
	expiredToken, err := expiredAuth.BuildJWTString(testUser)
	require.NoError(t, err)
	foreignToken, err := foreignAuth.BuildJWTString(testUser)
	require.NoError(t, err)

	tests := []struct {
		name               string
		token              string
		expectedStatusCode int
		expectHandlerCall  bool
	}{
		{
			name:               "valid token",
			token:              validToken,
			expectedStatusCode: http.StatusOK,
			expectHandlerCall:  true,
		},
		{
			name:               "missing token",
			token:              "",
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "expired token",
			token:              expiredToken,
			expectedStatusCode: http.StatusUnauthorized,
		},
		{
			name:               "token signed with a different secret",
			token:              foreignToken,
			expectedStatusCode: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := theAuth.RequireUser(http.HandlerFunc(
				func(response http.ResponseWriter, request *http.Request) {
					handlerCalled = true

					claims, ok := ClaimsFromContext(request.Context())
					require.True(t, ok)
					assert.Equal(t, testUser.ID, claims.UserID)

					response.WriteHeader(http.StatusOK)
				},
			))

			request := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			if tt.token != "" {
				request.Header.Set("Authorization", tt.token)
			}
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			result := recorder.Result()
			defer result.Body.Close()

			assert.Equal(t, tt.expectedStatusCode, result.StatusCode)
			assert.Equal(t, tt.expectHandlerCall, handlerCalled, "the account logic must not run on auth failure")
		})
	}
}
