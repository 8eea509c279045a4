// Package router wires the HTTP routes of the accounts service and
// translates service results and error kinds into HTTP responses.
package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sgorbunov/shrtaccounts/internal/auth"
	"github.com/sgorbunov/shrtaccounts/internal/gzippedhttp"
	"github.com/sgorbunov/shrtaccounts/internal/ipchecker"
	"github.com/sgorbunov/shrtaccounts/internal/logger"
	"github.com/sgorbunov/shrtaccounts/internal/models"
	"github.com/sgorbunov/shrtaccounts/internal/service"
)

type accountService interface {
	Register(ctx context.Context, req models.RegisterRequest) error

	Login(ctx context.Context, req models.LoginRequest) (string, models.PublicUser, error)

	Update(ctx context.Context, userID string, req models.UpdateRequest) error

	Delete(ctx context.Context, userID string) error

	Dashboard(ctx context.Context, userID string) (models.ClickStats, error)

	Ping(ctx context.Context) error

	GetInternalStats(ctx context.Context) (models.InternalStatsResponse, error)
}

type authenticator interface {
	RequireUser(h http.Handler) http.Handler
}

// Router holds the handler dependencies of the HTTP layer.
type Router struct {
	service   accountService
	ipChecker *ipchecker.IPChecker
}

// New builds the chi router with all routes and middleware attached.
func New(
	svc accountService,
	theAuth authenticator,
	ipChecker *ipchecker.IPChecker,
) *chi.Mux {
	myRouter := &Router{
		service:   svc,
		ipChecker: ipChecker,
	}

	router := chi.NewRouter()
	router.Use(
		logger.WithLoggingHTTPMiddleware,
		gzippedhttp.UngzipJSONRequest,
	)

	router.Post(`/register`, myRouter.PostRegister)
	router.Post(`/login`, myRouter.PostLogin)
	router.With(theAuth.RequireUser).Put(`/update`, myRouter.PutUpdate)
	router.With(theAuth.RequireUser).Delete(`/delete`, myRouter.DeleteAccount)
	router.With(gzippedhttp.GzipResponse, theAuth.RequireUser).Get(`/dashboard`, myRouter.GetDashboard)
	router.Get(`/ping`, myRouter.GetPing)
	router.Get(`/api/internal/stats`, myRouter.GetInternalStats)

	return router
}

// PostRegister handles new account registration.
func (r *Router) PostRegister(response http.ResponseWriter, request *http.Request) {
	req := models.RegisterRequest{}
	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		writeJSON(response, http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body!",
		})
		return
	}

	if err := r.service.Register(request.Context(), req); err != nil {
		r.writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.Response{
		Success: true,
		Message: "User registered successfully!",
	})
}

// PostLogin handles credential checks and token issuing.
func (r *Router) PostLogin(response http.ResponseWriter, request *http.Request) {
	req := models.LoginRequest{}
	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		writeJSON(response, http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body!",
		})
		return
	}

	token, usr, err := r.service.Login(request.Context(), req)
	if err != nil {
		r.writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.LoginResponse{
		Success: true,
		Message: "Login successful!",
		Token:   token,
		User:    usr,
	})
}

// PutUpdate overwrites the profile fields of the authenticated user.
// The target identifier comes from the verified token claims only,
// never from the request body.
func (r *Router) PutUpdate(response http.ResponseWriter, request *http.Request) {
	claims, ok := auth.ClaimsFromContext(request.Context())
	if !ok {
		writeJSON(response, http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Authorization token is required!",
		})
		return
	}

	req := models.UpdateRequest{}
	if err := json.NewDecoder(request.Body).Decode(&req); err != nil {
		writeJSON(response, http.StatusBadRequest, models.Response{
			Success: false,
			Message: "Invalid request body!",
		})
		return
	}

	if err := r.service.Update(request.Context(), claims.UserID, req); err != nil {
		r.writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.Response{
		Success: true,
		Message: "Changes saved successfully",
	})
}

// DeleteAccount removes the authenticated user's account together with
// the owned links and their visit logs.
func (r *Router) DeleteAccount(response http.ResponseWriter, request *http.Request) {
	claims, ok := auth.ClaimsFromContext(request.Context())
	if !ok {
		writeJSON(response, http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Authorization token is required!",
		})
		return
	}

	if err := r.service.Delete(request.Context(), claims.UserID); err != nil {
		r.writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.Response{
		Success: true,
		Message: "Account deleted successfully!",
	})
}

// GetDashboard serves the click analytics of the authenticated user.
func (r *Router) GetDashboard(response http.ResponseWriter, request *http.Request) {
	claims, ok := auth.ClaimsFromContext(request.Context())
	if !ok {
		writeJSON(response, http.StatusUnauthorized, models.Response{
			Success: false,
			Message: "Authorization token is required!",
		})
		return
	}

	stats, err := r.service.Dashboard(request.Context(), claims.UserID)
	if err != nil {
		r.writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, models.DashboardResponse{
		Success: true,
		Message: "Data fetched successfully!",
		Data:    stats,
	})
}

// GetPing reports storage health.
func (r *Router) GetPing(response http.ResponseWriter, request *http.Request) {
	if err := r.service.Ping(request.Context()); err != nil {
		logger.Log.Debugln("Error calling the `r.service.Ping()`: ", zap.Error(err))
		response.WriteHeader(http.StatusInternalServerError)
		return
	}

	response.WriteHeader(http.StatusOK)
}

// GetInternalStats serves user/link counts to callers from the trusted subnet.
func (r *Router) GetInternalStats(response http.ResponseWriter, request *http.Request) {
	if r.ipChecker.IsTrustedSubnetEmpty() {
		response.WriteHeader(http.StatusForbidden)
		return
	}

	clientIP, err := r.ipChecker.GetClientIP(request)
	if err != nil || !r.ipChecker.Check(clientIP) {
		response.WriteHeader(http.StatusForbidden)
		return
	}

	stats, err := r.service.GetInternalStats(request.Context())
	if err != nil {
		r.writeServiceError(response, err)
		return
	}

	writeJSON(response, http.StatusOK, stats)
}

func (r *Router) writeServiceError(response http.ResponseWriter, err error) {
	var validationErr *service.ValidationError

	switch {
	case errors.As(err, &validationErr):
		writeJSON(response, http.StatusBadRequest, models.Response{
			Success: false,
			Message: validationErr.Error(),
		})

	case errors.Is(err, service.ErrUserAlreadyExists):
		writeJSON(response, http.StatusUnauthorized, models.Response{
			Success: false,
			Message: err.Error(),
		})

	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrInvalidPassword),
		errors.Is(err, service.ErrInvalidUser):
		writeJSON(response, http.StatusBadRequest, models.Response{
			Success: false,
			Message: err.Error(),
		})

	default:
		logger.Log.Debugln("Unexpected service error: ", zap.Error(err))
		writeJSON(response, http.StatusInternalServerError, models.Response{
			Success: false,
			Message: "Internal Server Error !!",
		})
	}
}

func writeJSON(response http.ResponseWriter, statusCode int, payload any) {
	response.Header().Set("Content-Type", "application/json")
	response.WriteHeader(statusCode)
	if err := json.NewEncoder(response).Encode(payload); err != nil {
		logger.Log.Debugln("Error calling the `json.NewEncoder().Encode()`: ", zap.Error(err))
	}
}
