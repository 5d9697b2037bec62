// Package api exposes the user service over HTTP.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/goliatone/go-user-cache/entity"
	"github.com/goliatone/go-user-cache/usercache"
)

// UserService is the subset of usercache.Service the handlers call.
type UserService interface {
	Save(ctx context.Context, user entity.User) (*entity.User, error)
	FindUser(ctx context.Context, userID string) (*entity.User, error)
	DeleteUser(ctx context.Context, userID string) error
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type Handler struct {
	users  UserService
	checks map[string]HealthCheck
	logger *zap.Logger
}

type Option func(*Handler)

func WithLogger(logger *zap.Logger) Option {
	return func(h *Handler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithHealthCheck registers a named dependency check for /healthz.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(h *Handler) {
		if check != nil {
			h.checks[name] = check
		}
	}
}

func NewHandler(users UserService, opts ...Option) *Handler {
	h := &Handler{
		users:  users,
		checks: make(map[string]HealthCheck),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Router returns the mux with user routes, health and middleware installed.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogger(h.logger), Recoverer(h.logger))

	r.HandleFunc("/user", h.SaveUser).Methods(http.MethodPost)
	r.HandleFunc("/user/{userId}", h.GetUser).Methods(http.MethodGet)
	r.HandleFunc("/user/{userId}", h.DeleteUser).Methods(http.MethodDelete)
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	return r
}

func (h *Handler) SaveUser(w http.ResponseWriter, r *http.Request) {
	var user entity.User
	if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
		renderError(w, r, http.StatusBadRequest, err)
		return
	}

	saved, err := h.users.Save(r.Context(), user)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	if saved == nil {
		w.WriteHeader(http.StatusOK)
		return
	}

	renderJSON(w, http.StatusOK, saved)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	user, err := h.users.FindUser(r.Context(), userID)
	if errors.Is(err, usercache.ErrUserNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	renderJSON(w, http.StatusOK, user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	if err := h.users.DeleteUser(r.Context(), userID); err != nil {
		h.serverError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	for name, check := range h.checks {
		if err := check(r.Context()); err != nil {
			h.logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
			renderJSON(w, http.StatusServiceUnavailable, healthResponse{
				Status: "unavailable",
				Error:  name + ": " + err.Error(),
			})
			return
		}
	}

	renderJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	renderError(w, r, http.StatusInternalServerError, err)
}
