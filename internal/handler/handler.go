package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dan9191/todo-service/internal/common"
	"github.com/Dan9191/todo-service/internal/middleware"
	"github.com/Dan9191/todo-service/internal/models"
	"github.com/Dan9191/todo-service/internal/service"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	svc *service.Service
	log *logrus.Logger
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// NewRouter wires every route behind the given permission policy.
func NewRouter(h *Handler, policy *middleware.Policy, log *logrus.Logger) http.Handler {
	r := mux.NewRouter()
	r.Use(policy.Middleware)

	// Public routes
	r.HandleFunc("/signup", h.Signup).Methods("POST")
	r.HandleFunc("/signin", h.Signin).Methods("POST")

	// Session
	r.HandleFunc("/signout", h.Signout).Methods("POST")

	// Todo items
	r.HandleFunc("/", h.Home).Methods("GET")
	r.HandleFunc("/filter", h.Filter).Methods("GET")
	r.HandleFunc("/clear-filter", h.ClearFilter).Methods("GET")
	r.HandleFunc("/todo", h.CreateTodo).Methods("POST")
	r.HandleFunc("/todo/export.xml", h.ExportTodos).Methods("GET")
	r.HandleFunc("/todo/{id:[0-9]+}", h.GetTodo).Methods("GET")
	r.HandleFunc("/todo/{id:[0-9]+}", h.UpdateTodo).Methods("POST", "PUT")
	r.HandleFunc("/todo/{id:[0-9]+}", h.DeleteTodo).Methods("DELETE")
	r.HandleFunc("/delete/{id:[0-9]+}", h.DeleteTodo).Methods("POST")

	// User administration
	r.HandleFunc("/users", h.ListUsers).Methods("GET")
	r.HandleFunc("/users", h.CreateUser).Methods("POST")
	r.HandleFunc("/users/{id:[0-9]+}", h.GetUser).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}", h.UpdateUser).Methods("PUT")
	r.HandleFunc("/users/{id:[0-9]+}", h.DeleteUser).Methods("DELETE")

	return middleware.RequestLogger(log)(r)
}

// actor resolves the user behind the request session.
func (h *Handler) actor(r *http.Request) (*models.User, error) {
	session, _, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		return nil, common.ErrInvalidToken
	}
	return h.svc.ResolveActor(r.Context(), session.Username)
}

// sessionUser returns the verified login name of the caller.
func (h *Handler) sessionUser(r *http.Request) (string, error) {
	session, _, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		return "", common.ErrInvalidToken
	}
	return session.Username, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", mux.Vars(r)["id"], common.ErrValidation)
	}
	return id, nil
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Errorf("Failed to encode response: %v", err)
	}
}

// writeError maps the error taxonomy onto HTTP status codes. Not-found and
// unauthorized stay distinct.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "Internal server error"
	switch {
	case errors.Is(err, common.ErrValidation):
		status, msg = http.StatusBadRequest, err.Error()
	case errors.Is(err, common.ErrNotFound):
		status, msg = http.StatusNotFound, err.Error()
	case errors.Is(err, common.ErrUnauthorized):
		status, msg = http.StatusForbidden, err.Error()
	case errors.Is(err, common.ErrIdentityNotFound),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, err.Error()
	case errors.Is(err, common.ErrAlreadyExists):
		status, msg = http.StatusConflict, err.Error()
	default:
		h.log.Errorf("Request failed: %v", err)
	}
	h.writeJSON(w, status, map[string]string{"error": msg})
}
