package handler

import (
	"net/http"
	"time"

	"github.com/Dan9191/todo-service/internal/common"
	"github.com/Dan9191/todo-service/internal/middleware"
)

// Signup handles user registration
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	reg, err := decodeRegistration(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	user, err := h.svc.Register(r.Context(), reg)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, user)
}

// Signin handles user authentication
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	creds, err := decodeCredentials(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	token, expires, err := h.svc.SignIn(r.Context(), creds.Username, creds.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	h.writeJSON(w, http.StatusOK, map[string]any{
		"token":      token,
		"expires_at": expires.UTC().Format(time.RFC3339),
	})
}

// Signout revokes the current session
func (h *Handler) Signout(w http.ResponseWriter, r *http.Request) {
	session, expires, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		h.writeError(w, common.ErrInvalidToken)
		return
	}
	if err := h.svc.SignOut(r.Context(), session, expires); err != nil {
		h.writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	w.WriteHeader(http.StatusNoContent)
}
