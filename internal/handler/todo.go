package handler

import (
	"net/http"

	"github.com/Dan9191/todo-service/internal/models"
)

type homeView struct {
	Name      string            `json:"name"`
	TodoItems []models.TodoItem `json:"todoItems"`
}

// Home lists every item of the caller
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	items, err := h.svc.ListForUser(r.Context(), actor)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, homeView{Name: actor.Username, TodoItems: items})
}

// Filter lists the caller's items created in a date range, optionally by status
func (h *Handler) Filter(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	loc := h.svc.Location()

	start, err := parseDate(q, "startDate", loc)
	if err != nil {
		h.writeError(w, err)
		return
	}
	end, err := parseDate(q, "endDate", loc)
	if err != nil {
		h.writeError(w, err)
		return
	}
	var status models.StatusFilter
	if status.Completed, err = parseFlag(q, "completedCheckbox"); err != nil {
		h.writeError(w, err)
		return
	}
	if status.NotCompleted, err = parseFlag(q, "notCompletedCheckbox"); err != nil {
		h.writeError(w, err)
		return
	}

	actor, err := h.actor(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	items, err := h.svc.Filter(r.Context(), actor, start, end, status)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, homeView{Name: actor.Username, TodoItems: items})
}

// ClearFilter sends the caller back to the unfiltered list
func (h *Handler) ClearFilter(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// CreateTodo adds an item for the caller
func (h *Handler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	patch, err := decodeTodoPatch(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	actor, err := h.actor(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	item, err := h.svc.CreateForUser(r.Context(), actor, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, item)
}

// GetTodo returns one of the caller's items
func (h *Handler) GetTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	session, err := h.sessionUser(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	item, err := h.svc.GetItem(r.Context(), session, id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

// UpdateTodo edits one of the caller's items
func (h *Handler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	patch, err := decodeTodoPatch(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	session, err := h.sessionUser(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	item, err := h.svc.EditItem(r.Context(), session, id, patch)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, item)
}

// DeleteTodo removes one of the caller's items
func (h *Handler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	session, err := h.sessionUser(r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := h.svc.DeleteItem(r.Context(), session, id); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
