package handler

import (
	"net/http"
	"strconv"

	"github.com/fawziabuhussin/task-manager-api/internal/application/task"
	"github.com/fawziabuhussin/task-manager-api/internal/domain"
	"github.com/fawziabuhussin/task-manager-api/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

// TaskHandler serves /api/tasks. Every route runs behind the Auth gate.
type TaskHandler struct {
	svc task.Service
	log logrus.FieldLogger
}

func NewTaskHandler(svc task.Service, log logrus.FieldLogger) *TaskHandler {
	return &TaskHandler{svc: svc, log: log}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	page, err := h.svc.List(r.Context(), userID, domain.TaskQuery{
		Page:     queryInt(q.Get("page")),
		PageSize: queryInt(q.Get("pageSize")),
		Search:   q.Get("search"),
		Sort:     q.Get("sort"),
	})
	if err != nil {
		httpError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.CreateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.svc.Create(r.Context(), userID, req)
	if err != nil {
		httpError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	t, err := h.svc.Get(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req domain.UpdateTaskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t, err := h.svc.Update(r.Context(), userID, chi.URLParam(r, "id"), req)
	if err != nil {
		httpError(w, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		httpError(w, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func currentUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return "", false
	}
	return claims.UserID, true
}

// queryInt returns 0 for missing or malformed values so the service applies its defaults.
func queryInt(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
