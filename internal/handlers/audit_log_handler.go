package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"arcade-backend/internal/models"
	"arcade-backend/internal/repositories"

	"github.com/gorilla/mux"
)

// auditLogStore is the read surface the handler needs from the repository
type auditLogStore interface {
	ListRecent(ctx context.Context, limit int) ([]models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit int) ([]models.AuditLog, error)
	ListByEntity(ctx context.Context, entityType, entityID string, limit int) ([]models.AuditLog, error)
}

type AuditLogHandler struct {
	Repo auditLogStore
}

func NewAuditLogHandler(repo *repositories.AuditLogRepository) *AuditLogHandler {
	return &AuditLogHandler{Repo: repo}
}

// ListRecent returns the newest audit records, optionally filtered by action
func (h *AuditLogHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	action := r.URL.Query().Get("action")
	var logs interface{}
	var err error
	if action != "" {
		logs, err = h.Repo.ListByAction(context.Background(), action, limit)
	} else {
		logs, err = h.Repo.ListRecent(context.Background(), limit)
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(logs)
}

// ListByEntity returns the audit trail of one entity
func (h *AuditLogHandler) ListByEntity(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	logs, err := h.Repo.ListByEntity(context.Background(), vars["entityType"], vars["entityId"], limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(logs)
}
