package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"arcade-backend/internal/middleware"
	"arcade-backend/internal/models"
	"arcade-backend/internal/services"

	"github.com/gorilla/mux"
)

type SnapshotHandler struct {
	Service *services.SnapshotService
}

func NewSnapshotHandler(s *services.SnapshotService) *SnapshotHandler {
	return &SnapshotHandler{Service: s}
}

func (h *SnapshotHandler) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req models.CreateSnapshotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	snapshot, err := h.Service.CreateSnapshot(context.Background(), &req, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(snapshot)
}

// ListSnapshots returns all versions for one entity, newest first
func (h *SnapshotHandler) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	entityType := r.URL.Query().Get("entity_type")
	entityID := r.URL.Query().Get("entity_id")
	if entityID == "" {
		http.Error(w, "entity_id parameter is required", http.StatusBadRequest)
		return
	}

	snapshots, err := h.Service.ListSnapshots(context.Background(), entityType, entityID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshots)
}

func (h *SnapshotHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	snapshot, err := h.Service.GetSnapshot(context.Background(), id)
	if err != nil {
		http.Error(w, "Snapshot not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snapshot)
}

// Diff compares two versions of the same entity
func (h *SnapshotHandler) Diff(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err1 := strconv.Atoi(q.Get("from"))
	to, err2 := strconv.Atoi(q.Get("to"))
	if err1 != nil || err2 != nil {
		http.Error(w, "from and to version parameters are required", http.StatusBadRequest)
		return
	}

	diffs, err := h.Service.Diff(context.Background(), q.Get("entity_type"), q.Get("entity_id"), from, to)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(diffs)
}

func (h *SnapshotHandler) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Service.DeleteSnapshot(context.Background(), id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
