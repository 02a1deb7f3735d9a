package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"arcade-backend/internal/middleware"
	"arcade-backend/internal/models"
	"arcade-backend/internal/services"

	"github.com/gorilla/mux"
)

type ReorderHandler struct {
	Service *services.ReorderService
}

func NewReorderHandler(s *services.ReorderService) *ReorderHandler {
	return &ReorderHandler{Service: s}
}

func (h *ReorderHandler) ListReorders(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	reorders, err := h.Service.ListReorders(context.Background(), status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reorders)
}

func (h *ReorderHandler) GetReorder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	reorder, err := h.Service.GetReorder(context.Background(), id)
	if err != nil {
		http.Error(w, "Reorder request not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reorder)
}

func (h *ReorderHandler) CreateReorder(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req models.CreateReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	reorder, err := h.Service.CreateReorder(context.Background(), &req, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(reorder)
}

// Transition moves a reorder through its workflow. Role checks happen in the
// service because allowed roles depend on the target status.
func (h *ReorderHandler) Transition(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	userRole, _ := middleware.GetRoleFromContext(r.Context())
	id := mux.Vars(r)["id"]

	var req models.TransitionReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	reorder, err := h.Service.Transition(context.Background(), id, &req, userID, userRole)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reorder)
}

func (h *ReorderHandler) DeleteReorder(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if err := h.Service.DeleteReorder(context.Background(), id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
