package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"arcade-backend/internal/cache"
	"arcade-backend/internal/middleware"
	"arcade-backend/internal/models"
	"arcade-backend/internal/services"

	"github.com/gorilla/mux"
)

type MachineHandler struct {
	Service *services.MachineService
}

func NewMachineHandler(s *services.MachineService) *MachineHandler {
	// Pre-warm the fleet view on startup so the dashboard's first load is fast
	cache.RegisterPreWarm(cache.FleetViewKey, func(ctx context.Context) ([]byte, error) {
		machines, err := s.FleetView(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(machines)
	})

	return &MachineHandler{Service: s}
}

// machineDetail pairs a machine with the stock items assigned to it
type machineDetail struct {
	Machine      *models.ArcadeMachine `json:"machine"`
	CurrentItems []models.StockItem    `json:"current_items"`
	QueuedItems  []models.StockItem    `json:"queued_items"`
}

// FleetView returns every active machine with slots freshly relinked
func (h *MachineHandler) FleetView(w http.ResponseWriter, r *http.Request) {
	machines, err := h.Service.FleetView(context.Background())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(machines)
}

// Relink rebuilds slot occupancy from stock item assignments and persists it
func (h *MachineHandler) Relink(w http.ResponseWriter, r *http.Request) {
	machines, err := h.Service.Relink(context.Background())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(machines)
}

func (h *MachineHandler) GetMachine(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	machine, current, queued, err := h.Service.GetMachine(context.Background(), id)
	if err != nil {
		http.Error(w, "Machine not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(machineDetail{
		Machine:      machine,
		CurrentItems: current,
		QueuedItems:  queued,
	})
}

func (h *MachineHandler) CreateMachine(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())

	var req models.CreateMachineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	machine, err := h.Service.CreateMachine(context.Background(), &req, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(machine)
}

func (h *MachineHandler) UpdateMachine(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]

	var req models.UpdateMachineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	machine, err := h.Service.UpdateMachine(context.Background(), id, &req, userID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(machine)
}

func (h *MachineHandler) ArchiveMachine(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]

	if err := h.Service.ArchiveMachine(context.Background(), id, userID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *MachineHandler) RestoreMachine(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	id := mux.Vars(r)["id"]

	if err := h.Service.RestoreMachine(context.Background(), id, userID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
