package handlers

import (
	"context"
	"fmt"
	"net/http"

	"arcade-backend/internal/services"
	"arcade-backend/internal/timeutil"

	"github.com/gorilla/mux"
)

type ReportHandler struct {
	Service *services.ReportService
	Proxy   *services.ReportProxyService
}

func NewReportHandler(s *services.ReportService, proxy *services.ReportProxyService) *ReportHandler {
	return &ReportHandler{Service: s, Proxy: proxy}
}

func (h *ReportHandler) InventoryPDF(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("include_archived") == "true"

	pdf, err := h.Service.GenerateInventoryPDF(context.Background(), includeArchived)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	servePDF(w, pdf, fmt.Sprintf("inventory_%s.pdf", timeutil.Now().Format("2006-01-02")))
}

func (h *ReportHandler) InventoryCSV(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("include_archived") == "true"

	data, err := h.Service.GenerateInventoryCSV(context.Background(), includeArchived)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	serveAttachment(w, data, "text/csv", fmt.Sprintf("inventory_%s.csv", timeutil.Now().Format("2006-01-02")))
}

func (h *ReportHandler) MachinePDF(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	pdf, err := h.Service.GenerateMachinePDF(context.Background(), id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	servePDF(w, pdf, fmt.Sprintf("machine_%s.pdf", id))
}

func (h *ReportHandler) FleetCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.Service.GenerateFleetCSV(context.Background())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	serveAttachment(w, data, "text/csv", fmt.Sprintf("fleet_%s.csv", timeutil.Now().Format("2006-01-02")))
}

// FleetPDFZip bundles one machine sheet per active machine
func (h *ReportHandler) FleetPDFZip(w http.ResponseWriter, r *http.Request) {
	data, err := h.Service.GenerateFleetPDFZip(context.Background())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	serveAttachment(w, data, "application/zip", fmt.Sprintf("fleet_sheets_%s.zip", timeutil.Now().Format("2006-01-02")))
}

// GameReportProxy forwards to the game-play reports vendor API
func (h *ReportHandler) GameReportProxy(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["rest"]

	resp, err := h.Proxy.FetchGameReport(r.Context(), path, r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	serveProxied(w, resp)
}

// RevenueReportProxy forwards to the revenue vendor API
func (h *ReportHandler) RevenueReportProxy(w http.ResponseWriter, r *http.Request) {
	path := mux.Vars(r)["rest"]

	resp, err := h.Proxy.FetchRevenueReport(r.Context(), path, r.URL.Query())
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	serveProxied(w, resp)
}

func serveProxied(w http.ResponseWriter, resp *services.ProxiedResponse) {
	if resp.ContentType != "" {
		w.Header().Set("Content-Type", resp.ContentType)
	}
	w.WriteHeader(resp.StatusCode)
	w.Write(resp.Body)
}

func servePDF(w http.ResponseWriter, data []byte, filename string) {
	serveAttachment(w, data, "application/pdf", filename)
}

func serveAttachment(w http.ResponseWriter, data []byte, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}
