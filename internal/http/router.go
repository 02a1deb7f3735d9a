package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"arcade-backend/internal/handlers"
	"arcade-backend/internal/middleware"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	totpHandler *handlers.TOTPHandler,
	stockItemHandler *handlers.StockItemHandler,
	machineHandler *handlers.MachineHandler,
	maintenanceHandler *handlers.MaintenanceHandler,
	reorderHandler *handlers.ReorderHandler,
	auditLogHandler *handlers.AuditLogHandler,
	systemSettingHandler *handlers.SystemSettingHandler,
	snapshotHandler *handlers.SnapshotHandler,
	analyticsHandler *handlers.AnalyticsHandler,
	reportHandler *handlers.ReportHandler,
	healthHandler *handlers.HealthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	// Health probes and Prometheus scrape endpoint
	r.HandleFunc("/health", healthHandler.BasicHealth).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.ReadinessHealth).Methods("GET")
	r.HandleFunc("/health/detailed", healthHandler.DetailedHealth).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Public API routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/2fa/login", authHandler.VerifyTOTPLogin).Methods("POST")

	// Authenticated session info
	meAPI := r.PathPrefix("/auth/me").Subrouter()
	meAPI.Use(authMiddleware.Authenticate)
	meAPI.HandleFunc("", authHandler.Me).Methods("GET")

	// Protected API routes - 2FA management
	totpAPI := r.PathPrefix("/auth/2fa").Subrouter()
	totpAPI.Use(authMiddleware.Authenticate)
	totpAPI.HandleFunc("/setup", totpHandler.Setup).Methods("POST")
	totpAPI.HandleFunc("/enable", totpHandler.Enable).Methods("POST")
	totpAPI.HandleFunc("/disable", totpHandler.Disable).Methods("POST")
	totpAPI.HandleFunc("/status", totpHandler.Status).Methods("GET")
	totpAPI.HandleFunc("/backup-codes", totpHandler.RegenerateBackupCodes).Methods("POST")

	// Protected API routes - Users (admin only)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.ListUsers)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.CreateUser)).ServeHTTP).Methods("POST")
	usersAPI.HandleFunc("/2fa-audit", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.TwoFAAudit)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.GetUser)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.UpdateUser)).ServeHTTP).Methods("PUT")
	usersAPI.HandleFunc("/{id}", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.DeleteUser)).ServeHTTP).Methods("DELETE")
	usersAPI.HandleFunc("/{id}/toggle-active", authMiddleware.RequireAdmin(http.HandlerFunc(userHandler.ToggleActive)).ServeHTTP).Methods("PATCH")

	// Protected API routes - Inventory
	inventoryAPI := r.PathPrefix("/api/inventory").Subrouter()
	inventoryAPI.Use(authMiddleware.Authenticate)
	inventoryAPI.HandleFunc("", stockItemHandler.ListItems).Methods("GET")
	inventoryAPI.HandleFunc("", stockItemHandler.CreateItem).Methods("POST")
	inventoryAPI.HandleFunc("/{id}", stockItemHandler.GetItem).Methods("GET")
	inventoryAPI.HandleFunc("/{id}", stockItemHandler.UpdateItem).Methods("PUT")
	inventoryAPI.HandleFunc("/{id}/adjust", stockItemHandler.AdjustStock).Methods("POST")
	inventoryAPI.HandleFunc("/{id}/assign", stockItemHandler.Assign).Methods("POST")
	inventoryAPI.HandleFunc("/{id}/assign/{machineId}", stockItemHandler.Unassign).Methods("DELETE")
	inventoryAPI.HandleFunc("/{id}/archive", stockItemHandler.ArchiveItem).Methods("POST")
	inventoryAPI.HandleFunc("/{id}/restore", stockItemHandler.RestoreItem).Methods("POST")
	inventoryAPI.HandleFunc("/{id}/history", stockItemHandler.ItemHistory).Methods("GET")

	// Protected API routes - Machines
	machinesAPI := r.PathPrefix("/api/machines").Subrouter()
	machinesAPI.Use(authMiddleware.Authenticate)
	machinesAPI.HandleFunc("", machineHandler.FleetView).Methods("GET")
	machinesAPI.HandleFunc("", authMiddleware.RequireManager(http.HandlerFunc(machineHandler.CreateMachine)).ServeHTTP).Methods("POST")
	machinesAPI.HandleFunc("/relink", machineHandler.Relink).Methods("POST")
	machinesAPI.HandleFunc("/{id}", machineHandler.GetMachine).Methods("GET")
	machinesAPI.HandleFunc("/{id}", machineHandler.UpdateMachine).Methods("PUT")
	machinesAPI.HandleFunc("/{id}/archive", authMiddleware.RequireManager(http.HandlerFunc(machineHandler.ArchiveMachine)).ServeHTTP).Methods("POST")
	machinesAPI.HandleFunc("/{id}/restore", authMiddleware.RequireManager(http.HandlerFunc(machineHandler.RestoreMachine)).ServeHTTP).Methods("POST")

	// Protected API routes - Maintenance tickets
	maintenanceAPI := r.PathPrefix("/api/maintenance").Subrouter()
	maintenanceAPI.Use(authMiddleware.Authenticate)
	maintenanceAPI.HandleFunc("", maintenanceHandler.ListTasks).Methods("GET")
	maintenanceAPI.HandleFunc("", maintenanceHandler.CreateTask).Methods("POST")
	maintenanceAPI.HandleFunc("/{id}", maintenanceHandler.GetTask).Methods("GET")
	maintenanceAPI.HandleFunc("/{id}", maintenanceHandler.UpdateTask).Methods("PUT")
	maintenanceAPI.HandleFunc("/{id}", authMiddleware.RequireManager(http.HandlerFunc(maintenanceHandler.DeleteTask)).ServeHTTP).Methods("DELETE")

	// Protected API routes - Reorder workflow. Per-status role gates live in
	// the service, not here.
	reordersAPI := r.PathPrefix("/api/reorders").Subrouter()
	reordersAPI.Use(authMiddleware.Authenticate)
	reordersAPI.HandleFunc("", reorderHandler.ListReorders).Methods("GET")
	reordersAPI.HandleFunc("", reorderHandler.CreateReorder).Methods("POST")
	reordersAPI.HandleFunc("/{id}", reorderHandler.GetReorder).Methods("GET")
	reordersAPI.HandleFunc("/{id}/transition", reorderHandler.Transition).Methods("POST")
	reordersAPI.HandleFunc("/{id}", reorderHandler.DeleteReorder).Methods("DELETE")

	// Protected API routes - Audit logs
	auditAPI := r.PathPrefix("/api/audit").Subrouter()
	auditAPI.Use(authMiddleware.Authenticate)
	auditAPI.HandleFunc("", auditLogHandler.ListRecent).Methods("GET")
	auditAPI.HandleFunc("/{entityType}/{entityId}", auditLogHandler.ListByEntity).Methods("GET")

	// Protected API routes - System Settings
	settingsAPI := r.PathPrefix("/api/settings").Subrouter()
	settingsAPI.Use(authMiddleware.Authenticate)
	settingsAPI.HandleFunc("", systemSettingHandler.ListSettings).Methods("GET")
	settingsAPI.HandleFunc("/{key}", systemSettingHandler.GetSetting).Methods("GET")
	settingsAPI.HandleFunc("/{key}", authMiddleware.RequireAdmin(http.HandlerFunc(systemSettingHandler.UpdateSetting)).ServeHTTP).Methods("PUT")

	// Protected API routes - Snapshots
	snapshotsAPI := r.PathPrefix("/api/snapshots").Subrouter()
	snapshotsAPI.Use(authMiddleware.Authenticate)
	snapshotsAPI.HandleFunc("", snapshotHandler.ListSnapshots).Methods("GET")
	snapshotsAPI.HandleFunc("", snapshotHandler.CreateSnapshot).Methods("POST")
	snapshotsAPI.HandleFunc("/diff", snapshotHandler.Diff).Methods("GET")
	snapshotsAPI.HandleFunc("/{id}", snapshotHandler.GetSnapshot).Methods("GET")
	snapshotsAPI.HandleFunc("/{id}", authMiddleware.RequireManager(http.HandlerFunc(snapshotHandler.DeleteSnapshot)).ServeHTTP).Methods("DELETE")

	// Protected API routes - Analytics
	analyticsAPI := r.PathPrefix("/api/analytics").Subrouter()
	analyticsAPI.Use(authMiddleware.Authenticate)
	analyticsAPI.HandleFunc("/summary", analyticsHandler.Summary).Methods("GET")
	analyticsAPI.HandleFunc("/value-by-category", analyticsHandler.ValueByCategory).Methods("GET")
	analyticsAPI.HandleFunc("/low-stock", analyticsHandler.LowStock).Methods("GET")

	// Protected API routes - Reports and vendor report proxies
	reportsAPI := r.PathPrefix("/api/reports").Subrouter()
	reportsAPI.Use(authMiddleware.Authenticate)
	reportsAPI.HandleFunc("/inventory.pdf", reportHandler.InventoryPDF).Methods("GET")
	reportsAPI.HandleFunc("/inventory.csv", reportHandler.InventoryCSV).Methods("GET")
	reportsAPI.HandleFunc("/fleet.csv", reportHandler.FleetCSV).Methods("GET")
	reportsAPI.HandleFunc("/fleet-sheets.zip", reportHandler.FleetPDFZip).Methods("GET")
	reportsAPI.HandleFunc("/machines/{id}.pdf", reportHandler.MachinePDF).Methods("GET")
	reportsAPI.HandleFunc("/games/{rest:.*}", reportHandler.GameReportProxy).Methods("GET")
	reportsAPI.HandleFunc("/revenue/{rest:.*}", reportHandler.RevenueReportProxy).Methods("GET")

	return r
}
