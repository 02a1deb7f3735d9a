package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"arcade-backend/internal/auth"
	"arcade-backend/internal/cache"
	"arcade-backend/internal/config"
	"arcade-backend/internal/database"
	"arcade-backend/internal/db"
	"arcade-backend/internal/handlers"
	"arcade-backend/internal/health"
	arcadehttp "arcade-backend/internal/http"
	"arcade-backend/internal/middleware"
	"arcade-backend/internal/monitoring"
	"arcade-backend/internal/repositories"
	"arcade-backend/internal/services"
)

func main() {
	port := flag.Int("port", 0, "override the configured HTTP port")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// The cache is optional. The service runs without redis, just slower.
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable, continuing without it: %v", err)
	}

	migrateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.NewMigrator(pool).RunMigrations(migrateCtx); err != nil {
		cancel()
		log.Fatalf("Failed to run migrations: %v", err)
	}
	cancel()

	healthChecker := health.NewHealthChecker(pool)

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	totpRepo := repositories.NewTOTPRepository(pool)
	stockItemRepo := repositories.NewStockItemRepository(pool)
	machineRepo := repositories.NewMachineRepository(pool)
	maintenanceRepo := repositories.NewMaintenanceTaskRepository(pool)
	reorderRepo := repositories.NewReorderRequestRepository(pool)
	auditRepo := repositories.NewAuditLogRepository(pool)
	settingRepo := repositories.NewSystemSettingRepository(pool)
	snapshotRepo := repositories.NewSnapshotRepository(pool)

	monitoringServer := monitoring.NewMonitoringServer(pool, machineRepo, stockItemRepo, cfg.Server.MonitoringPort)
	go monitoringServer.Start()

	// Services
	jwtManager := auth.NewJWTManager(cfg)
	userService := services.NewUserService(userRepo, auditRepo, jwtManager)
	totpService := services.NewTOTPService(userRepo, totpRepo)
	inventoryService := services.NewInventoryService(stockItemRepo, machineRepo, auditRepo)
	machineService := services.NewMachineService(machineRepo, stockItemRepo, auditRepo)
	maintenanceService := services.NewMaintenanceService(maintenanceRepo, machineRepo)
	reorderService := services.NewReorderService(reorderRepo, stockItemRepo, auditRepo)
	settingService := services.NewSettingService(settingRepo, auditRepo)
	snapshotService := services.NewSnapshotService(snapshotRepo, stockItemRepo, machineRepo, cfg)
	analyticsService := services.NewAnalyticsService(stockItemRepo, machineRepo, reorderRepo, maintenanceRepo)
	reportService := services.NewReportService(stockItemRepo, machineRepo, settingRepo)
	reportProxyService := services.NewReportProxyService(cfg)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, totpService)
	userHandler := handlers.NewUserHandler(userService)
	totpHandler := handlers.NewTOTPHandler(totpService, userRepo)
	stockItemHandler := handlers.NewStockItemHandler(inventoryService)
	machineHandler := handlers.NewMachineHandler(machineService)
	maintenanceHandler := handlers.NewMaintenanceHandler(maintenanceService)
	reorderHandler := handlers.NewReorderHandler(reorderService)
	auditLogHandler := handlers.NewAuditLogHandler(auditRepo)
	systemSettingHandler := handlers.NewSystemSettingHandler(settingService)
	snapshotHandler := handlers.NewSnapshotHandler(snapshotService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	reportHandler := handlers.NewReportHandler(reportService, reportProxyService)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)

	router := arcadehttp.NewRouter(
		authHandler,
		userHandler,
		totpHandler,
		stockItemHandler,
		machineHandler,
		maintenanceHandler,
		reorderHandler,
		auditLogHandler,
		systemSettingHandler,
		snapshotHandler,
		analyticsHandler,
		reportHandler,
		healthHandler,
		authMiddleware,
	)

	corsMiddleware := middleware.NewCORS(cfg)
	handler := middleware.PanicRecovery(middleware.MetricsMiddleware(corsMiddleware(router)))

	go cache.PreWarmCache()

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("[Server] Listening on %s (monitoring on :%d)", addr, cfg.Server.MonitoringPort)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
