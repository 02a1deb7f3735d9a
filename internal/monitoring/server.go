package monitoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"

	"arcade-backend/internal/models"
	"arcade-backend/internal/repositories"
	"arcade-backend/pkg/utils"
)

// MonitoringServer runs the ops dashboard on its own port, separate from the
// API. It watches the database, the host and the machine fleet, and pushes
// alerts to connected dashboards over websocket.
type MonitoringServer struct {
	db         *pgxpool.Pool
	machines   *repositories.MachineRepository
	items      *repositories.StockItemRepository
	port       int
	alerts     []Alert
	alertsMux  sync.RWMutex
	clients    map[*websocket.Conn]bool
	clientsMux sync.Mutex
	broadcast  chan Alert

	// remembered alert keys so a persistent condition alerts once, not
	// every sweep
	seen map[string]bool
}

type Alert struct {
	ID        int       `json:"id"`
	Severity  string    `json:"severity"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Resolved  bool      `json:"resolved"`
}

type DashboardStats struct {
	DatabaseStatus    string  `json:"database_status"`
	ActiveConnections int     `json:"active_connections"`
	ResponseTime      int64   `json:"response_time_ms"`
	ActiveAlerts      int     `json:"active_alerts"`
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryPercent     float64 `json:"memory_percent"`
	DiskPercent       float64 `json:"disk_percent"`
	DBSize            string  `json:"db_size"`
	Uptime            string  `json:"uptime"`
	MemoryUsed        string  `json:"memory_used"`
	MemoryTotal       string  `json:"memory_total"`
	DiskUsed          string  `json:"disk_used"`
	DiskTotal         string  `json:"disk_total"`

	MachinesByStatus map[string]int `json:"machines_by_status"`
	MachinesOffline  int            `json:"machines_offline"`
	LowStockItems    int            `json:"low_stock_items"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func NewMonitoringServer(db *pgxpool.Pool, machines *repositories.MachineRepository, items *repositories.StockItemRepository, port int) *MonitoringServer {
	return &MonitoringServer{
		db:        db,
		machines:  machines,
		items:     items,
		port:      port,
		alerts:    make([]Alert, 0),
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan Alert),
		seen:      make(map[string]bool),
	}
}

func (ms *MonitoringServer) Start() {
	r := mux.NewRouter()

	r.HandleFunc("/api/stats", ms.getStats).Methods("GET")
	r.HandleFunc("/api/alerts", ms.getAlerts).Methods("GET")
	r.HandleFunc("/api/test-alert", ms.createTestAlert).Methods("POST")

	// WebSocket for real-time updates
	r.HandleFunc("/ws", ms.handleWebSocket)

	go ms.handleBroadcast()
	go ms.monitorHealth()

	addr := fmt.Sprintf(":%d", ms.port)
	log.Printf("[Monitoring] Ops dashboard running on %s", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

func (ms *MonitoringServer) getStats(w http.ResponseWriter, r *http.Request) {
	utils.JSON(w, http.StatusOK, ms.collectStats())
}

func (ms *MonitoringServer) collectStats() DashboardStats {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	start := time.Now()
	err := ms.db.Ping(ctx)
	responseTime := time.Since(start).Milliseconds()

	dbStatus := "healthy"
	if err != nil {
		dbStatus = "unhealthy"
	}

	var activeConns int
	ms.db.QueryRow(ctx, "SELECT count(*) FROM pg_stat_activity").Scan(&activeConns)

	var dbSizeBytes int64
	ms.db.QueryRow(ctx, "SELECT pg_database_size(current_database())").Scan(&dbSizeBytes)
	dbSize := fmt.Sprintf("%.2f GB", float64(dbSizeBytes)/(1024*1024*1024))

	var uptimeSec int
	ms.db.QueryRow(ctx, "SELECT EXTRACT(EPOCH FROM (NOW() - pg_postmaster_start_time()))::int").Scan(&uptimeSec)
	uptime := formatUptime(uptimeSec)

	cpuPercents, _ := cpu.Percent(time.Second, false)
	cpuPercent := 0.0
	if len(cpuPercents) > 0 {
		cpuPercent = cpuPercents[0]
	}

	memStats, _ := mem.VirtualMemory()
	diskStats, _ := disk.Usage("/")

	machineCounts, _ := ms.machines.CountByStatus(ctx)
	offline := machineCounts[models.MachineOffline] + machineCounts[models.MachineError]

	lowStock, _ := ms.items.CountLowStock(ctx)

	ms.alertsMux.RLock()
	activeAlertCount := 0
	for _, alert := range ms.alerts {
		if !alert.Resolved {
			activeAlertCount++
		}
	}
	ms.alertsMux.RUnlock()

	return DashboardStats{
		DatabaseStatus:    dbStatus,
		ActiveConnections: activeConns,
		ResponseTime:      responseTime,
		ActiveAlerts:      activeAlertCount,
		CPUPercent:        cpuPercent,
		MemoryPercent:     memStats.UsedPercent,
		DiskPercent:       diskStats.UsedPercent,
		DBSize:            dbSize,
		Uptime:            uptime,
		MemoryUsed:        formatBytes(memStats.Used),
		MemoryTotal:       formatBytes(memStats.Total),
		DiskUsed:          formatBytes(diskStats.Used),
		DiskTotal:         formatBytes(diskStats.Total),
		MachinesByStatus:  machineCounts,
		MachinesOffline:   offline,
		LowStockItems:     lowStock,
	}
}

func formatBytes(bytes uint64) string {
	gb := float64(bytes) / (1024 * 1024 * 1024)
	if gb < 1 {
		mb := float64(bytes) / (1024 * 1024)
		return fmt.Sprintf("%.1f MB", mb)
	}
	return fmt.Sprintf("%.1f GB", gb)
}

func formatUptime(seconds int) string {
	days := seconds / 86400
	hours := (seconds % 86400) / 3600
	minutes := (seconds % 3600) / 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

func (ms *MonitoringServer) getAlerts(w http.ResponseWriter, r *http.Request) {
	ms.alertsMux.RLock()
	defer ms.alertsMux.RUnlock()

	utils.JSON(w, http.StatusOK, ms.alerts)
}

func (ms *MonitoringServer) createTestAlert(w http.ResponseWriter, r *http.Request) {
	var alert Alert
	if err := json.NewDecoder(r.Body).Decode(&alert); err != nil {
		utils.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	ms.raise(alert)

	utils.JSON(w, http.StatusOK, alert)
}

func (ms *MonitoringServer) raise(alert Alert) {
	alert.Timestamp = time.Now()

	ms.alertsMux.Lock()
	alert.ID = len(ms.alerts) + 1
	ms.alerts = append(ms.alerts, alert)
	ms.alertsMux.Unlock()

	ms.broadcast <- alert
}

// raiseOnce dedupes by key so a condition that stays true across sweeps
// produces a single alert until it clears
func (ms *MonitoringServer) raiseOnce(key string, alert Alert) {
	ms.alertsMux.Lock()
	if ms.seen[key] {
		ms.alertsMux.Unlock()
		return
	}
	ms.seen[key] = true
	ms.alertsMux.Unlock()

	ms.raise(alert)
}

func (ms *MonitoringServer) clearCondition(key string) {
	ms.alertsMux.Lock()
	delete(ms.seen, key)
	ms.alertsMux.Unlock()
}

func (ms *MonitoringServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[Monitoring] WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	ms.clientsMux.Lock()
	ms.clients[conn] = true
	ms.clientsMux.Unlock()

	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			ms.clientsMux.Lock()
			delete(ms.clients, conn)
			ms.clientsMux.Unlock()
			break
		}
	}
}

func (ms *MonitoringServer) handleBroadcast() {
	for alert := range ms.broadcast {
		ms.clientsMux.Lock()
		for client := range ms.clients {
			err := client.WriteJSON(alert)
			if err != nil {
				client.Close()
				delete(ms.clients, client)
			}
		}
		ms.clientsMux.Unlock()
	}
}

// monitorHealth sweeps every 30 seconds for database trouble, machines that
// dropped offline and prizes running low
func (ms *MonitoringServer) monitorHealth() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)

		start := time.Now()
		err := ms.db.Ping(ctx)
		responseTime := time.Since(start).Milliseconds()

		if err != nil {
			ms.raiseOnce("database_down", Alert{
				Severity: "critical",
				Type:     "database_down",
				Message:  "Database is unreachable",
			})
			cancel()
			continue
		}
		ms.clearCondition("database_down")

		if responseTime > 1000 {
			ms.raise(Alert{
				Severity: "warning",
				Type:     "high_latency",
				Message:  fmt.Sprintf("Database response time: %dms", responseTime),
			})
		}

		ms.sweepFleet(ctx)
		ms.sweepStock(ctx)
		cancel()
	}
}

func (ms *MonitoringServer) sweepFleet(ctx context.Context) {
	machines, err := ms.machines.List(ctx, false)
	if err != nil {
		return
	}

	for i := range machines {
		m := &machines[i]
		key := "machine_down:" + m.ID

		switch m.Status {
		case models.MachineOffline, models.MachineError:
			ms.raiseOnce(key, Alert{
				Severity: "warning",
				Type:     "machine_down",
				Message:  fmt.Sprintf("Machine %s (%s) is %s", m.Name, m.AssetTag, m.Status),
			})
		default:
			ms.clearCondition(key)
		}
	}
}

func (ms *MonitoringServer) sweepStock(ctx context.Context) {
	count, err := ms.items.CountLowStock(ctx)
	if err != nil {
		return
	}

	if count == 0 {
		ms.clearCondition("low_stock")
		return
	}
	ms.raiseOnce("low_stock", Alert{
		Severity: "warning",
		Type:     "low_stock",
		Message:  fmt.Sprintf("%d stock items at or below their reorder threshold", count),
	})
}
