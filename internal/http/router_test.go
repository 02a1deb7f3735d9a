package http

import (
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"arcade-backend/internal/handlers"
	"arcade-backend/internal/middleware"
)

func testRouter() *mux.Router {
	return NewRouter(
		handlers.NewAuthHandler(nil, nil),
		handlers.NewUserHandler(nil),
		handlers.NewTOTPHandler(nil, nil),
		handlers.NewStockItemHandler(nil),
		handlers.NewMachineHandler(nil),
		handlers.NewMaintenanceHandler(nil),
		handlers.NewReorderHandler(nil),
		handlers.NewAuditLogHandler(nil),
		handlers.NewSystemSettingHandler(nil),
		handlers.NewSnapshotHandler(nil),
		handlers.NewAnalyticsHandler(nil),
		handlers.NewReportHandler(nil, nil),
		handlers.NewHealthHandler(nil),
		middleware.NewAuthMiddleware(nil, nil),
	)
}

func routed(t *testing.T, r *mux.Router, method, path string) bool {
	t.Helper()
	var match mux.RouteMatch
	return r.Match(httptest.NewRequest(method, path, nil), &match) && match.MatchErr == nil
}

func TestRouterCoreRoutes(t *testing.T) {
	r := testRouter()

	assert.True(t, routed(t, r, "GET", "/health"))
	assert.True(t, routed(t, r, "POST", "/auth/login"))
	assert.True(t, routed(t, r, "GET", "/api/inventory"))
	assert.True(t, routed(t, r, "POST", "/api/machines/relink"))
	assert.True(t, routed(t, r, "GET", "/api/users/2fa-audit"))
	assert.True(t, routed(t, r, "GET", "/api/audit/StockItem/item-1"))
}

func TestRouterSnapshotDiffBeforeID(t *testing.T) {
	r := testRouter()

	// /diff must not be swallowed by the /{id} route
	req := httptest.NewRequest("GET", "/api/snapshots/diff?entity_type=stockItem&entity_id=i1&from=1&to=2", nil)
	var match mux.RouteMatch
	assert.True(t, r.Match(req, &match))
	assert.NotContains(t, match.Vars, "id")
}

func TestRouterUnknownPath(t *testing.T) {
	r := testRouter()
	assert.False(t, routed(t, r, "GET", "/api/nonsense"))
}
