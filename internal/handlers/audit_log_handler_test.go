package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"arcade-backend/internal/models"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuditLogStore struct {
	gotEntityType string
	gotEntityID   string
	gotAction     string
	gotLimit      int
	logs          []models.AuditLog
}

func (f *fakeAuditLogStore) ListRecent(_ context.Context, limit int) ([]models.AuditLog, error) {
	f.gotLimit = limit
	return f.logs, nil
}

func (f *fakeAuditLogStore) ListByAction(_ context.Context, action string, limit int) ([]models.AuditLog, error) {
	f.gotAction = action
	f.gotLimit = limit
	return f.logs, nil
}

func (f *fakeAuditLogStore) ListByEntity(_ context.Context, entityType, entityID string, limit int) ([]models.AuditLog, error) {
	f.gotEntityType = entityType
	f.gotEntityID = entityID
	f.gotLimit = limit
	return f.logs, nil
}

func TestListByEntityPassesLimitThrough(t *testing.T) {
	store := &fakeAuditLogStore{logs: []models.AuditLog{{ID: "log-1", Action: "AUTO_PROMOTED"}}}
	h := &AuditLogHandler{Repo: store}

	req := httptest.NewRequest("GET", "/api/audit/StockItem/item-1?limit=25", nil)
	req = mux.SetURLVars(req, map[string]string{"entityType": "StockItem", "entityId": "item-1"})
	rec := httptest.NewRecorder()

	h.ListByEntity(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "StockItem", store.gotEntityType)
	assert.Equal(t, "item-1", store.gotEntityID)
	assert.Equal(t, 25, store.gotLimit)

	var logs []models.AuditLog
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "log-1", logs[0].ID)
}

func TestListByEntityDefaultsLimit(t *testing.T) {
	store := &fakeAuditLogStore{}
	h := &AuditLogHandler{Repo: store}

	req := httptest.NewRequest("GET", "/api/audit/StockItem/item-1", nil)
	req = mux.SetURLVars(req, map[string]string{"entityType": "StockItem", "entityId": "item-1"})
	rec := httptest.NewRecorder()

	h.ListByEntity(rec, req)

	// Zero means the repository applies its own default cap
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, store.gotLimit)
}

func TestListRecentFiltersByAction(t *testing.T) {
	store := &fakeAuditLogStore{}
	h := &AuditLogHandler{Repo: store}

	req := httptest.NewRequest("GET", "/api/audit?action=AUTO_PROMOTED&limit=10", nil)
	rec := httptest.NewRecorder()

	h.ListRecent(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AUTO_PROMOTED", store.gotAction)
	assert.Equal(t, 10, store.gotLimit)
}
