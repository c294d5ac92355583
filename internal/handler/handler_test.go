package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matthewbaird/sughar/internal/auth"
	"github.com/matthewbaird/sughar/internal/dashboard"
	"github.com/matthewbaird/sughar/internal/docstore"
)

type fakeSource struct {
	err   error
	calls atomic.Int32
	owner atomic.Value
}

func (f *fakeSource) BuildDashboardStats(_ context.Context, ownerID string) (dashboard.StatsPayload, error) {
	f.calls.Add(1)
	f.owner.Store(ownerID)
	if f.err != nil {
		return dashboard.StatsPayload{}, f.err
	}
	return dashboard.StatsPayload{
		Properties: dashboard.PropertyStats{Total: 2, Addresses: []string{"1 Main St", "Lakeside"}},
	}, nil
}

func (f *fakeSource) BuildFinancialStats(_ context.Context, ownerID string) (dashboard.FinancialPayload, error) {
	f.owner.Store(ownerID)
	if f.err != nil {
		return dashboard.FinancialPayload{}, f.err
	}
	return dashboard.FinancialPayload{
		RevenueThisMonth: dashboard.Money{Decimal: decimal.RequireFromString("1250.5")},
	}, nil
}

func withOwner(owner string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r.WithContext(auth.WithOwner(r.Context(), owner)))
	})
}

func TestHandleStats(t *testing.T) {
	src := &fakeSource{}
	h := NewDashboardHandler(src)

	rec := httptest.NewRecorder()
	withOwner("o1", http.HandlerFunc(h.HandleStats)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"addresses":["1 Main St","Lakeside"]`)
	assert.Equal(t, "o1", src.owner.Load())
}

func TestHandleFinancialStats(t *testing.T) {
	h := NewDashboardHandler(&fakeSource{})

	rec := httptest.NewRecorder()
	withOwner("o1", http.HandlerFunc(h.HandleFinancialStats)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/financial-stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"revenueThisMonth":1250.5,"incomingRent":0,"overdueRent":0,"serviceCosts":0,"utilitiesCosts":0}`, rec.Body.String())
}

func TestHandleStats_NoOwner(t *testing.T) {
	h := NewDashboardHandler(&fakeSource{})
	rec := httptest.NewRecorder()
	h.HandleStats(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandleStats_StoreFailureIsOpaque(t *testing.T) {
	h := NewDashboardHandler(&fakeSource{err: fmt.Errorf("loading units: %w", errors.New("dial tcp 10.0.0.3:27017: refused"))})

	rec := httptest.NewRecorder()
	withOwner("o1", http.HandlerFunc(h.HandleFinancialStats)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error","code":"INTERNAL_ERROR"}`, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "10.0.0.3")
}

func TestStoreErrorToHTTP_NotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	storeErrorToHTTP(rec, fmt.Errorf("user o1: %w", docstore.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func dialLive(t *testing.T, h http.Handler) (*websocket.Conn, context.Context) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })
	return conn, ctx
}

func TestLiveHandler_PushesAndRepeats(t *testing.T) {
	src := &fakeSource{}
	conn, ctx := dialLive(t, withOwner("o1", NewLiveHandler(src, 20*time.Millisecond)))

	var types []string
	for i := 0; i < 4; i++ {
		var msg struct {
			Type string         `json:"type"`
			Data map[string]any `json:"data"`
		}
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		require.NotNil(t, msg.Data)
		types = append(types, msg.Type)
	}
	assert.Equal(t, []string{"stats", "financial", "stats", "financial"}, types)
	assert.GreaterOrEqual(t, src.calls.Load(), int32(2))
	conn.Close(websocket.StatusNormalClosure, "")
}

func TestLiveHandler_ReportsFailureInBand(t *testing.T) {
	src := &fakeSource{err: errors.New("store down")}
	conn, ctx := dialLive(t, withOwner("o1", NewLiveHandler(src, time.Hour)))

	var msg LiveMessage
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	assert.Equal(t, "error", msg.Type)
	assert.Equal(t, map[string]any{"code": "INTERNAL_ERROR", "error": "internal server error"}, msg.Data)
}

func TestLiveHandler_RequiresOwner(t *testing.T) {
	rec := httptest.NewRecorder()
	NewLiveHandler(&fakeSource{}, time.Second).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
