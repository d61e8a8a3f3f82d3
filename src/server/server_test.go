package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gridwatch/src/logger"
	"gridwatch/src/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeStore struct {
	points map[models.ZoneCode][]models.MPricePoint
	alerts []models.MAlert
	err    error
	limit  int
	from   time.Time
}

func (f *fakeStore) Initialize() error { return nil }
func (f *fakeStore) SavePrices(models.ZoneCode, []models.MPricePoint) (int, error) {
	return 0, nil
}
func (f *fakeStore) LogAlert(models.ZoneCode, string, models.AlertLevel) (models.MAlert, error) {
	return models.MAlert{}, nil
}
func (f *fakeStore) GetPrices(zone models.ZoneCode, from, _ time.Time) ([]models.MPricePoint, error) {
	f.from = from
	return f.points[zone], f.err
}
func (f *fakeStore) CountPrices(models.ZoneCode) (int, error) { return 0, nil }
func (f *fakeStore) RecentAlerts(limit int) ([]models.MAlert, error) {
	f.limit = limit
	return f.alerts, f.err
}
func (f *fakeStore) CleanupOldData() error { return nil }
func (f *fakeStore) Close() error          { return nil }

func newTestServer(store *fakeStore) *FastAPIServer {
	cfg := &models.MConfig{
		Host: "127.0.0.1",
		Port: 8000,
		DataSource: models.MDataSourceConfig{
			Zones:                 []string{"SE3", "SE4"},
			UpdateIntervalSeconds: 3600,
		},
		Analysis: models.MAnalysisConfig{PriceThreshold: 100, CheapestHours: 2, ZScoreLimit: 2.5},
		Entsoe:   models.MEntsoeConfig{SecurityToken: "secret"},
	}
	return NewFastAPIServer(cfg, store, logger.NewLoggerWithOutput(nil, "server", io.Discard))
}

func sampleReport() models.MRunReport {
	return models.MRunReport{
		RunID:      "run-7",
		FinishedAt: day.Add(time.Hour),
		Window:     day,
		ZonePrices: map[models.ZoneCode]float64{models.ZoneSE3: 42.5, models.ZoneSE4: 50},
		Zones: map[models.ZoneCode]models.MZoneReport{
			models.ZoneSE3: {Zone: models.ZoneSE3, Points: 24, Price: 42.5},
			models.ZoneSE4: {Zone: models.ZoneSE4, Points: 24, Price: 50},
		},
	}
}

func get(t *testing.T, s *FastAPIServer, path string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return rec.Code, body
}

func TestHealthAndPrices(t *testing.T) {
	s := newTestServer(&fakeStore{})

	code, body := get(t, s, "/api/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 0, body["latest_update"])

	s.UpdateAllDatas(sampleReport())

	code, body = get(t, s, "/api/prices")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "run-7", body["run_id"])
	assert.Equal(t, map[string]any{"SE3": 42.5, "SE4": 50.0}, body["zone_prices"])
}

func TestConfigHidesToken(t *testing.T) {
	s := newTestServer(&fakeStore{})

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.Contains(t, rec.Body.String(), `"cheapest_hours":2`)
}

func TestZonePrices(t *testing.T) {
	store := &fakeStore{points: map[models.ZoneCode][]models.MPricePoint{
		models.ZoneSE3: {
			{Zone: models.ZoneSE3, Timestamp: day, Value: 30},
			{Zone: models.ZoneSE3, Timestamp: day.Add(time.Hour), Value: 10},
			{Zone: models.ZoneSE3, Timestamp: day.Add(2 * time.Hour), Value: 20},
		},
	}}
	s := newTestServer(store)

	code, body := get(t, s, "/api/zones/se3/prices?date=2024-01-01")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "SE3", body["zone"])
	assert.Len(t, body["points"], 3)
	assert.True(t, store.from.Equal(day))

	code, body = get(t, s, "/api/zones/SE3/cheapest?n=2&date=2024-01-01")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{
		map[string]any{"time": "01:00", "price": 10.0},
		map[string]any{"time": "02:00", "price": 20.0},
	}, body["cheapest"])
}

func TestZonePrices_DefaultsToLatestWindow(t *testing.T) {
	store := &fakeStore{}
	s := newTestServer(store)
	s.UpdateAllDatas(sampleReport())

	code, body := get(t, s, "/api/zones/SE4/cheapest")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{}, body["cheapest"])
	assert.True(t, store.from.Equal(day))
}

func TestZonePrices_BadRequests(t *testing.T) {
	s := newTestServer(&fakeStore{})

	for _, path := range []string{
		"/api/zones/XX1/prices",
		"/api/zones/SE3/prices?date=01-01-2024",
		"/api/zones/SE3/cheapest?n=0",
		"/api/zones/SE3/cheapest?n=abc",
		"/api/alerts?limit=-1",
	} {
		code, body := get(t, s, path)
		assert.Equal(t, http.StatusBadRequest, code, path)
		assert.NotEmpty(t, body["error"], path)
	}
}

func TestAlerts(t *testing.T) {
	store := &fakeStore{alerts: []models.MAlert{{ID: 2, Zone: models.ZoneSE3, Message: "High price alert in SE3: 120.00 €/MWh", Level: models.AlertHighPrice}}}
	s := newTestServer(store)

	code, body := get(t, s, "/api/alerts?limit=1000")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["alerts"], 1)
	assert.Equal(t, maxAlertLimit, store.limit)

	store.err = errors.New("boom")
	code, _ = get(t, s, "/api/alerts")
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, defaultAlertLimit, store.limit)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(&fakeStore{})

	req := httptest.NewRequest(http.MethodOptions, "/api/prices", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}

func readState(t *testing.T, conn *websocket.Conn) models.MLatestData {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg models.MLatestData
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocket_SnapshotBroadcastSubscribe(t *testing.T) {
	s := newTestServer(&fakeStore{})
	s.UpdateAllDatas(sampleReport())
	s.startHub()
	t.Cleanup(func() { s.Stop() })

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	initial := readState(t, conn)
	assert.Equal(t, "INITIAL", initial.Type)
	assert.Len(t, initial.ZonePrices, 2)

	require.NoError(t, conn.WriteJSON(models.MSubscribeCommand{Command: "subscribe", Zones: []string{"SE-SE3"}}))
	filtered := readState(t, conn)
	assert.Equal(t, map[models.ZoneCode]float64{models.ZoneSE3: 42.5}, filtered.ZonePrices)

	next := sampleReport()
	next.RunID = "run-8"
	s.Broadcast(next)

	update := readState(t, conn)
	assert.Equal(t, "UPDATE", update.Type)
	assert.Equal(t, "run-8", update.RunID)
	assert.Len(t, update.Zones, 1)

	code, body := get(t, s, "/api/health")
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, body["connections"])
}
