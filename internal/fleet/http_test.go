package fleet

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fleetnova/fleetnova/internal/common/auth"
	"github.com/fleetnova/fleetnova/internal/common/config"
	"github.com/fleetnova/fleetnova/internal/common/server"
	"github.com/gin-gonic/gin"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		Enabled:     true,
		JWTSecret:   "test-secret",
		Issuer:      "fleetnova",
		Audience:    "fleetnova",
		TokenTTLMin: 30,
		PublicPaths: []string{"/health"},
	}
}

func newTestRouter(t *testing.T, store Store) (*gin.Engine, config.AuthConfig) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	authCfg := testAuthConfig()

	h := NewHandlers(
		NewRegistryService(store),
		newTestTripService(store),
		newTestMaintenanceService(store),
		NewStatsService(store),
		authCfg,
		nil,
	)

	r := gin.New()
	r.Use(server.JWTAuth(authCfg, nil))
	h.Register(r)
	return r, authCfg
}

func bearerFor(t *testing.T, cfg config.AuthConfig, roles ...string) string {
	t.Helper()
	token, _, err := auth.GenerateAccessToken(cfg, "test-user", roles, 30*time.Minute)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	return "Bearer " + token
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestVehicleRoutesStatusMapping(t *testing.T) {
	store := NewMemStore()
	r, cfg := newTestRouter(t, store)
	admin := bearerFor(t, cfg, "Admin")

	body := map[string]any{
		"name": "Atlas 01", "plate": "FLT-9001",
		"vehicle_type": "Truck", "capacity": 9000,
	}
	w := doJSON(r, http.MethodPost, "/vehicles", admin, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", w.Code, w.Body.String())
	}
	var created Vehicle
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// duplicate plate -> 409
	w = doJSON(r, http.MethodPost, "/vehicles", admin, body)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", w.Code)
	}

	// unknown id -> 404
	w = doJSON(r, http.MethodGet, "/vehicles/nope", admin, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get missing status = %d, want 404", w.Code)
	}

	// partial update -> 200
	w = doJSON(r, http.MethodPatch, "/vehicles/"+created.ID, admin, map[string]any{"odometer": 50000})
	if w.Code != http.StatusOK {
		t.Errorf("patch status = %d, body %s", w.Code, w.Body.String())
	}

	// delete -> 204, second delete -> 404
	w = doJSON(r, http.MethodDelete, "/vehicles/"+created.ID, admin, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", w.Code)
	}
	w = doJSON(r, http.MethodDelete, "/vehicles/"+created.ID, admin, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestRoleGates(t *testing.T) {
	store := NewMemStore()
	r, cfg := newTestRouter(t, store)
	driver := bearerFor(t, cfg, "Driver")

	body := map[string]any{
		"name": "Atlas 02", "plate": "FLT-9002",
		"vehicle_type": "Truck", "capacity": 9000,
	}

	// no token -> 401
	w := doJSON(r, http.MethodPost, "/vehicles", "", body)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("no token status = %d, want 401", w.Code)
	}

	// wrong role -> 403
	w = doJSON(r, http.MethodPost, "/vehicles", driver, body)
	if w.Code != http.StatusForbidden {
		t.Errorf("driver create status = %d, want 403", w.Code)
	}

	// reads are open to any authenticated caller
	w = doJSON(r, http.MethodGet, "/vehicles", driver, nil)
	if w.Code != http.StatusOK {
		t.Errorf("driver list status = %d, want 200", w.Code)
	}

	// dispatcher can create trips but not vehicles
	dispatcher := bearerFor(t, cfg, "Dispatcher")
	w = doJSON(r, http.MethodPost, "/vehicles", dispatcher, body)
	if w.Code != http.StatusForbidden {
		t.Errorf("dispatcher create vehicle status = %d, want 403", w.Code)
	}
}

func TestTripRoutesLifecycle(t *testing.T) {
	store := NewMemStore()
	r, cfg := newTestRouter(t, store)
	dispatcher := bearerFor(t, cfg, "Dispatcher")
	driver := bearerFor(t, cfg, "Driver")

	v := seedVehicle(t, store, VehicleAvailable, 1000)
	d := seedDriver(t, store, DriverOnDuty, validExpiry())

	w := doJSON(r, http.MethodPost, "/trips", dispatcher, map[string]any{
		"vehicle_id": v.ID, "driver_id": d.ID, "cargo_weight": 800,
		"origin": "Hamburg", "destination": "Munich",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("dispatch status = %d, body %s", w.Code, w.Body.String())
	}
	var trip Trip
	if err := json.Unmarshal(w.Body.Bytes(), &trip); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// double dispatch on the same vehicle -> 400 with the busy message
	d2 := seedDriver(t, store, DriverOnDuty, validExpiry())
	w = doJSON(r, http.MethodPost, "/trips", dispatcher, map[string]any{
		"vehicle_id": v.ID, "driver_id": d2.ID, "cargo_weight": 100,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("double dispatch status = %d, want 400", w.Code)
	}
	var errBody struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &errBody)
	if errBody.Error != "Vehicle is currently On Trip" {
		t.Errorf("error = %q", errBody.Error)
	}

	// completion is open to any authenticated caller
	w = doJSON(r, http.MethodPatch, "/trips/"+trip.ID+"/complete", driver, map[string]any{
		"final_odometer": 10850,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("complete status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodPatch, "/trips/"+trip.ID+"/complete", driver, map[string]any{
		"final_odometer": 10900,
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("second complete status = %d, want 400", w.Code)
	}

	// drivers cannot delete trips
	w = doJSON(r, http.MethodDelete, "/trips/"+trip.ID, driver, nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("driver delete status = %d, want 403", w.Code)
	}
	w = doJSON(r, http.MethodDelete, "/trips/"+trip.ID, dispatcher, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want 204", w.Code)
	}
}

func TestStatsRoutes(t *testing.T) {
	store := NewMemStore()
	r, cfg := newTestRouter(t, store)
	analyst := bearerFor(t, cfg, "Analyst")

	seedVehicle(t, store, VehicleOnTrip, 1000)
	seedVehicle(t, store, VehicleAvailable, 1000)

	w := doJSON(r, http.MethodGet, "/stats/dashboard-kpis", analyst, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("kpis status = %d, body %s", w.Code, w.Body.String())
	}
	var kpis DashboardKPIs
	if err := json.Unmarshal(w.Body.Bytes(), &kpis); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if kpis.TotalVehicles != 2 || kpis.UtilizationRate != 50 {
		t.Errorf("kpis = %+v", kpis)
	}

	w = doJSON(r, http.MethodGet, "/stats/analytics-data", analyst, nil)
	if w.Code != http.StatusOK {
		t.Errorf("analytics status = %d", w.Code)
	}
}

func TestDriverDateParsing(t *testing.T) {
	store := NewMemStore()
	r, cfg := newTestRouter(t, store)
	manager := bearerFor(t, cfg, "Manager")

	w := doJSON(r, http.MethodPost, "/drivers", manager, map[string]any{
		"name": "Marta Keller", "license_number": "DL-9001",
		"license_expiry": "2027-03-01",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create driver status = %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(r, http.MethodPost, "/drivers", manager, map[string]any{
		"name": "Bad Date", "license_number": "DL-9002",
		"license_expiry": "01/03/2027",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad date status = %d, want 400", w.Code)
	}
}
