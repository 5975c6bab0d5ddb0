package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/kestrelworks/hourglass/internal/config"
	"github.com/kestrelworks/hourglass/internal/presets"
	"github.com/kestrelworks/hourglass/internal/timekeeper"
)

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()
	lib, err := presets.NewLibrary()
	if err != nil {
		t.Fatalf("presets.NewLibrary: %v", err)
	}
	svc := timekeeper.NewService(timekeeper.NewMemoryRepository(), lib, slog.New(slog.NewTextHandler(io.Discard, nil)))
	advancer := timekeeper.NewAutoAdvancer(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if cfg == nil {
		cfg = &config.Config{Env: "test", Port: 0}
	}
	s := New(cfg, svc, advancer, lib.Names())
	s.RegisterRoutes()
	return s
}

// do runs a request through the full middleware and routing stack.
func do(s *Server, method, path, body string, header http.Header) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) timekeeper.Snapshot {
	t.Helper()
	var snap timekeeper.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("decode snapshot: %v (body: %s)", err, rec.Body.String())
	}
	return snap
}

func TestClockCRUDOverHTTP(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, http.MethodPost, "/api/v1/clocks",
		`{"name": "Waterdeep", "preset": "harptos", "start_year": 1492, "day": 30}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d, body %s", rec.Code, rec.Body.String())
	}
	snap := decodeSnapshot(t, rec)
	if snap.Extent != "Midwinter" || snap.Year != 1492 {
		t.Errorf("created clock = %+v", snap)
	}

	rec = do(s, http.MethodGet, "/api/v1/clocks/"+snap.ID, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d", rec.Code)
	}

	rec = do(s, http.MethodPost, "/api/v1/clocks/"+snap.ID+"/advance",
		`{"amount": 2, "unit": "hours"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("advance: status %d, body %s", rec.Code, rec.Body.String())
	}
	if got := decodeSnapshot(t, rec); got.Time != 7200 {
		t.Errorf("time after 2 hours = %d, want 7200", got.Time)
	}

	rec = do(s, http.MethodDelete, "/api/v1/clocks/"+snap.ID, "", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status %d", rec.Code)
	}
	rec = do(s, http.MethodGet, "/api/v1/clocks/"+snap.ID, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status %d, want 404", rec.Code)
	}
}

func TestValidationErrorsMapToHTTP(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, http.MethodPost, "/api/v1/clocks", `{"preset": "klingon"}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown preset: status %d, want 404", rec.Code)
	}

	rec = do(s, http.MethodPost, "/api/v1/clocks",
		`{"definition": {"name": "Bad", "months": [{"name": "M", "days": 0}]}}`, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("bad definition: status %d, want 422", rec.Code)
	}
}

func TestImportDefinitionEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	body := `{"calendar": {"name": "Exandrian", "months": [{"name": "Horisal", "numberOfDays": 29}], "leapYear": {"rule": "none"}}}`
	rec := do(s, http.MethodPost, "/api/v1/definitions/import", body, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("import: status %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Format     presets.ImportFormat `json:"format"`
		Definition presets.Definition   `json:"definition"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Format != presets.FormatSimpleCalendar || resp.Definition.Name != "Exandrian" {
		t.Errorf("import = %+v", resp)
	}
}

func TestConcurrentAutoAdvanceEnables(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, http.MethodPost, "/api/v1/clocks", `{"name": "Shared"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status %d", rec.Code)
	}
	id := decodeSnapshot(t, rec).ID

	// Racing enables must each replace the previous schedule, never
	// strand one.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := do(s, http.MethodPost, "/api/v1/clocks/"+id+"/autoadvance",
				`{"cron": "* * * * *", "game_seconds": 60}`, nil)
			if rec.Code != http.StatusOK {
				t.Errorf("enable: status %d, body %s", rec.Code, rec.Body.String())
			}
		}()
	}
	wg.Wait()

	s.handler.mu.Lock()
	n := len(s.handler.schedules)
	s.handler.mu.Unlock()
	if n != 1 {
		t.Fatalf("schedules registered = %d, want 1", n)
	}

	rec = do(s, http.MethodDelete, "/api/v1/clocks/"+id+"/autoadvance", "", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("disable: status %d", rec.Code)
	}
	rec = do(s, http.MethodDelete, "/api/v1/clocks/"+id+"/autoadvance", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("second disable: status %d, want 404", rec.Code)
	}
}

func TestPresetsEndpoint(t *testing.T) {
	s := newTestServer(t, nil)

	rec := do(s, http.MethodGet, "/api/v1/presets", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("presets: status %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "harptos") {
		t.Errorf("presets body missing harptos: %s", rec.Body.String())
	}
}

func TestAPIKeyAuth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("sekrit"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	s := newTestServer(t, &config.Config{Env: "test", APIKeyHash: string(hash)})

	rec := do(s, http.MethodGet, "/api/v1/clocks", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no key: status %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "api key required") {
		t.Errorf("no key: body %s, want the rejection reason", rec.Body.String())
	}

	rec = do(s, http.MethodGet, "/api/v1/clocks", "", http.Header{"Authorization": {"Bearer wrong"}})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: status %d, want 401", rec.Code)
	}

	rec = do(s, http.MethodGet, "/api/v1/clocks", "", http.Header{"Authorization": {"Bearer sekrit"}})
	if rec.Code != http.StatusOK {
		t.Errorf("valid key: status %d, want 200", rec.Code)
	}

	// Health stays open.
	rec = do(s, http.MethodGet, "/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health: status %d, want 200", rec.Code)
	}
}
