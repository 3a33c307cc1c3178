package spatial

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

func newTestServer(t *testing.T) (*Session, *Simulator, *chi.Mux) {
	t.Helper()
	sim := NewSimulator()
	s := NewSession(SessionConfig{}, sim, &recordSink{}, testLogger())
	if err := s.Enable(); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	h := NewHandler(s, sim, testLogger())
	r := chi.NewRouter()
	r.Group(h.Routes)
	return s, sim, r
}

func TestHandler_simulatorDrivesControllers(t *testing.T) {
	s, _, r := newTestServer(t)

	frame := []SourceEntry{{ID: 7, Snapshot: controllerSnapshot(HandRight)}}
	body, _ := json.Marshal(frame)

	req := httptest.NewRequest(http.MethodPost, "/simulator/frame", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("push frame: status = %d, want 202", rec.Code)
	}

	s.Tick(time.Now())

	req = httptest.NewRequest(http.MethodGet, "/controllers", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list controllers: status = %d", rec.Code)
	}
	var list []ControllerStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].Source != 7 || list[0].Tracking != TrackingTracked {
		t.Errorf("controllers = %+v", list)
	}

	req = httptest.NewRequest(http.MethodGet, "/controllers/7", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("get controller: status = %d", rec.Code)
	}

	// Clearing the frame makes enumeration unavailable: the controller must
	// survive the next tick untouched.
	req = httptest.NewRequest(http.MethodDelete, "/simulator/frame", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("clear frame: status = %d", rec.Code)
	}
	s.Tick(time.Now())
	if got := len(s.Controllers()); got != 1 {
		t.Errorf("controllers after unavailable tick = %d, want 1", got)
	}
}

func TestHandler_getController_errors(t *testing.T) {
	_, _, r := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/controllers/99", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/controllers/banana", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", rec.Code)
	}
}

func TestHandler_gestureSettings(t *testing.T) {
	s, _, r := newTestServer(t)

	body := []byte(`{"start_behaviour":"manual","manipulation":["translate"],"use_rails_navigation":true,"rails_navigation":["x"]}`)
	req := httptest.NewRequest(http.MethodPut, "/gestures/settings", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("put settings: status = %d, body = %s", rec.Code, rec.Body.String())
	}

	settings := s.GestureSettings()
	if settings.StartBehaviour != GestureStartManual || !settings.UseRailsNavigation {
		t.Errorf("settings = %+v", settings)
	}

	req = httptest.NewRequest(http.MethodGet, "/gestures/settings", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get settings: status = %d", rec.Code)
	}
	var got GestureSettings
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode settings: %v", err)
	}
	if got != settings {
		t.Errorf("round trip = %+v, want %+v", got, settings)
	}
}

func TestHandler_gestureSettings_badRequests(t *testing.T) {
	_, _, r := newTestServer(t)

	for name, body := range map[string]string{
		"not_json":      "not json",
		"unknown_flag":  `{"manipulation":["spin"]}`,
		"bad_behaviour": `{"start_behaviour":"eventually"}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPut, "/gestures/settings", bytes.NewReader([]byte(body)))
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestHandler_gestureSettings_conflictWhenDisabled(t *testing.T) {
	s, _, r := newTestServer(t)
	s.Disable()

	req := httptest.NewRequest(http.MethodPut, "/gestures/settings", bytes.NewReader([]byte(`{}`)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestHandler_simulatorEndpointsWithoutSimulator(t *testing.T) {
	enum := &scriptedEnumerator{results: []enumResult{{}}}
	s := NewSession(SessionConfig{}, enum, &recordSink{}, testLogger())
	h := NewHandler(s, nil, testLogger())
	r := chi.NewRouter()
	r.Group(h.Routes)

	req := httptest.NewRequest(http.MethodPost, "/simulator/frame", bytes.NewReader([]byte(`[]`)))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("push: status = %d, want 409", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/simulator/frame", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("clear: status = %d, want 409", rec.Code)
	}
}
