package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/talgya/citycore/internal/engine"
)

func newTestServer() *Server {
	c := engine.NewCity(7, "testburg", 50000)
	sched := engine.NewScheduler()
	return &Server{
		City:      c,
		Scheduler: sched,
		AdminKey:  "secret",
	}
}

func TestHandleStatusIsPublic(t *testing.T) {
	s := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
	w := httptest.NewRecorder()

	s.handleStatus(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["city_name"] != "testburg" {
		t.Errorf("city_name = %v, want testburg", body["city_name"])
	}
}

func TestHandleActionRejectsWithoutAdminKey(t *testing.T) {
	s := newTestServer()
	handler := s.adminOnly(s.handleAction)

	body, _ := json.Marshal(map[string]any{"kind": "set_paused", "paused": true})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/action", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestHandleActionAcceptsWithAdminKey(t *testing.T) {
	s := newTestServer()
	handler := s.adminOnly(s.handleAction)

	body, _ := json.Marshal(map[string]any{"kind": "set_paused", "paused": true})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/action", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202, body=%s", w.Code, w.Body.String())
	}
	if s.City.Queue.Len() != 1 {
		t.Errorf("Queue.Len() = %d, want 1", s.City.Queue.Len())
	}
}

func TestHandleActionRejectsUnknownKind(t *testing.T) {
	s := newTestServer()
	handler := s.adminOnly(s.handleAction)

	body, _ := json.Marshal(map[string]any{"kind": "teleport"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/action", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandleSpeedGetAndSet(t *testing.T) {
	s := newTestServer()
	handler := s.adminOnly(s.handleSpeed)

	getReq := httptest.NewRequest(http.MethodGet, "/api/v1/speed", nil)
	getW := httptest.NewRecorder()
	handler(getW, getReq)
	if getW.Code != http.StatusOK {
		t.Fatalf("GET status = %d, want 200", getW.Code)
	}

	body, _ := json.Marshal(map[string]float64{"speed": 3})
	postReq := httptest.NewRequest(http.MethodPost, "/api/v1/speed", bytes.NewReader(body))
	postReq.Header.Set("Authorization", "Bearer secret")
	postW := httptest.NewRecorder()
	handler(postW, postReq)

	if postW.Code != http.StatusOK {
		t.Fatalf("POST status = %d, want 200", postW.Code)
	}
	if s.Scheduler.Speed != 3 {
		t.Errorf("Scheduler.Speed = %v, want 3", s.Scheduler.Speed)
	}
}

func TestHandleEventsReturnsRecent(t *testing.T) {
	s := newTestServer()
	s.City.Events.Emit(engine.Event{Tick: 1, Category: "zoning", Description: "zoned a block"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/events", nil)
	w := httptest.NewRecorder()
	s.handleEvents(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var events []engine.Event
	if err := json.Unmarshal(w.Body.Bytes(), &events); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(events) != 1 || events[0].Description != "zoned a block" {
		t.Errorf("events = %+v, want one zoning event", events)
	}
}

func TestHandleAdviseUnavailableWithoutOracle(t *testing.T) {
	s := newTestServer()
	handler := s.adminOnly(s.handleAdvise)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/advise", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestHandleSaveWithoutPathFails(t *testing.T) {
	s := newTestServer()
	handler := s.adminOnly(s.handleSave)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/save", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestHandleSaveWritesFile(t *testing.T) {
	s := newTestServer()
	s.SavePath = t.TempDir() + "/city.sav"
	handler := s.adminOnly(s.handleSave)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/save", nil)
	req.Header.Set("Authorization", "Bearer secret")
	w := httptest.NewRecorder()

	handler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body=%s", w.Code, w.Body.String())
	}
}
