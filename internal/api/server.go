package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/citycore/internal/actions"
	"github.com/talgya/citycore/internal/agentoracle"
	"github.com/talgya/citycore/internal/engine"
	"github.com/talgya/citycore/internal/observation"
	"github.com/talgya/citycore/internal/save"
	"github.com/talgya/citycore/internal/telemetry"
	"github.com/talgya/citycore/internal/zones"
)

const maxStreamConns = 8

// Server serves a running City over HTTP and websocket. GET endpoints are
// public read-only observation; POST endpoints mutate the city through
// City.Queue and require a bearer token.
type Server struct {
	City      *engine.City
	Scheduler *engine.Scheduler
	Oracle    *agentoracle.Client
	Telemetry *telemetry.Store
	Registry  *save.Registry // unused placeholder kept nil unless caller wires one
	SavePath  string

	Port     int
	AdminKey string // bearer token for POST endpoints; empty disables them
	RelayKey string // bearer token for the websocket stream; empty disables it

	streamConns int32
}

// Start begins serving the HTTP API in a background goroutine.
func (s *Server) Start() {
	adviseLimiter := NewRateLimiter(10, time.Hour)

	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/snapshot", s.handleSnapshotView)
	mux.HandleFunc("/api/v1/events", s.handleEvents)
	mux.HandleFunc("/api/v1/stats/history", s.handleStatsHistory)
	mux.HandleFunc("/api/v1/stream", s.handleStream)

	mux.HandleFunc("/api/v1/action", s.adminOnly(s.handleAction))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))
	mux.HandleFunc("/api/v1/save", s.adminOnly(s.handleSave))
	mux.HandleFunc("/api/v1/advise", s.adminOnly(RateLimitMiddleware(adviseLimiter, s.handleAdvise)))

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("city API starting", "addr", addr, "admin_auth", s.AdminKey != "", "relay_auth", s.RelayKey != "")

	go func() {
		handler := corsMiddleware(mux)
		if err := http.ListenAndServe(addr, handler); err != nil {
			slog.Error("city API server error", "error", err)
		}
	}()
}

// corsMiddleware adds CORS headers for allowed frontend origins. Set
// CORS_ORIGINS to a comma-separated list to extend the localhost dev
// defaults.
func corsMiddleware(next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		for _, origin := range strings.Split(env, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins[origin] = true
			}
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly requires a bearer token on POST requests; GET passes through
// unauthenticated for handlers that serve both.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "admin endpoints disabled (no admin key configured)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) observationWorld() *observation.World {
	c := s.City
	return &observation.World{
		Grid: c.Grid, Net: c.Net, Store: c.Store, Budget: c.Budget, Policies: c.Policies,
		Weather: c.Weather, Climate: c.Climate, Chains: c.Chains, Power: c.Power, Water: c.Water,
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := observation.Build(s.observationWorld(), s.City.Tick)
	writeJSON(w, http.StatusOK, map[string]any{
		"city_name": s.City.CityName,
		"tick":      s.City.Tick,
		"sim_time":  engine.SimTime(s.City.Tick),
		"speed":     s.Scheduler.Speed,
		"running":   s.Scheduler.Running,
		"snapshot":  snap,
	})
}

func (s *Server) handleSnapshotView(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, observation.Build(s.observationWorld(), s.City.Tick))
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	n := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &n)
	}
	writeJSON(w, http.StatusOK, s.City.Events.Recent(n))
}

func (s *Server) handleStatsHistory(w http.ResponseWriter, r *http.Request) {
	if s.Telemetry == nil {
		writeJSON(w, http.StatusOK, []telemetry.StatsRow{})
		return
	}
	limit := 30
	if v := r.URL.Query().Get("limit"); v != "" {
		fmt.Sscanf(v, "%d", &limit)
	}
	rows, err := s.Telemetry.StatsHistory(0, s.City.Tick, limit)
	if err != nil {
		http.Error(w, "stats history unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		writeJSON(w, http.StatusOK, map[string]float64{"speed": s.Scheduler.Speed})
		return
	}
	var req struct {
		Speed float64 `json:"speed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	s.Scheduler.SetSpeed(req.Speed)
	writeJSON(w, http.StatusOK, map[string]float64{"speed": s.Scheduler.Speed})
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	action, err := req.toGameAction()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	s.City.Queue.Push(s.City.Tick, actions.SourcePlayer, action)
	writeJSON(w, http.StatusAccepted, map[string]any{"queued": true, "tick": s.City.Tick})
}

// handleAdvise asks the configured oracle for one proposed action and
// queues it as agent-sourced, returning the proposal for display.
func (s *Server) handleAdvise(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.Oracle == nil || !s.Oracle.Enabled() {
		http.Error(w, "agent oracle not configured", http.StatusServiceUnavailable)
		return
	}

	snap := observation.Build(s.observationWorld(), s.City.Tick)
	ctx := agentoracle.CityContext{
		CityName:     s.City.CityName,
		Tick:         s.City.Tick,
		Treasury:     snap.Treasury,
		Population:   uint32(snap.Population),
		AvgHappiness: snap.AvgHappiness,
		PowerDeficit: snap.PowerDeficit,
		WaterDeficit: snap.WaterDeficit,
	}
	ctx.Demand.Residential = s.City.Demand.Live[zones.ClassResidential]
	ctx.Demand.Commercial = s.City.Demand.Live[zones.ClassCommercial]
	ctx.Demand.Industrial = s.City.Demand.Live[zones.ClassIndustrial]

	action, ok, err := agentoracle.Advise(s.Oracle, ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"queued": false})
		return
	}
	s.City.Queue.Push(s.City.Tick, actions.SourceAgent, action)
	writeJSON(w, http.StatusAccepted, map[string]any{"queued": true, "action": action})
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if s.SavePath == "" {
		http.Error(w, "no save path configured", http.StatusServiceUnavailable)
		return
	}
	d, err := s.City.ToSaveData()
	if err != nil {
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	if err := save.WriteFile(s.SavePath, d); err != nil {
		slog.Error("save failed", "error", err)
		http.Error(w, "save failed", http.StatusInternalServerError)
		return
	}
	info, _ := os.Stat(s.SavePath)
	var size int64
	if info != nil {
		size = info.Size()
	}
	writeJSON(w, http.StatusOK, map[string]any{"tick": s.City.Tick, "bytes": size})
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleStream upgrades to a websocket and relays each emitted Event as one
// JSON message, after a catch-up burst of up to 50 recent events on
// connect. Requires RelayKey.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.RelayKey == "" {
		http.Error(w, "streaming disabled (no relay key configured)", http.StatusForbidden)
		return
	}
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.RelayKey {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if atomic.AddInt32(&s.streamConns, 1) > maxStreamConns {
		atomic.AddInt32(&s.streamConns, -1)
		http.Error(w, "too many stream connections", http.StatusServiceUnavailable)
		return
	}
	defer atomic.AddInt32(&s.streamConns, -1)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	subID, ch := s.City.Events.Subscribe()
	defer s.City.Events.Unsubscribe(subID)

	for _, e := range s.City.Events.Recent(50) {
		if err := conn.WriteJSON(e); err != nil {
			return
		}
	}

	slog.Info("observation stream connected", "sub_id", subID)

	heartbeat := time.NewTicker(15 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case e, ok := <-ch:
			if !ok {
				return
			}
			if err := conn.WriteJSON(e); err != nil {
				return
			}
		case <-heartbeat.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
