// Command cityagent polls a running citysim instance over HTTP, asks a
// configured agent oracle for one action proposal per cycle, and submits
// accepted proposals back through the admin action endpoint.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/citycore/internal/actions"
	"github.com/talgya/citycore/internal/agentoracle"
	"github.com/talgya/citycore/internal/worldgrid"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	apiURL := envOrDefault("CITYSIM_API_URL", "http://localhost")
	adminKey := os.Getenv("CITYSIM_ADMIN_KEY")
	oracleKey := os.Getenv("AGENT_ORACLE_API_KEY")
	intervalMin := envIntOrDefault("CITYAGENT_INTERVAL_MIN", 5)

	if adminKey == "" {
		slog.Error("CITYSIM_ADMIN_KEY is required")
		os.Exit(1)
	}
	if oracleKey == "" {
		slog.Error("AGENT_ORACLE_API_KEY is required")
		os.Exit(1)
	}

	oracle := agentoracle.NewClient(agentoracle.Config{
		Endpoint:  envOrDefault("AGENT_ORACLE_ENDPOINT", "https://api.openai.com/v1/chat/completions"),
		APIKey:    oracleKey,
		Model:     envOrDefault("AGENT_ORACLE_MODEL", "gpt-4o-mini"),
		MaxPerMin: 10,
	})

	interval := time.Duration(intervalMin) * time.Minute
	slog.Info("city agent starting", "api_url", apiURL, "interval", interval)

	client := &cityClient{base: apiURL, adminKey: adminKey, http: &http.Client{Timeout: 15 * time.Second}}

	runCycle(client, oracle)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			runCycle(client, oracle)
		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			fmt.Println("City agent stopped.")
			return
		}
	}
}

// runCycle runs one observe -> advise -> act pass against the live city.
func runCycle(client *cityClient, oracle *agentoracle.Client) {
	status, err := client.status()
	if err != nil {
		slog.Error("status fetch failed", "error", err)
		return
	}

	ctx := statusToContext(status)
	slog.Info("observation complete", "tick", ctx.Tick, "treasury", ctx.Treasury, "population", ctx.Population)

	action, ok, err := agentoracle.Advise(oracle, ctx)
	if err != nil {
		slog.Error("advisory failed", "error", err)
		return
	}
	if !ok {
		slog.Info("agent chose to wait this cycle")
		return
	}

	wire, err := actionToWire(action)
	if err != nil {
		slog.Error("action translation failed", "error", err)
		return
	}
	if err := client.submitAction(wire); err != nil {
		slog.Error("action submission failed", "error", err)
		return
	}
	slog.Info("action submitted", "kind", action.Kind)
}

// actionToWire renders a GameAction back into the flat, kind-discriminated
// JSON object the admin action endpoint expects, inverting the server's own
// actionRequest.toGameAction translation.
func actionToWire(a actions.GameAction) (map[string]any, error) {
	switch a.Kind {
	case actions.KindPlaceRoadLine:
		roadType, ok := roadTypeWireNames[a.RoadType]
		if !ok {
			return nil, fmt.Errorf("unknown road type %v", a.RoadType)
		}
		return map[string]any{
			"kind":      "place_road",
			"start":     [2]int{a.Start.X, a.Start.Y},
			"end":       [2]int{a.End.X, a.End.Y},
			"road_type": roadType,
		}, nil

	case actions.KindZoneRect:
		zoneType, ok := zoneTypeWireNames[a.ZoneType]
		if !ok {
			return nil, fmt.Errorf("unknown zone type %v", a.ZoneType)
		}
		return map[string]any{
			"kind":      "zone_rect",
			"min":       [2]int{a.Min.X, a.Min.Y},
			"max":       [2]int{a.Max.X, a.Max.Y},
			"zone_type": zoneType,
		}, nil

	case actions.KindPlaceUtility:
		utilityType, ok := utilityTypeWireNames[a.UtilityType]
		if !ok {
			return nil, fmt.Errorf("unknown utility type %v", a.UtilityType)
		}
		return map[string]any{
			"kind":         "place_utility",
			"pos":          [2]int{a.Pos.X, a.Pos.Y},
			"utility_type": utilityType,
		}, nil

	case actions.KindBulldoze:
		return map[string]any{"kind": "bulldoze", "pos": [2]int{a.Pos.X, a.Pos.Y}}, nil

	default:
		return nil, fmt.Errorf("agent oracle does not propose action kind %v", a.Kind)
	}
}

var roadTypeWireNames = map[worldgrid.RoadType]string{
	worldgrid.Local:     "local",
	worldgrid.Avenue:    "avenue",
	worldgrid.Boulevard: "boulevard",
	worldgrid.Highway:   "highway",
}

var zoneTypeWireNames = map[worldgrid.ZoneType]string{
	worldgrid.ResidentialLow:  "residential_low",
	worldgrid.ResidentialHigh: "residential_high",
	worldgrid.CommercialLow:   "commercial_low",
	worldgrid.CommercialHigh:  "commercial_high",
	worldgrid.Industrial:      "industrial",
	worldgrid.Office:          "office",
}

var utilityTypeWireNames = map[actions.UtilityType]string{
	actions.UtilityPowerPlant:     "power_plant",
	actions.UtilityWaterTower:     "water_tower",
	actions.UtilityWaterTreatment: "water_treatment",
}

func statusToContext(status map[string]any) agentoracle.CityContext {
	ctx := agentoracle.CityContext{}
	if name, ok := status["city_name"].(string); ok {
		ctx.CityName = name
	}
	if tick, ok := status["tick"].(float64); ok {
		ctx.Tick = uint64(tick)
	}
	snap, _ := status["snapshot"].(map[string]any)
	if snap == nil {
		return ctx
	}
	if v, ok := snap["treasury"].(float64); ok {
		ctx.Treasury = int64(v)
	}
	if v, ok := snap["population"].(float64); ok {
		ctx.Population = uint32(v)
	}
	if v, ok := snap["avg_happiness"].(float64); ok {
		ctx.AvgHappiness = v
	}
	if v, ok := snap["power_deficit"].(bool); ok {
		ctx.PowerDeficit = v
	}
	if v, ok := snap["water_deficit"].(bool); ok {
		ctx.WaterDeficit = v
	}
	return ctx
}

// cityClient is a thin HTTP client against a running citysim's public and
// admin endpoints.
type cityClient struct {
	base     string
	adminKey string
	http     *http.Client
}

func (c *cityClient) status() (map[string]any, error) {
	resp, err := c.http.Get(c.base + "/api/v1/status")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("status request failed: %s: %s", resp.Status, body)
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// submitAction POSTs a wire-shaped action to the admin action endpoint.
func (c *cityClient) submitAction(wire map[string]any) error {
	body, err := json.Marshal(wire)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, c.base+"/api/v1/action", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.adminKey)
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("action request failed: %s: %s", resp.Status, respBody)
	}
	return nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOrDefault(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
