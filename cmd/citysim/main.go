// Command citysim runs the fixed-tick city simulation and serves it over
// HTTP.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/talgya/citycore/internal/agentoracle"
	"github.com/talgya/citycore/internal/api"
	"github.com/talgya/citycore/internal/config"
	"github.com/talgya/citycore/internal/engine"
	"github.com/talgya/citycore/internal/save"
	"github.com/talgya/citycore/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	seed := envUintOrDefault("CITYSIM_SEED", 42)
	cityName := envOrDefault("CITYSIM_NAME", "Newgrange")
	startingTreasury := int64(envUintOrDefault("CITYSIM_STARTING_TREASURY", 500000))
	savePath := envOrDefault("CITYSIM_SAVE_PATH", "data/city.sav")
	telemetryPath := envOrDefault("CITYSIM_TELEMETRY_PATH", "data/telemetry.db")
	apiPort := int(envUintOrDefault("CITYSIM_API_PORT", 80))

	os.MkdirAll("data", 0o755)

	store, err := telemetry.Open(telemetryPath)
	if err != nil {
		slog.Error("failed to open telemetry store", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("telemetry store opened", "path", telemetryPath)

	var c *engine.City
	if _, statErr := os.Stat(savePath); statErr == nil {
		slog.Info("found save file, loading...", "path", savePath)
		d, _, err := save.ReadFile(savePath, nil)
		if err != nil {
			slog.Error("failed to read save file", "error", err)
			os.Exit(1)
		}
		c, err = engine.LoadCity(d)
		if err != nil {
			slog.Error("failed to load city", "error", err)
			os.Exit(1)
		}
		slog.Info("city loaded", "tick", c.Tick, "buildings", c.Store.BuildingCount())
	} else {
		slog.Info("no save file found, generating new city...", "seed", seed, "name", cityName)
		c = engine.NewCity(seed, cityName, startingTreasury)
	}

	var oracle *agentoracle.Client
	if apiKey := os.Getenv("AGENT_ORACLE_API_KEY"); apiKey != "" {
		oracle = agentoracle.NewClient(agentoracle.Config{
			Endpoint:  envOrDefault("AGENT_ORACLE_ENDPOINT", "https://api.openai.com/v1/chat/completions"),
			APIKey:    apiKey,
			Model:     envOrDefault("AGENT_ORACLE_MODEL", "gpt-4o-mini"),
			MaxPerMin: 10,
		})
		slog.Info("agent oracle enabled", "model", envOrDefault("AGENT_ORACLE_MODEL", "gpt-4o-mini"))
	} else {
		slog.Info("AGENT_ORACLE_API_KEY not set — agent advisory endpoint disabled")
	}

	sub, events := c.Events.Subscribe()
	defer c.Events.Unsubscribe(sub)
	var pendingEvents []engine.Event
	drainEvents := func() []engine.Event {
		for {
			select {
			case e := <-events:
				pendingEvents = append(pendingEvents, e)
			default:
				out := pendingEvents
				pendingEvents = nil
				return out
			}
		}
	}

	sched := engine.NewScheduler()
	sched.Tick = c.Tick
	sched.OnTick = func(tick uint64) {
		c.Step(tick)
		store.Flush(tick, c.Stats, drainEvents())
		if tick%config.TicksPerGameDay == 0 {
			if d, err := c.ToSaveData(); err != nil {
				slog.Error("periodic save: build save data failed", "error", err)
			} else if err := save.WriteFile(savePath, d); err != nil {
				slog.Error("periodic save failed", "error", err)
			}
		}
	}

	adminKey := os.Getenv("CITYSIM_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("CITYSIM_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}
	relayKey := os.Getenv("CITYSIM_RELAY_KEY")

	apiServer := &api.Server{
		City:      c,
		Scheduler: sched,
		Oracle:    oracle,
		Telemetry: store,
		SavePath:  savePath,
		Port:      apiPort,
		AdminKey:  adminKey,
		RelayKey:  relayKey,
	}
	apiServer.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		sched.Stop()
	}()

	fmt.Printf("%s is running: tick %d, %d buildings.\n", c.CityName, c.Tick, c.Store.BuildingCount())
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", apiPort)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	sched.Run()

	slog.Info("final save...")
	if d, err := c.ToSaveData(); err != nil {
		slog.Error("final save: build save data failed", "error", err)
	} else if err := save.WriteFile(savePath, d); err != nil {
		slog.Error("final save failed", "error", err)
	}

	fmt.Println("Simulation stopped. City state saved.")
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envUintOrDefault(key string, def uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}
