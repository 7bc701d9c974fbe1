package agentoracle

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/talgya/citycore/internal/actions"
	"github.com/talgya/citycore/internal/worldgrid"
)

// CityContext summarizes city state for an advisory prompt: enough for a
// text backend to reason about what to build next without handing it the
// full grid.
type CityContext struct {
	CityName   string
	Tick       uint64
	Season     string
	Weather    string
	Treasury   int64
	Population uint32
	AvgHappiness float64
	PowerDeficit bool
	WaterDeficit bool
	Demand     struct {
		Residential, Commercial, Industrial float64
	}
	RecentEvents []string
}

// Proposal is the single action an advisory call suggests, before it is
// translated into a GameAction and queued.
type Proposal struct {
	Reasoning string      `json:"reasoning"`
	Kind      string      `json:"kind"`
	X         int         `json:"x"`
	Y         int         `json:"y"`
	X2        int         `json:"x2"`
	Y2        int         `json:"y2"`
	Zone      string      `json:"zone"`
	Road      string      `json:"road"`
	Utility   string      `json:"utility"`
}

var validKinds = map[string]bool{
	"place_road": true, "zone_rect": true, "place_utility": true,
	"bulldoze": true, "wait": true,
}

// Advise asks the backend for one action suggestion given ctx and returns
// it translated into a GameAction ready to push onto the action queue.
// "wait" proposals return ok=false with no error — a legitimate decision to
// do nothing this round.
func Advise(client *Client, ctx CityContext) (action actions.GameAction, ok bool, err error) {
	if !client.Enabled() {
		return actions.GameAction{}, false, fmt.Errorf("agent oracle: client not configured")
	}

	system := buildAdvisorSystemPrompt()
	user := buildAdvisorUserPrompt(ctx)

	raw, err := client.Complete(system, user, 400)
	if err != nil {
		return actions.GameAction{}, false, fmt.Errorf("advise: %w", err)
	}

	prop, err := parseProposal(raw)
	if err != nil {
		return actions.GameAction{}, false, fmt.Errorf("advise: %w", err)
	}
	if prop.Kind == "wait" {
		return actions.GameAction{}, false, nil
	}

	return translateProposal(prop)
}

func buildAdvisorSystemPrompt() string {
	return `You are a city planning advisor for a simulated city. Each round you see a short status report and propose exactly one action to improve the city, or "wait" if nothing is warranted.

Respond ONLY with a single JSON object with these fields:
- "reasoning": one sentence explaining the choice
- "kind": one of "place_road", "zone_rect", "place_utility", "bulldoze", "wait"
- "x", "y": primary grid coordinate (0-255) for the action, or the start point for a road
- "x2", "y2": end point for "place_road", or the opposite corner for "zone_rect"
- "zone": for "zone_rect", one of "residential_low", "residential_high", "commercial_low", "commercial_high", "industrial", "office"
- "road": for "place_road", one of "local", "avenue", "highway"
- "utility": for "place_utility", one of "power_plant", "water_tower", "water_treatment"`
}

func buildAdvisorUserPrompt(ctx CityContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "City: %s, tick %d, %s, weather: %s.\n", ctx.CityName, ctx.Tick, ctx.Season, ctx.Weather)
	fmt.Fprintf(&b, "Treasury: %d. Population: %d. Average happiness: %.2f.\n",
		ctx.Treasury, ctx.Population, ctx.AvgHappiness)
	fmt.Fprintf(&b, "Demand — residential: %.2f, commercial: %.2f, industrial: %.2f.\n",
		ctx.Demand.Residential, ctx.Demand.Commercial, ctx.Demand.Industrial)
	if ctx.PowerDeficit {
		b.WriteString("Power demand currently exceeds supply.\n")
	}
	if ctx.WaterDeficit {
		b.WriteString("Water demand currently exceeds supply.\n")
	}
	if len(ctx.RecentEvents) > 0 {
		b.WriteString("Recent events:\n")
		for _, e := range ctx.RecentEvents {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	b.WriteString("\nWhat should this city do next? Respond with a single JSON object.")
	return b.String()
}

func parseProposal(response string) (Proposal, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return Proposal{}, fmt.Errorf("no JSON object found in response")
	}

	var prop Proposal
	if err := json.Unmarshal([]byte(response[start:end+1]), &prop); err != nil {
		return Proposal{}, fmt.Errorf("parse proposal: %w", err)
	}
	if !validKinds[prop.Kind] {
		return Proposal{}, fmt.Errorf("invalid proposal kind: %q", prop.Kind)
	}
	return prop, nil
}

var zoneNames = map[string]worldgrid.ZoneType{
	"residential_low":  worldgrid.ResidentialLow,
	"residential_high": worldgrid.ResidentialHigh,
	"commercial_low":   worldgrid.CommercialLow,
	"commercial_high":  worldgrid.CommercialHigh,
	"industrial":       worldgrid.Industrial,
	"office":           worldgrid.Office,
}

var roadNames = map[string]worldgrid.RoadType{
	"local":   worldgrid.Local,
	"avenue":  worldgrid.Avenue,
	"highway": worldgrid.Highway,
}

var utilityNames = map[string]actions.UtilityType{
	"power_plant":     actions.UtilityPowerPlant,
	"water_tower":     actions.UtilityWaterTower,
	"water_treatment": actions.UtilityWaterTreatment,
}

func translateProposal(p Proposal) (actions.GameAction, bool, error) {
	switch p.Kind {
	case "place_road":
		rt, ok := roadNames[p.Road]
		if !ok {
			return actions.GameAction{}, false, fmt.Errorf("unknown road type %q", p.Road)
		}
		return actions.GameAction{
			Kind:     actions.KindPlaceRoadLine,
			Start:    actions.Point{X: p.X, Y: p.Y},
			End:      actions.Point{X: p.X2, Y: p.Y2},
			RoadType: rt,
		}, true, nil
	case "zone_rect":
		zt, ok := zoneNames[p.Zone]
		if !ok {
			return actions.GameAction{}, false, fmt.Errorf("unknown zone type %q", p.Zone)
		}
		return actions.GameAction{
			Kind:     actions.KindZoneRect,
			Min:      actions.Point{X: p.X, Y: p.Y},
			Max:      actions.Point{X: p.X2, Y: p.Y2},
			ZoneType: zt,
		}, true, nil
	case "place_utility":
		ut, ok := utilityNames[p.Utility]
		if !ok {
			return actions.GameAction{}, false, fmt.Errorf("unknown utility type %q", p.Utility)
		}
		return actions.GameAction{
			Kind:        actions.KindPlaceUtility,
			Pos:         actions.Point{X: p.X, Y: p.Y},
			UtilityType: ut,
		}, true, nil
	case "bulldoze":
		return actions.GameAction{
			Kind: actions.KindBulldoze,
			Pos:  actions.Point{X: p.X, Y: p.Y},
		}, true, nil
	default:
		return actions.GameAction{}, false, fmt.Errorf("unsupported proposal kind: %q", p.Kind)
	}
}
