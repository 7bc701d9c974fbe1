// Package api exposes a running city over HTTP and websocket: GET
// endpoints are public read-only observation, POST endpoints mutate the
// city through the same action queue a player client or an agent uses,
// gated behind a bearer token. Grounded on internal/api/server.go's
// route table and request/response conventions, generalized from an
// agent-population simulation's settlement/faction views to a city's
// zone/building/traffic views.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/talgya/citycore/internal/actions"
	"github.com/talgya/citycore/internal/worldgrid"
)

// actionRequest is the wire shape for POST /api/v1/action: a flat,
// discriminated-by-"kind" JSON object mirroring GameAction's own
// discriminated-union shape, decoded into the internal union directly
// rather than through a parser per variant.
type actionRequest struct {
	Kind string `json:"kind"`

	Start, End *pointJSON `json:"start,omitempty"`
	RoadType   string     `json:"road_type,omitempty"`

	Min, Max *pointJSON `json:"min,omitempty"`
	ZoneType string     `json:"zone_type,omitempty"`

	Pos         *pointJSON `json:"pos,omitempty"`
	UtilityType string     `json:"utility_type,omitempty"`
	Radius      int        `json:"radius,omitempty"`

	Paused bool  `json:"paused,omitempty"`
	Speed  uint8 `json:"speed,omitempty"`

	PolicyField string `json:"policy_field,omitempty"`

	Principal  int64 `json:"principal,omitempty"`
	TermMonths int   `json:"term_months,omitempty"`
}

type pointJSON struct {
	X, Y int
}

var roadTypeNames = map[string]worldgrid.RoadType{
	"local":     worldgrid.Local,
	"avenue":    worldgrid.Avenue,
	"boulevard": worldgrid.Boulevard,
	"highway":   worldgrid.Highway,
}

var zoneTypeNames = map[string]worldgrid.ZoneType{
	"residential_low":  worldgrid.ResidentialLow,
	"residential_high": worldgrid.ResidentialHigh,
	"commercial_low":   worldgrid.CommercialLow,
	"commercial_high":  worldgrid.CommercialHigh,
	"industrial":       worldgrid.Industrial,
	"office":           worldgrid.Office,
}

var utilityTypeNames = map[string]actions.UtilityType{
	"power_plant":     actions.UtilityPowerPlant,
	"water_tower":     actions.UtilityWaterTower,
	"water_treatment": actions.UtilityWaterTreatment,
}

// toGameAction translates the wire request into a GameAction, or an error
// describing the first missing/invalid field.
func (req actionRequest) toGameAction() (actions.GameAction, error) {
	switch req.Kind {
	case "place_road":
		if req.Start == nil || req.End == nil {
			return actions.GameAction{}, fmt.Errorf("place_road requires start and end")
		}
		rt, ok := roadTypeNames[req.RoadType]
		if !ok {
			return actions.GameAction{}, fmt.Errorf("unknown road_type %q", req.RoadType)
		}
		return actions.GameAction{
			Kind:     actions.KindPlaceRoadLine,
			Start:    actions.Point{X: req.Start.X, Y: req.Start.Y},
			End:      actions.Point{X: req.End.X, Y: req.End.Y},
			RoadType: rt,
		}, nil

	case "zone_rect":
		if req.Min == nil || req.Max == nil {
			return actions.GameAction{}, fmt.Errorf("zone_rect requires min and max")
		}
		zt, ok := zoneTypeNames[req.ZoneType]
		if !ok {
			return actions.GameAction{}, fmt.Errorf("unknown zone_type %q", req.ZoneType)
		}
		return actions.GameAction{
			Kind:     actions.KindZoneRect,
			Min:      actions.Point{X: req.Min.X, Y: req.Min.Y},
			Max:      actions.Point{X: req.Max.X, Y: req.Max.Y},
			ZoneType: zt,
		}, nil

	case "place_utility":
		if req.Pos == nil {
			return actions.GameAction{}, fmt.Errorf("place_utility requires pos")
		}
		ut, ok := utilityTypeNames[req.UtilityType]
		if !ok {
			return actions.GameAction{}, fmt.Errorf("unknown utility_type %q", req.UtilityType)
		}
		return actions.GameAction{
			Kind:        actions.KindPlaceUtility,
			Pos:         actions.Point{X: req.Pos.X, Y: req.Pos.Y},
			UtilityType: ut,
		}, nil

	case "bulldoze":
		if req.Pos == nil {
			return actions.GameAction{}, fmt.Errorf("bulldoze requires pos")
		}
		return actions.GameAction{Kind: actions.KindBulldoze, Pos: actions.Point{X: req.Pos.X, Y: req.Pos.Y}}, nil

	case "place_roundabout":
		if req.Pos == nil {
			return actions.GameAction{}, fmt.Errorf("place_roundabout requires pos")
		}
		if req.Radius <= 0 {
			return actions.GameAction{}, fmt.Errorf("place_roundabout requires a positive radius")
		}
		return actions.GameAction{
			Kind:   actions.KindPlaceRoundabout,
			Pos:    actions.Point{X: req.Pos.X, Y: req.Pos.Y},
			Radius: req.Radius,
		}, nil

	case "set_paused":
		return actions.GameAction{Kind: actions.KindSetPaused, Paused: req.Paused}, nil

	case "set_speed":
		return actions.GameAction{Kind: actions.KindSetSpeed, Speed: req.Speed}, nil

	case "toggle_policy":
		if req.PolicyField == "" {
			return actions.GameAction{}, fmt.Errorf("toggle_policy requires policy_field")
		}
		return actions.GameAction{Kind: actions.KindTogglePolicy, PolicyField: req.PolicyField}, nil

	case "take_loan":
		if req.Principal <= 0 || req.TermMonths <= 0 {
			return actions.GameAction{}, fmt.Errorf("take_loan requires principal and term_months")
		}
		return actions.GameAction{Kind: actions.KindTakeLoan, Principal: req.Principal, TermMonths: req.TermMonths}, nil

	default:
		return actions.GameAction{}, fmt.Errorf("unknown action kind %q", req.Kind)
	}
}

func (p *pointJSON) UnmarshalJSON(b []byte) error {
	var pair [2]int
	if err := json.Unmarshal(b, &pair); err != nil {
		return err
	}
	p.X, p.Y = pair[0], pair[1]
	return nil
}

func (p pointJSON) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
