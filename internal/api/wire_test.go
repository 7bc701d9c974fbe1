package api

import (
	"encoding/json"
	"testing"

	"github.com/talgya/citycore/internal/actions"
	"github.com/talgya/citycore/internal/worldgrid"
)

func TestActionRequestUnmarshalsPoints(t *testing.T) {
	raw := `{"kind":"place_road","start":[1,2],"end":[3,4],"road_type":"avenue"}`
	var req actionRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if req.Start == nil || req.Start.X != 1 || req.Start.Y != 2 {
		t.Fatalf("Start = %+v, want (1,2)", req.Start)
	}
	if req.End == nil || req.End.X != 3 || req.End.Y != 4 {
		t.Fatalf("End = %+v, want (3,4)", req.End)
	}

	action, err := req.toGameAction()
	if err != nil {
		t.Fatalf("toGameAction: %v", err)
	}
	if action.Kind != actions.KindPlaceRoadLine || action.RoadType != worldgrid.Avenue {
		t.Errorf("action = %+v, want place_road_line/avenue", action)
	}
}

func TestActionRequestZoneRect(t *testing.T) {
	req := actionRequest{
		Kind:     "zone_rect",
		Min:      &pointJSON{X: 0, Y: 0},
		Max:      &pointJSON{X: 5, Y: 5},
		ZoneType: "commercial_high",
	}
	action, err := req.toGameAction()
	if err != nil {
		t.Fatalf("toGameAction: %v", err)
	}
	if action.Kind != actions.KindZoneRect || action.ZoneType != worldgrid.CommercialHigh {
		t.Errorf("action = %+v, want zone_rect/commercial_high", action)
	}
}

func TestActionRequestRejectsUnknownZoneType(t *testing.T) {
	req := actionRequest{Kind: "zone_rect", Min: &pointJSON{}, Max: &pointJSON{X: 1, Y: 1}, ZoneType: "swamp"}
	if _, err := req.toGameAction(); err == nil {
		t.Fatal("expected error for unknown zone_type")
	}
}

func TestActionRequestRejectsMissingFields(t *testing.T) {
	req := actionRequest{Kind: "place_utility"}
	if _, err := req.toGameAction(); err == nil {
		t.Fatal("expected error for missing pos")
	}
}

func TestActionRequestTakeLoanRequiresPositiveValues(t *testing.T) {
	req := actionRequest{Kind: "take_loan", Principal: 0, TermMonths: 12}
	if _, err := req.toGameAction(); err == nil {
		t.Fatal("expected error for zero principal")
	}

	req = actionRequest{Kind: "take_loan", Principal: 1000, TermMonths: 12}
	action, err := req.toGameAction()
	if err != nil {
		t.Fatalf("toGameAction: %v", err)
	}
	if action.Kind != actions.KindTakeLoan || action.Principal != 1000 {
		t.Errorf("action = %+v, want take_loan/1000", action)
	}
}

func TestActionRequestPlaceRoundabout(t *testing.T) {
	req := actionRequest{Kind: "place_roundabout", Pos: &pointJSON{X: 4, Y: 4}, Radius: 2}
	action, err := req.toGameAction()
	if err != nil {
		t.Fatalf("toGameAction: %v", err)
	}
	if action.Kind != actions.KindPlaceRoundabout || action.Radius != 2 {
		t.Errorf("action = %+v, want place_roundabout/radius=2", action)
	}
}

func TestActionRequestPlaceRoundaboutRejectsNonPositiveRadius(t *testing.T) {
	req := actionRequest{Kind: "place_roundabout", Pos: &pointJSON{X: 4, Y: 4}, Radius: 0}
	if _, err := req.toGameAction(); err == nil {
		t.Fatal("expected error for zero radius")
	}
}

func TestActionRequestRejectsUnknownKind(t *testing.T) {
	req := actionRequest{Kind: "nonsense"}
	if _, err := req.toGameAction(); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestPointJSONRoundTrip(t *testing.T) {
	p := pointJSON{X: 7, Y: 9}
	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "[7,9]" {
		t.Errorf("marshal = %s, want [7,9]", b)
	}

	var decoded pointJSON
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded != p {
		t.Errorf("decoded = %+v, want %+v", decoded, p)
	}
}
