package agentoracle

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/talgya/citycore/internal/actions"
)

func newStubServer(t *testing.T, text string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		quoted, _ := json.Marshal(text)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"text":` + string(quoted) + `}],"usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
}

func TestNewClientDisabledWithoutKey(t *testing.T) {
	c := NewClient(Config{Endpoint: "http://example.invalid", Model: "m"})
	if c != nil {
		t.Fatalf("expected nil client with empty API key")
	}
	if (*Client)(nil).Enabled() {
		t.Errorf("nil client should not be Enabled")
	}
}

func TestAdviseTranslatesZoneProposal(t *testing.T) {
	srv := newStubServer(t, `{"reasoning":"demand is high","kind":"zone_rect","x":5,"y":5,"x2":10,"y2":10,"zone":"residential_low"}`)
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "test-key", Model: "m"})
	action, ok, err := Advise(c, CityContext{CityName: "testville"})
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true for a zone_rect proposal")
	}
	if action.Kind != actions.KindZoneRect {
		t.Errorf("Kind = %v, want KindZoneRect", action.Kind)
	}
	if action.Min.X != 5 || action.Max.X != 10 {
		t.Errorf("Min/Max = %+v/%+v, want (5,_)/(10,_)", action.Min, action.Max)
	}
}

func TestAdviseReturnsNotOkOnWait(t *testing.T) {
	srv := newStubServer(t, `{"reasoning":"city is fine","kind":"wait"}`)
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, APIKey: "test-key", Model: "m"})
	_, ok, err := Advise(c, CityContext{})
	if err != nil {
		t.Fatalf("Advise: %v", err)
	}
	if ok {
		t.Fatalf("expected ok=false for a wait proposal")
	}
}

func TestParseProposalRejectsUnknownKind(t *testing.T) {
	_, err := parseProposal(`{"kind":"launch_rocket"}`)
	if err == nil {
		t.Fatalf("expected error for unknown proposal kind")
	}
}

func TestNarrateRequiresEnabledClient(t *testing.T) {
	_, err := Narrate(nil, "testville", "a storm rolled through")
	if err == nil {
		t.Fatalf("expected error from a disabled client")
	}
}
