package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestNewRunIDUniqueAndParseable(t *testing.T) {
	const n = 1000

	seen := make(map[RunID]bool, n)
	for i := 0; i < n; i++ {
		id := NewRunID()
		if seen[id] {
			t.Fatalf("duplicate run ID %s", id)
		}
		seen[id] = true

		parsed, err := ParseRunID(id.String())
		if err != nil {
			t.Fatalf("ParseRunID(%q): %v", id, err)
		}
		if parsed != id {
			t.Errorf("expected %s, got %s", id, parsed)
		}
	}
}

func TestParseRunID(t *testing.T) {
	id, err := ParseRunID(" 0190A1B2-C3D4-7E5F-8A9B-0C1D2E3F4A5B ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b" {
		t.Errorf("expected canonical form, got %q", id)
	}
	if _, err := ParseRunID("run-1"); err == nil {
		t.Error("expected error for non-UUID run ID")
	}
}

func TestParseDeploymentID(t *testing.T) {
	id, err := ParseDeploymentID(" openai/gpt-4o ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "openai/gpt-4o" {
		t.Errorf("expected trimmed deployment, got %q", id)
	}
	if _, err := ParseDeploymentID("  "); err == nil {
		t.Error("expected error for blank deployment")
	}
}

func TestComputeSampleHash(t *testing.T) {
	a := ComputeSampleHash(map[string][]float64{"low": {1, 2}, "high": {3}})
	b := ComputeSampleHash(map[string][]float64{"high": {3}, "low": {1, 2}})
	if a != b {
		t.Error("expected hash to ignore map order")
	}

	c := ComputeSampleHash(map[string][]float64{"low": {2, 1}, "high": {3}})
	if a == c {
		t.Error("expected hash to depend on value order")
	}

	d := ComputeSampleHash(map[string][]float64{"low": {1}, "high": {2, 3}})
	if a == d {
		t.Error("expected hash to depend on group membership")
	}

	if len(a) != 64 || len(a.Short()) != 12 {
		t.Errorf("unexpected hash lengths %d / %d", len(a), len(a.Short()))
	}
}

func TestTimestampJSON(t *testing.T) {
	ts := NewTimestamp(time.Date(2025, 3, 1, 13, 0, 0, 500, time.FixedZone("CET", 3600)))
	if ts.String() != "2025-03-01T12:00:00Z" {
		t.Errorf("unexpected string form %q", ts.String())
	}

	data, err := json.Marshal(struct {
		At Timestamp `json:"at"`
	}{ts})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"at":"2025-03-01T12:00:00Z"}` {
		t.Errorf("unexpected JSON %s", data)
	}

	var back struct {
		At Timestamp `json:"at"`
	}
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !back.At.Time().Equal(ts.Time()) {
		t.Errorf("expected %v, got %v", ts, back.At)
	}
}

func TestInsufficientDataError(t *testing.T) {
	err := NewInsufficientDataError("low", 3, 5)
	if !errors.Is(err, ErrInsufficientData) {
		t.Error("expected ErrInsufficientData in chain")
	}
	if err.Error() != "insufficient data for analysis: low has 3 observations, need 5" {
		t.Errorf("unexpected message %q", err.Error())
	}
}
