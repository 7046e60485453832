package planning_test

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/planllama/pkg/domain/planning"
)

func TestParseEstimate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
		wantHrs float64
	}{
		{"30 minutes", "30m", false, 0.5},
		{"4 hours", "4h", false, 4},
		{"1 day", "1d", false, 8}, // 8-hour day
		{"2 days", "2d", false, 16},
		{"1 week", "1w", false, 40}, // 5 * 8 = 40 hours
		{"empty", "", false, 0},
		{"with spaces", "  4h  ", false, 4},
		{"uppercase", "4H", false, 4},
		{"fraction", "1.5h", false, 1.5},
		{"iso days", "P2D", false, 48},
		{"iso hours", "PT4H", false, 4},
		{"iso mixed", "P1DT2H", false, 26},
		{"iso week", "P1W", false, 168},
		{"iso lowercase", "p2d", false, 48},
		{"invalid unit", "4x", true, 0},
		{"just number", "4", true, 0},
		{"bare P", "P", true, 0},
		{"iso garbage", "P2X", true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := planning.ParseEstimate(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseEstimate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && e.Hours() != tt.wantHrs {
				t.Errorf("Hours() = %v, want %v", e.Hours(), tt.wantHrs)
			}
		})
	}
}

func TestParseISODuration(t *testing.T) {
	d, err := planning.ParseISODuration("PT1H30M")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d != 90*time.Minute {
		t.Errorf("got %v, want 90m", d)
	}
}

func TestHoursToISODuration(t *testing.T) {
	tests := []struct {
		hours float64
		want  string
	}{
		{48, "P2D"},
		{4, "PT4H"},
		{26, "P1DT2H"},
		{0, "PT0H"},
	}
	for _, tt := range tests {
		if got := planning.HoursToISODuration(tt.hours); got != tt.want {
			t.Errorf("HoursToISODuration(%v) = %q, want %q", tt.hours, got, tt.want)
		}
	}
}

func TestEstimate_Add(t *testing.T) {
	a, _ := planning.ParseEstimate("4h")
	b, _ := planning.ParseEstimate("1d")
	sum := a.Add(b)
	if sum.Hours() != 12 {
		t.Errorf("expected 12 hours, got %v", sum.Hours())
	}
	if sum.String() != "1.5d" {
		t.Errorf("expected 1.5d, got %s", sum.String())
	}
}
