package models

import (
	"testing"
)

func TestZoneGrid(t *testing.T) {
	zones := AllZones()
	if len(zones) != 25 {
		t.Fatalf("expected 25 zones, got %d", len(zones))
	}

	strikeCells := 0
	for i, z := range zones {
		if z.Zone != i+1 {
			t.Errorf("zone at index %d numbered %d", i, z.Zone)
		}
		if z.Description == "" {
			t.Errorf("zone %d has no description", z.Zone)
		}
		if z.InStrikeZone {
			strikeCells++
		}
	}
	if strikeCells != 9 {
		t.Errorf("expected 9 strike zone cells, got %d", strikeCells)
	}
}

func TestIsStrikeZone(t *testing.T) {
	tests := []struct {
		zone int
		want bool
	}{
		{1, true},
		{5, true},
		{9, true},
		{10, false},
		{25, false},
		{0, false},
	}

	for _, tt := range tests {
		if got := IsStrikeZone(tt.zone); got != tt.want {
			t.Errorf("IsStrikeZone(%d) = %v, want %v", tt.zone, got, tt.want)
		}
	}
}

func TestIsValidZone(t *testing.T) {
	for z := 1; z <= 25; z++ {
		if !IsValidZone(z) {
			t.Errorf("zone %d should be valid", z)
		}
	}
	for _, z := range []int{0, -1, 26, 100} {
		if IsValidZone(z) {
			t.Errorf("zone %d should be invalid", z)
		}
	}
}

func TestZoneDescriptionStable(t *testing.T) {
	// Descriptions are part of the response contract
	if got := ZoneDescription(5); got != "Strike zone: dead center" {
		t.Errorf("ZoneDescription(5) = %q", got)
	}
	if got := ZoneDescription(26); got != "" {
		t.Errorf("ZoneDescription(26) = %q, want empty", got)
	}
}
