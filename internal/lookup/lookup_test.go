package lookup

import (
	"strings"
	"testing"
)

func TestLoadAircraftCSVAndLookup(t *testing.T) {
	csv := "A12345,N123AB,B738,Example Air\nA67890,N456CD,A320,Other Air\n"
	tbl := New()
	if err := tbl.LoadAircraftCSV(strings.NewReader(csv)); err != nil {
		t.Fatalf("load: %v", err)
	}
	ac, ok := tbl.Aircraft("A12345")
	if !ok {
		t.Fatal("expected A12345 to be found")
	}
	if ac.Registration != "N123AB" || ac.Type != "B738" {
		t.Fatalf("unexpected record: %+v", ac)
	}
	if _, ok := tbl.Aircraft("NOTHERE"); ok {
		t.Fatal("expected miss for unknown address")
	}
}

func TestLoadGroundStationsCSVAndLookup(t *testing.T) {
	csv := "GS01,136975000,Reykjavik,64.0,-22.6\n"
	tbl := New()
	if err := tbl.LoadGroundStationsCSV(strings.NewReader(csv)); err != nil {
		t.Fatalf("load: %v", err)
	}
	gs, ok := tbl.GroundStation("GS01")
	if !ok {
		t.Fatal("expected GS01 to be found")
	}
	if gs.Frequency != 136975000 || gs.Name != "Reykjavik" {
		t.Fatalf("unexpected record: %+v", gs)
	}
}

func TestLoadGroundStationsCSVSkipsBadFrequency(t *testing.T) {
	csv := "GSBAD,not-a-number,Nowhere,0,0\n"
	tbl := New()
	if err := tbl.LoadGroundStationsCSV(strings.NewReader(csv)); err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := tbl.GroundStation("GSBAD"); ok {
		t.Fatal("expected malformed row to be skipped")
	}
}
