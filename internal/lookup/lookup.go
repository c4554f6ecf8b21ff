// Package lookup provides the read-only aircraft/ground-station cached
// lookup layer spec.md §6 sketches ("Optional read-only caches
// (aircraft-info SQLite DB, ground-station flat file) are consulted via a
// cached lookup layer (LRU + TTL) but not written to"), expanded per
// original_source/src/ac_data.c (SPEC_FULL §6) into two distinct tables:
// aircraft tail/registration info and ground-station frequency/location.
package lookup

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// defaultTTL / defaultCleanup mirror the cache construction pattern in
// Regentag-go1090's mode_s decoder (cache.New(ttl, cleanupInterval)),
// sized for a station's worth of aircraft seen over a session rather
// than the short ICAO-address dedup window that decoder uses.
const (
	defaultTTL     = 24 * time.Hour
	defaultCleanup = 10 * time.Minute
)

// Aircraft is one row of the aircraft-info snapshot: tail number plus
// whatever descriptive fields the source CSV carries.
type Aircraft struct {
	Registration string
	ICAO24       string
	Type         string
	Operator     string
}

// GroundStation is one row of the ground-station snapshot: VDL2 station
// id, its nominal frequency, and its location — original_source/src/
// ac_data.c keeps this alongside the aircraft table rather than as an
// afterthought, per SPEC_FULL §6.
type GroundStation struct {
	ID        string
	Frequency uint32 // Hz
	Name      string
	LatDeg    float64
	LonDeg    float64
}

// Tables is the read-only cached lookup layer: an aircraft table keyed by
// ICAO 24-bit address (hex string) and a ground-station table keyed by
// station id, each backed by its own TTL cache so a long-running process
// doesn't grow its working set beyond what it has actually seen.
type Tables struct {
	aircraft *cache.Cache
	stations *cache.Cache
}

// New creates an empty Tables with the default TTL/cleanup interval.
func New() *Tables {
	return &Tables{
		aircraft: cache.New(defaultTTL, defaultCleanup),
		stations: cache.New(defaultTTL, defaultCleanup),
	}
}

// LoadAircraftCSV seeds the aircraft table from a CSV snapshot with
// columns icao24,registration,type,operator. The cache is populated once
// at startup and never written back to the file, per spec.md §6
// "Persisted state: none."
func (t *Tables) LoadAircraftCSV(r io.Reader) error {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = 4
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		t.aircraft.SetDefault(rec[0], Aircraft{
			ICAO24:       rec[0],
			Registration: rec[1],
			Type:         rec[2],
			Operator:     rec[3],
		})
	}
}

// LoadGroundStationsCSV seeds the ground-station table from a CSV
// snapshot with columns id,frequency_hz,name,lat,lon.
func (t *Tables) LoadGroundStationsCSV(r io.Reader) error {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.FieldsPerRecord = 5
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		freq, err := strconv.ParseUint(rec[1], 10, 32)
		if err != nil {
			continue
		}
		lat, _ := strconv.ParseFloat(rec[3], 64)
		lon, _ := strconv.ParseFloat(rec[4], 64)
		t.stations.SetDefault(rec[0], GroundStation{
			ID:        rec[0],
			Frequency: uint32(freq),
			Name:      rec[2],
			LatDeg:    lat,
			LonDeg:    lon,
		})
	}
}

// LoadAircraftFile opens path and loads it as an aircraft CSV snapshot.
func (t *Tables) LoadAircraftFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return t.LoadAircraftCSV(f)
}

// LoadGroundStationsFile opens path and loads it as a ground-station CSV
// snapshot.
func (t *Tables) LoadGroundStationsFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return t.LoadGroundStationsCSV(f)
}

// Aircraft looks up an aircraft by its ICAO 24-bit address (hex string,
// case-sensitive match against whatever casing the CSV used).
func (t *Tables) Aircraft(icao24 string) (Aircraft, bool) {
	v, ok := t.aircraft.Get(icao24)
	if !ok {
		return Aircraft{}, false
	}
	return v.(Aircraft), true
}

// GroundStation looks up a ground station by id.
func (t *Tables) GroundStation(id string) (GroundStation, bool) {
	v, ok := t.stations.Get(id)
	if !ok {
		return GroundStation{}, false
	}
	return v.(GroundStation), true
}
