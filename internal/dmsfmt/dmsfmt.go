// Package dmsfmt renders signed decimal-degree coordinates as degrees/
// minutes/seconds or degrees/decimal-minutes text, shared by
// internal/icao's ASN.1 text formatters and internal/adsc's position-group
// formatter (spec.md §4.N, §4.O) so both layers agree on hemisphere
// labeling and rounding instead of each re-deriving it.
package dmsfmt

import (
	"fmt"
	"math"

	"github.com/tzneal/coordconv"
)

// LatHemisphere returns N/S for a signed latitude using coordconv's
// Hemisphere enum (built for UTM zone letters, reused here purely for its
// N/S/Invalid vocabulary and rune mapping).
func LatHemisphere(lat float64) rune {
	switch {
	case lat >= 0:
		return hemisphereRune(coordconv.HemisphereNorth)
	default:
		return hemisphereRune(coordconv.HemisphereSouth)
	}
}

// LonHemisphere returns E/W for a signed longitude.
func LonHemisphere(lon float64) rune {
	if lon < 0 {
		return 'W'
	}
	return 'E'
}

func hemisphereRune(h coordconv.Hemisphere) rune {
	switch h {
	case coordconv.HemisphereNorth:
		return 'N'
	case coordconv.HemisphereSouth:
		return 'S'
	default:
		return '?'
	}
}

// DMS formats a signed decimal-degree value as "DDD MM SS.s H" (degrees,
// minutes, seconds, hemisphere letter).
func DMS(value float64, hemi rune) string {
	v := math.Abs(value)
	deg := math.Floor(v)
	minF := (v - deg) * 60
	mins := math.Floor(minF)
	secs := (minF - mins) * 60
	return fmt.Sprintf("%03.0f %02.0f %04.1f %c", deg, mins, secs, hemi)
}

// DM formats a signed decimal-degree value as "DDD MM.mmm H" (degrees,
// decimal minutes, hemisphere letter) — the coarser form some ADS-C/CPDLC
// position reports use in place of full DMS.
func DM(value float64, hemi rune) string {
	v := math.Abs(value)
	deg := math.Floor(v)
	minF := (v - deg) * 60
	return fmt.Sprintf("%03.0f %07.4f %c", deg, minF, hemi)
}

// Lat formats a signed latitude as DMS with the correct hemisphere.
func Lat(lat float64) string { return DMS(lat, LatHemisphere(lat)) }

// Lon formats a signed longitude as DMS with the correct hemisphere.
func Lon(lon float64) string { return DMS(lon, LonHemisphere(lon)) }

// LatDM formats a signed latitude as degrees/decimal-minutes.
func LatDM(lat float64) string { return DM(lat, LatHemisphere(lat)) }

// LonDM formats a signed longitude as degrees/decimal-minutes.
func LonDM(lon float64) string { return DM(lon, LonHemisphere(lon)) }
