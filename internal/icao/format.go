package icao

import (
	"fmt"

	"github.com/vdl2rx/vdl2rx/internal/dmsfmt"
)

// VHF channel spacing and base frequency for the FormatVHFFreq formula
// named in spec.md §4.N: freq = base + n*step.
const (
	vhfBaseMHz = 100.0
	vhfStepMHz = 0.005
)

// FormatVHFFreq renders a VHF channel number (5 kHz steps) as its
// frequency in MHz, per spec.md §4.N ("VHF frequency = 0.005·n MHz +
// 100 MHz base").
func FormatVHFFreq(n int) string {
	return fmt.Sprintf("%.3f MHz", vhfBaseMHz+vhfStepMHz*float64(n))
}

// FormatLevelFeet renders an altitude in feet, ICAO APDU style.
func FormatLevelFeet(ft int) string {
	return fmt.Sprintf("FL%03d", ft/100)
}

// FormatSpeedKt renders an indicated airspeed in knots.
func FormatSpeedKt(kt float64) string {
	return fmt.Sprintf("%.0f kt", kt)
}

// FormatMach renders a Mach-number speed field (spec.md §4.N: "speed in
// knots or Mach").
func FormatMach(m float64) string {
	return fmt.Sprintf("M%.2f", m)
}

// FormatLatLon renders a decimal-degree position as DMS text, using the
// hemisphere/rounding rules of internal/dmsfmt.
func FormatLatLon(lat, lon float64) string {
	return fmt.Sprintf("%s %s", dmsfmt.Lat(lat), dmsfmt.Lon(lon))
}

// Format renders a decoded APDU as a one-line summary: the matched type
// name and payload length when a candidate matched, or a raw-bytes marker
// when none did — the Go analogue of original_source/icao.c's
// output_icao_apdu, minus the per-field ASN.1 pretty-printer a real
// schema would provide.
func Format(apdu *APDU) string {
	if apdu == nil {
		return "-- NULL ICAO APDU --"
	}
	if apdu.TypeName == "" {
		return fmt.Sprintf("unparsed ICAO APDU, %d raw bytes", len(apdu.Raw))
	}
	switch v := apdu.Value.(type) {
	case *Protected:
		if v.Header != nil {
			return fmt.Sprintf("%s (protected, inner %s): msg #%d %q", apdu.TypeName, v.Inner, v.Header.MsgID, v.Header.Label)
		}
		return fmt.Sprintf("%s (protected, inner %s, %d bytes)", apdu.TypeName, v.Inner, len(v.Payload))
	case *CMAircraftMessage:
		return fmt.Sprintf("%s (%d bytes)", apdu.TypeName, len(v.Payload))
	case *CMGroundMessage:
		return fmt.Sprintf("%s (%d bytes)", apdu.TypeName, len(v.Payload))
	case *AircraftPDUs:
		return fmt.Sprintf("%s (%d bytes)", apdu.TypeName, len(v.Payload))
	case *GroundPDUs:
		return fmt.Sprintf("%s (%d bytes)", apdu.TypeName, len(v.Payload))
	case *ADSAircraftPDUs:
		return fmt.Sprintf("%s (%d bytes)", apdu.TypeName, len(v.Payload))
	case *ADSGroundPDUs:
		return fmt.Sprintf("%s (%d bytes)", apdu.TypeName, len(v.Payload))
	default:
		return apdu.TypeName
	}
}
