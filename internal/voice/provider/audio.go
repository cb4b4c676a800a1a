package provider

import (
	"bytes"
	"encoding/xml"
	"math"
)

// gainDB converts a linear volume multiplier to decibels
func gainDB(volume float64) float64 {
	if volume <= 0 {
		return 0
	}
	return 20 * math.Log10(volume)
}

// semitones converts a pitch multiplier to semitones
func semitones(pitch float64) float64 {
	if pitch <= 0 {
		return 0
	}
	return 12 * math.Log2(pitch)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
