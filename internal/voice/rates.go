package voice

import (
	"fmt"
	"strconv"
	"strings"
)

// Speaking rate bounds accepted by the speech providers
const (
	MinRate = 0.25
	MaxRate = 4.0
)

// RatePreset is a named speaking rate offered in the chat
type RatePreset struct {
	Label string
	Rate  float64
}

// RatePresets lists the rates offered in the chat, slowest first
var RatePresets = []RatePreset{
	{Label: "Langzaam", Rate: 0.75},
	{Label: "Normaal", Rate: 1.0},
	{Label: "Snel", Rate: 1.5},
	{Label: "Allersnelst", Rate: 2.0},
}

// ParseRate accepts a preset label (case-insensitive) or a number such as "1.25" or "1.5x"
func ParseRate(s string) (float64, error) {
	s = strings.TrimSpace(s)
	for _, p := range RatePresets {
		if strings.EqualFold(p.Label, s) {
			return p.Rate, nil
		}
	}

	rate, err := strconv.ParseFloat(strings.TrimSuffix(strings.ToLower(s), "x"), 64)
	if err != nil {
		return 0, fmt.Errorf("unknown rate %q", s)
	}
	if rate < MinRate || rate > MaxRate {
		return 0, fmt.Errorf("rate must be between %.2f and %.1f, got %.2f", MinRate, MaxRate, rate)
	}
	return rate, nil
}

// RateLabel names a rate for display: the preset label, or the number itself
func RateLabel(rate float64) string {
	for _, p := range RatePresets {
		if p.Rate == rate {
			return fmt.Sprintf("%s (%gx)", p.Label, rate)
		}
	}
	return fmt.Sprintf("%gx", rate)
}
