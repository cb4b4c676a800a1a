package voice

import (
	"strings"

	"golang.org/x/text/language"

	"github.com/daikw/sportsbot/internal/voice/provider"
)

// Voice is one entry of a provider's voice catalog
type Voice = provider.Voice

// DefaultLocale is used as a language hint when no voice is selected
const DefaultLocale = "nl-NL"

// QualityKeywords mark higher quality voices, in order of preference
var QualityKeywords = []string{"neural", "premium", "enhanced"}

// DefaultLocales is the locale preference order for voice selection
var DefaultLocales = []string{"nl-NL", "nl-BE", "en-US"}

// Priority is one locale tier of the selection order
type Priority struct {
	Locale   string
	Keywords []string
}

// PrioritiesFor builds selection tiers for locales, each preferring QualityKeywords
func PrioritiesFor(locales []string) []Priority {
	if len(locales) == 0 {
		locales = DefaultLocales
	}
	priorities := make([]Priority, 0, len(locales))
	for _, l := range locales {
		priorities = append(priorities, Priority{Locale: l, Keywords: QualityKeywords})
	}
	return priorities
}

// SelectBest picks a voice from the catalog.
//
// For each priority in order, the first voice whose locale starts with the
// priority locale and whose name contains a quality keyword wins, trying keywords
// in order; failing that, the first voice with the locale at all. If no priority
// matches the first voice of the catalog is used. An empty catalog selects nothing.
func SelectBest(voices []Voice, priorities []Priority) *Voice {
	if len(voices) == 0 {
		return nil
	}

	locales := make([]string, len(voices))
	names := make([]string, len(voices))
	for i, v := range voices {
		locales[i] = canonicalLocale(v.Language)
		names[i] = strings.ToLower(v.Name)
	}

	for _, p := range priorities {
		want := canonicalLocale(p.Locale)
		if want == "" {
			continue
		}
		for _, kw := range p.Keywords {
			kw = strings.ToLower(kw)
			for i := range voices {
				if strings.HasPrefix(locales[i], want) && strings.Contains(names[i], kw) {
					return &voices[i]
				}
			}
		}
		for i := range voices {
			if strings.HasPrefix(locales[i], want) {
				return &voices[i]
			}
		}
	}

	return &voices[0]
}

// canonicalLocale normalizes a locale tag for prefix comparison, so that
// nl_nl, nl-nl and nl-NL compare equal
func canonicalLocale(tag string) string {
	tag = strings.TrimSpace(strings.ReplaceAll(tag, "_", "-"))
	if tag == "" {
		return ""
	}
	if t, err := language.Parse(tag); err == nil {
		return strings.ToLower(t.String())
	}
	return strings.ToLower(tag)
}
