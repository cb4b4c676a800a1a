package voice

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daikw/sportsbot/internal/config"
)

func TestResolve_Defaults(t *testing.T) {
	s := Resolve(PersonaVoiceInput{}, nil, Overrides{})
	assert.Equal(t, DefaultSettings(), s)
	assert.Equal(t, "polly", s.Provider)
	assert.Equal(t, []string{"nl-NL", "nl-BE", "en-US"}, s.Locales)
}

func TestResolve_Layering(t *testing.T) {
	file := &config.VoiceConfig{
		DefaultProvider: "polly",
		Rate:            1.2,
		Locales:         []string{"nl-BE"},
		Providers: map[string]config.ProviderConfig{
			"polly": {Region: "eu-central-1", Voice: "Lisa", Rate: 1.3},
			"gcp":   {ProjectID: "demo", Voice: "nl-NL-Neural2-A", Format: "ogg"},
		},
	}

	tests := []struct {
		name    string
		persona PersonaVoiceInput
		cli     Overrides
		check   func(*testing.T, Settings)
	}{
		{
			name: "provider section applies over file defaults",
			check: func(t *testing.T, s Settings) {
				assert.Equal(t, "polly", s.Provider)
				assert.Equal(t, "eu-central-1", s.Region)
				assert.Equal(t, "Lisa", s.Voice)
				assert.Equal(t, 1.3, s.Rate)
				assert.Equal(t, []string{"nl-BE"}, s.Locales)
			},
		},
		{
			name:    "persona selects the provider section",
			persona: PersonaVoiceInput{Provider: "gcp", Locales: []string{"en-US"}},
			check: func(t *testing.T, s Settings) {
				assert.Equal(t, "gcp", s.Provider)
				assert.Equal(t, "demo", s.ProjectID)
				assert.Equal(t, "nl-NL-Neural2-A", s.Voice)
				assert.Equal(t, "ogg", s.Format)
				assert.Equal(t, 1.2, s.Rate)
				assert.Equal(t, []string{"en-US"}, s.Locales)
			},
		},
		{
			name:    "persona overrides provider section values",
			persona: PersonaVoiceInput{Voice: "Laura", Rate: 0.75},
			check: func(t *testing.T, s Settings) {
				assert.Equal(t, "Laura", s.Voice)
				assert.Equal(t, 0.75, s.Rate)
			},
		},
		{
			name:    "cli wins",
			persona: PersonaVoiceInput{Provider: "polly", Voice: "Laura", Rate: 0.75},
			cli:     Overrides{Provider: "gcp", Voice: "nl-BE-Wavenet-A", Rate: 2},
			check: func(t *testing.T, s Settings) {
				assert.Equal(t, "gcp", s.Provider)
				assert.Equal(t, "nl-BE-Wavenet-A", s.Voice)
				assert.Equal(t, 2.0, s.Rate)
				assert.Equal(t, "demo", s.ProjectID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Resolve(tt.persona, file, tt.cli))
		})
	}
}

func TestSettings_Derived(t *testing.T) {
	s := DefaultSettings()
	s.ProjectID = "demo"
	s.Voice = "Laura"

	assert.Equal(t, "eu-west-1", s.ProviderConfig().Region)
	assert.Equal(t, "demo", s.ProviderConfig().ProjectID)

	opts := s.SynthesizeOptions()
	assert.Equal(t, "mp3", opts.Format)
	assert.Equal(t, "neural", opts.Engine)
	assert.Equal(t, "22050", opts.SampleRate)

	c := NewController(&fakeEngine{}, s.ControllerOptions()...)
	assert.Equal(t, "Laura", c.preferred)
	assert.Equal(t, 1.0, c.Rate())
	assert.Len(t, c.priorities, 3)
}
