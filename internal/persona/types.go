package persona

// ID identifies one of the built-in personas
type ID string

// Persona is an immutable marketing-manager identity used to condition generated responses.
// Values are handed out by copy; slices must not be modified by callers.
type Persona struct {
	ID                 ID       `json:"id"`
	Name               string   `json:"name"`
	Title              string   `json:"title"`
	Brand              string   `json:"brand"`
	Sport              string   `json:"sport"`
	Avatar             string   `json:"avatar"`
	Description        string   `json:"description"`
	Personality        string   `json:"personality"`
	Background         string   `json:"background"`
	Expertise          []string `json:"expertise"`
	WelcomeTopics      []string `json:"welcome_topics"`
	BrandFacts         []string `json:"brand_facts"`
	SuggestedQuestions []string `json:"suggested_questions"`
}

// Config represents the persona selection for a project
type Config struct {
	Name  ID           `json:"name"`
	Voice *VoiceConfig `json:"voice,omitempty"`
}

// VoiceConfig represents speech playback preferences for a persona
type VoiceConfig struct {
	Provider string   `json:"provider,omitempty"`
	Voice    string   `json:"voice,omitempty"`
	Rate     float64  `json:"rate,omitempty"`
	Locales  []string `json:"locales,omitempty"`
}
