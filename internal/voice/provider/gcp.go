package provider

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog/log"
)

// DefaultGCPLanguage is used when neither a voice nor a language is given
const DefaultGCPLanguage = "nl-NL"

// GCPClient is the subset of the Cloud Text-to-Speech client used by GCPProvider
type GCPClient interface {
	ListVoices(ctx context.Context, req *texttospeechpb.ListVoicesRequest, opts ...gax.CallOption) (*texttospeechpb.ListVoicesResponse, error)
	SynthesizeSpeech(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*texttospeechpb.SynthesizeSpeechResponse, error)
	Close() error
}

// GCPProvider implements the Provider interface for Google Cloud Text-to-Speech
type GCPProvider struct {
	client    GCPClient
	projectID string
}

// GCPProviderOption is a functional option for configuring GCPProvider
type GCPProviderOption func(*GCPProvider)

// WithGCPProjectID sets the Google Cloud project ID
func WithGCPProjectID(projectID string) GCPProviderOption {
	return func(p *GCPProvider) {
		p.projectID = projectID
	}
}

// NewGCPProvider creates a new Google Cloud TTS provider.
// Authentication is handled via GOOGLE_APPLICATION_CREDENTIALS or Application Default Credentials.
func NewGCPProvider(ctx context.Context, opts ...GCPProviderOption) (*GCPProvider, error) {
	client, err := texttospeech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCP TTS client: %w", err)
	}

	p := &GCPProvider{client: client}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Name returns the provider name
func (p *GCPProvider) Name() string {
	return NameGCP
}

// ListVoices returns available voices from Google Cloud TTS.
// A voice serving several languages appears once per language.
func (p *GCPProvider) ListVoices(ctx context.Context) ([]Voice, error) {
	resp, err := p.client.ListVoices(ctx, &texttospeechpb.ListVoicesRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list GCP voices: %w", err)
	}

	var voices []Voice
	for _, v := range resp.Voices {
		gender := "unknown"
		switch v.SsmlGender {
		case texttospeechpb.SsmlVoiceGender_MALE:
			gender = "male"
		case texttospeechpb.SsmlVoiceGender_FEMALE:
			gender = "female"
		case texttospeechpb.SsmlVoiceGender_NEUTRAL:
			gender = "neutral"
		}

		// Determine engine type from voice name
		engineType := detectEngineType(v.Name)
		for _, langCode := range v.LanguageCodes {
			voices = append(voices, Voice{
				ID:          v.Name,
				Name:        v.Name,
				Language:    langCode,
				Gender:      gender,
				Description: fmt.Sprintf("%s voice (%s)", engineType, strings.Join(v.LanguageCodes, ", ")),
			})
		}
	}

	log.Debug().Int("count", len(voices)).Msg("Listed GCP TTS voices")
	return voices, nil
}

// detectEngineType determines the engine type from voice name
func detectEngineType(voiceName string) string {
	name := strings.ToLower(voiceName)
	switch {
	case strings.Contains(name, "wavenet"):
		return "WaveNet"
	case strings.Contains(name, "neural2"):
		return "Neural2"
	case strings.Contains(name, "studio"):
		return "Studio"
	case strings.Contains(name, "chirp"):
		return "Chirp"
	case strings.Contains(name, "polyglot"):
		return "Polyglot"
	default:
		return "Standard"
	}
}

// Synthesize generates audio from text using Google Cloud TTS
func (p *GCPProvider) Synthesize(ctx context.Context, text string, options SynthesizeOptions) (io.ReadCloser, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	// Determine language from options or voice name
	lang := options.Language
	if lang == "" && options.Voice != "" {
		// Extract language from voice name (e.g., nl-NL-Neural2-A -> nl-NL)
		parts := strings.Split(options.Voice, "-")
		if len(parts) >= 2 {
			lang = parts[0] + "-" + parts[1]
		}
	}
	if lang == "" {
		lang = DefaultGCPLanguage
	}

	// Build audio config
	audioConfig := &texttospeechpb.AudioConfig{
		AudioEncoding:   getAudioEncoding(options.Format),
		SpeakingRate:    getSpeakingRate(options.Rate),
		Pitch:           semitones(options.Pitch),
		VolumeGainDb:    gainDB(options.Volume),
		SampleRateHertz: getSampleRate(options.SampleRate),
	}

	log.Debug().
		Str("voice", options.Voice).
		Str("language", lang).
		Float64("rate", audioConfig.SpeakingRate).
		Float64("pitch", audioConfig.Pitch).
		Msg("Making GCP TTS synthesis request")

	// Make the API call
	resp, err := p.client.SynthesizeSpeech(ctx, &texttospeechpb.SynthesizeSpeechRequest{
		Input: &texttospeechpb.SynthesisInput{
			InputSource: &texttospeechpb.SynthesisInput_Text{Text: text},
		},
		Voice: &texttospeechpb.VoiceSelectionParams{
			LanguageCode: lang,
			Name:         options.Voice,
		},
		AudioConfig: audioConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	log.Debug().
		Int("audio_bytes", len(resp.AudioContent)).
		Msg("GCP TTS synthesis successful")

	return io.NopCloser(bytes.NewReader(resp.AudioContent)), nil
}

// getAudioEncoding converts format string to GCP audio encoding
func getAudioEncoding(format string) texttospeechpb.AudioEncoding {
	switch strings.ToLower(format) {
	case "wav", "linear16", "pcm":
		return texttospeechpb.AudioEncoding_LINEAR16
	case "ogg", "ogg_opus":
		return texttospeechpb.AudioEncoding_OGG_OPUS
	default:
		return texttospeechpb.AudioEncoding_MP3
	}
}

// getSpeakingRate clamps speed to the GCP range 0.25 to 4.0
func getSpeakingRate(speed float64) float64 {
	switch {
	case speed <= 0:
		return 1.0
	case speed < 0.25:
		return 0.25
	case speed > 4.0:
		return 4.0
	default:
		return speed
	}
}

// getSampleRate returns the sample rate in Hz, 0 selects the encoding default
func getSampleRate(sampleRate string) int32 {
	switch sampleRate {
	case "8000":
		return 8000
	case "16000":
		return 16000
	case "22050":
		return 22050
	case "24000":
		return 24000
	case "44100":
		return 44100
	case "48000":
		return 48000
	default:
		return 0
	}
}

// IsAvailable checks if the GCP TTS service is available
func (p *GCPProvider) IsAvailable(ctx context.Context) bool {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// Try to list voices as a health check
	_, err := p.client.ListVoices(checkCtx, &texttospeechpb.ListVoicesRequest{})
	return err == nil
}

// Close closes the GCP client
func (p *GCPProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}
