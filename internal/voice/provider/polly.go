package provider

import (
	"context"
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/rs/zerolog/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultPollyVoice is used when neither a voice nor a known language is given
const DefaultPollyVoice = "Laura"

// pollyLocaleVoices maps locale hints to a neural voice
var pollyLocaleVoices = map[string]string{
	"nl-NL": "Laura",
	"nl-BE": "Lisa",
	"en-US": "Joanna",
	"en-GB": "Amy",
}

// PollyClient interface defines the methods we need from the Polly client
type PollyClient interface {
	DescribeVoices(ctx context.Context, params *polly.DescribeVoicesInput, optFns ...func(*polly.Options)) (*polly.DescribeVoicesOutput, error)
	SynthesizeSpeech(ctx context.Context, params *polly.SynthesizeSpeechInput, optFns ...func(*polly.Options)) (*polly.SynthesizeSpeechOutput, error)
}

// PollyProvider implements the Provider interface for Amazon Polly
type PollyProvider struct {
	client PollyClient
	region string

	// engines holds the supported engines per voice ID, filled by ListVoices
	mu      sync.Mutex
	engines map[string][]types.Engine
}

// NewPollyProvider creates a new Amazon Polly TTS provider
func NewPollyProvider(ctx context.Context, region string) (*PollyProvider, error) {
	if region == "" {
		region = "eu-west-1"
	}

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &PollyProvider{
		client: polly.NewFromConfig(cfg),
		region: region,
	}, nil
}

// Name returns the provider name
func (p *PollyProvider) Name() string {
	return NamePolly
}

// ListVoices returns available Amazon Polly voices.
// Voices supporting the neural engine carry a "(Neural)" suffix in their name.
func (p *PollyProvider) ListVoices(ctx context.Context) ([]Voice, error) {
	result, err := p.client.DescribeVoices(ctx, &polly.DescribeVoicesInput{})
	if err != nil {
		return nil, fmt.Errorf("failed to list Polly voices: %w", err)
	}

	engines := make(map[string][]types.Engine, len(result.Voices))
	voices := make([]Voice, 0, len(result.Voices))
	for _, v := range result.Voices {
		engines[string(v.Id)] = v.SupportedEngines

		name := aws.ToString(v.Name)
		if slices.Contains(v.SupportedEngines, types.EngineNeural) {
			name += " (Neural)"
		}

		voice := Voice{
			ID:       string(v.Id),
			Name:     name,
			Language: string(v.LanguageCode),
			Description: fmt.Sprintf("%s voice, %s engine supported",
				cases.Title(language.English).String(string(v.Gender)),
				formatSupportedEngines(v.SupportedEngines)),
		}

		switch v.Gender {
		case types.GenderFemale:
			voice.Gender = "female"
		case types.GenderMale:
			voice.Gender = "male"
		}

		voices = append(voices, voice)
	}

	p.mu.Lock()
	p.engines = engines
	p.mu.Unlock()

	return voices, nil
}

// Synthesize generates audio from text using Amazon Polly
func (p *PollyProvider) Synthesize(ctx context.Context, text string, options SynthesizeOptions) (io.ReadCloser, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	// Set defaults
	voiceID := options.Voice
	if voiceID == "" {
		voiceID = pollyLocaleVoices[options.Language]
	}
	if voiceID == "" {
		voiceID = DefaultPollyVoice
	}

	outputFormat := options.Format
	if outputFormat == "" {
		outputFormat = "mp3"
	}

	// Convert format to Polly format
	var pollyFormat types.OutputFormat
	switch strings.ToLower(outputFormat) {
	case "mp3":
		pollyFormat = types.OutputFormatMp3
	case "ogg":
		pollyFormat = types.OutputFormatOggVorbis
	case "pcm":
		pollyFormat = types.OutputFormatPcm
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", outputFormat)
	}

	// Parse engine from dedicated engine field or use neural by default
	engine := types.EngineNeural
	if options.Engine != "" {
		switch strings.ToLower(options.Engine) {
		case "standard":
			engine = types.EngineStandard
		case "neural":
			engine = types.EngineNeural
		case "long-form":
			engine = types.EngineLongForm
		case "generative":
			engine = types.EngineGenerative
		default:
			log.Warn().Str("engine", options.Engine).Msg("Unknown engine, using neural")
		}
	}

	engine = p.supportedEngine(voiceID, engine)

	// Prepare synthesis input
	input := &polly.SynthesizeSpeechInput{
		VoiceId:      types.VoiceId(voiceID),
		OutputFormat: pollyFormat,
		Engine:       engine,
	}

	if options.SampleRate != "" {
		switch options.SampleRate {
		case "8000", "16000", "22050", "24000":
			input.SampleRate = aws.String(options.SampleRate)
		default:
			log.Warn().Str("sample_rate", options.SampleRate).Msg("Invalid sample rate, using default")
		}
	}

	// Pitch is not supported by the neural engine, rate and volume go through prosody.
	if ssml, ok := pollySSML(text, options.Rate, options.Volume); ok {
		input.Text = aws.String(ssml)
		input.TextType = types.TextTypeSsml
	} else {
		input.Text = aws.String(text)
		input.TextType = types.TextTypeText
	}

	log.Debug().
		Str("voice_id", voiceID).
		Str("output_format", string(pollyFormat)).
		Str("engine", string(engine)).
		Str("text_type", string(input.TextType)).
		Msg("Making Polly synthesis request")

	// Make synthesis request
	result, err := p.client.SynthesizeSpeech(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	log.Debug().
		Str("content_type", aws.ToString(result.ContentType)).
		Msg("Polly synthesis request successful")

	return result.AudioStream, nil
}

// IsAvailable checks if Amazon Polly provider is available
func (p *PollyProvider) IsAvailable(ctx context.Context) bool {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := p.client.DescribeVoices(checkCtx, &polly.DescribeVoicesInput{})
	return err == nil
}

// supportedEngine returns engine, or an engine the voice supports when the catalog
// says it cannot use engine. Voices missing from the catalog keep engine.
func (p *PollyProvider) supportedEngine(voiceID string, engine types.Engine) types.Engine {
	p.mu.Lock()
	supported, known := p.engines[voiceID]
	p.mu.Unlock()

	if !known || len(supported) == 0 || slices.Contains(supported, engine) {
		return engine
	}

	fallback := supported[0]
	for _, e := range []types.Engine{types.EngineNeural, types.EngineStandard} {
		if slices.Contains(supported, e) {
			fallback = e
			break
		}
	}
	log.Debug().
		Str("voice_id", voiceID).
		Str("engine", string(engine)).
		Str("fallback", string(fallback)).
		Msg("Voice does not support engine, using fallback")
	return fallback
}

// pollySSML wraps text in a prosody element when rate or volume differ from normal
func pollySSML(text string, rate, volume float64) (string, bool) {
	var attrs []string
	if rate > 0 && rate != 1 {
		attrs = append(attrs, fmt.Sprintf(`rate="%d%%"`, int(math.Round(rate*100))))
	}
	if volume > 0 && volume != 1 {
		attrs = append(attrs, fmt.Sprintf(`volume="%+.1fdB"`, gainDB(volume)))
	}
	if len(attrs) == 0 {
		return "", false
	}
	return fmt.Sprintf("<speak><prosody %s>%s</prosody></speak>", strings.Join(attrs, " "), escapeXML(text)), true
}

// formatSupportedEngines formats the list of supported engines for display
func formatSupportedEngines(engines []types.Engine) string {
	if len(engines) == 0 {
		return "unknown"
	}

	engineNames := make([]string, len(engines))
	for i, engine := range engines {
		engineNames[i] = string(engine)
	}

	return strings.Join(engineNames, ", ")
}
