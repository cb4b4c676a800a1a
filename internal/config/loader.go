package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// File locations
const (
	AppDir         = ".sportsbot"
	ConfigFileName = "config.json"
	EnvFileName    = ".env"
)

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Loader handles loading configuration from files
type Loader struct {
	projectPath string
	globalPath  string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	homeDir, _ := os.UserHomeDir()
	return &Loader{
		projectPath: filepath.Join(AppDir, ConfigFileName),
		globalPath:  filepath.Join(homeDir, AppDir, ConfigFileName),
	}
}

// Load builds the configuration for workDir.
//
// Sources, lowest priority first:
//  1. built-in defaults
//  2. global config (~/.sportsbot/config.json)
//  3. project config (.sportsbot/config.json), which replaces the global file
//  4. environment, including variables from a .env file in workDir
func Load(workDir string) (*Config, error) {
	if err := loadDotEnv(filepath.Join(workDir, EnvFileName)); err != nil {
		return nil, err
	}

	cfg, err := NewLoader().LoadConfig(workDir)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return cfg, nil
}

// LoadConfig loads configuration with priority:
// 1. Project-local config (.sportsbot/config.json)
// 2. Global config (~/.sportsbot/config.json)
// Returns the defaults if no config file is found
func (l *Loader) LoadConfig(workDir string) (*Config, error) {
	projectConfigPath := filepath.Join(workDir, l.projectPath)
	config, err := l.loadFromFile(projectConfigPath)
	if err == nil {
		log.Debug().Str("path", projectConfigPath).Msg("Loaded project config")
		return config, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	config, err = l.loadFromFile(l.globalPath)
	if err == nil {
		log.Debug().Str("path", l.globalPath).Msg("Loaded global config")
		return config, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	log.Debug().Msg("No config file found, using defaults")
	return Default(), nil
}

// LoadFromPath loads configuration from a specific path
func (l *Loader) LoadFromPath(path string) (*Config, error) {
	if err := validateConfigPath(path); err != nil {
		return nil, err
	}
	return l.loadFromFile(path)
}

// validateConfigPath checks that the config path is safe to use
func validateConfigPath(path string) error {
	if strings.Contains(path, "..") {
		return fmt.Errorf("invalid config path: path traversal not allowed")
	}
	if !strings.HasSuffix(filepath.Clean(path), ".json") {
		return fmt.Errorf("invalid config path: must be a .json file")
	}
	return nil
}

func (l *Loader) loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := expandEnvVars(string(data))

	config := Default()
	if err := json.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	checkFilePermissions(path)

	return config, nil
}

// expandEnvVars replaces ${VAR} patterns with environment variable values
func expandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		varName := match[2 : len(match)-1]
		if value, exists := os.LookupEnv(varName); exists {
			return value
		}
		// Don't log variable names for security reasons
		log.Debug().Msg("Referenced environment variable not set in config")
		return ""
	})
}

func checkFilePermissions(path string) {
	info, err := os.Stat(path)
	if err != nil {
		return
	}

	mode := info.Mode().Perm()
	if mode&0077 != 0 {
		log.Warn().
			Str("permissions", fmt.Sprintf("%04o", mode)).
			Msg("Config file may contain secrets but has permissive permissions. Consider: chmod 600")
	}
}

// loadDotEnv loads variables from a .env file without overriding the environment
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	switch {
	case err == nil:
		log.Debug().Str("path", path).Msg("Loaded environment file")
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
}

// GenerateExampleConfig generates an example configuration
func GenerateExampleConfig() string {
	example := Default()
	example.LLM.APIKey = "${GEMINI_API_KEY}"
	example.LLM.Models = map[string]string{
		"smart": "gemini-2.5-flash",
		"fast":  "gemini-2.5-flash-lite",
	}
	example.Voice = VoiceConfig{
		DefaultProvider: "polly",
		Rate:            1.0,
		Locales:         []string{"nl-NL", "nl-BE", "en-US"},
		Providers: map[string]ProviderConfig{
			"polly": {
				Region: "eu-west-1",
				Engine: "neural",
			},
			"gcp": {
				ProjectID: "${GOOGLE_CLOUD_PROJECT}",
			},
		},
	}

	data, _ := json.MarshalIndent(example, "", "  ")
	return string(data)
}
