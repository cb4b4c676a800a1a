package persona

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

const (
	ConfigFileName = "persona.json"
	AppDir         = ".sportsbot"

	// File permissions
	DirPermission  = 0755 // Directory permission (rwxr-xr-x)
	FilePermission = 0644 // File permission (rw-r--r--)
)

// LoadConfig loads the persona selection from the specified directory's .sportsbot directory.
// It returns nil without error when no file exists.
func LoadConfig(projectPath string) (*Config, error) {
	configPath := filepath.Join(projectPath, AppDir, ConfigFileName)
	log.Debug().Str("path", configPath).Msg("Loading persona config")

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Debug().Msg("No persona config found")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	log.Debug().Str("persona", string(config.Name)).Msg("Loaded persona config")
	return &config, nil
}

// LoadConfigWithFallback loads the persona selection from the current directory,
// falling back to the home directory if not found.
func LoadConfigWithFallback() (*Config, error) {
	config, err := LoadConfig(".")
	if err != nil {
		return nil, err
	}
	if config != nil {
		log.Debug().Msg("Using project persona config")
		return config, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	config, err = LoadConfig(homeDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load global persona config: %w", err)
	}
	if config != nil {
		log.Debug().Msg("Using global persona config")
	}
	return config, nil
}

// SaveConfig saves the persona selection to the project's .sportsbot directory
func SaveConfig(projectPath string, config *Config) error {
	appDir := filepath.Join(projectPath, AppDir)

	if err := os.MkdirAll(appDir, DirPermission); err != nil {
		return fmt.Errorf("failed to create %s directory: %w", AppDir, err)
	}

	configPath := filepath.Join(appDir, ConfigFileName)

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, FilePermission); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	log.Debug().Str("path", configPath).Msg("Saved persona config")
	return nil
}

// GetDefaultConfig returns a default persona selection
func GetDefaultConfig() *Config {
	return &Config{
		Name: Default,
	}
}

// ValidateConfig checks if the configuration is valid
func ValidateConfig(config *Config) error {
	if config.Name == "" {
		return fmt.Errorf("persona name cannot be empty")
	}
	if !Exists(config.Name) {
		return fmt.Errorf("persona '%s' does not exist", config.Name)
	}

	if config.Voice != nil {
		if config.Voice.Rate < 0 {
			return fmt.Errorf("voice rate cannot be negative")
		}
		switch config.Voice.Provider {
		case "", "polly", "gcp":
		default:
			return fmt.Errorf("unsupported voice provider: %s", config.Voice.Provider)
		}
	}

	return nil
}

// Resolve returns the persona selected by config, or the default persona when config is nil
func Resolve(config *Config) (Persona, error) {
	if config == nil || config.Name == "" {
		return Lookup(Default)
	}
	if err := ValidateConfig(config); err != nil {
		return Persona{}, err
	}
	return Lookup(config.Name)
}
