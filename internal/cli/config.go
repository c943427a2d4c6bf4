package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the CLI configuration stored at ~/.comprules/config.yaml.
// Besides per-environment credentials it carries the defaults a rule
// workflow keeps repeating: the output format and the language the
// prompt command requests marketing copy in.
type Config struct {
	DefaultEnv      string               `yaml:"default_env"`
	DefaultFormat   string               `yaml:"default_format,omitempty"`
	DefaultLanguage string               `yaml:"default_language,omitempty"`
	Environments    map[string]EnvConfig `yaml:"environments"`
}

// EnvConfig holds the credentials for one environment.
type EnvConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
}

// Options are the raw flag values a command collected. Zero values mean
// "not set on the command line".
type Options struct {
	Env      string
	BaseURL  string
	APIKey   string
	Format   string
	Language string
}

// Settings are the effective per-invocation values after precedence is
// applied: flags > COMPRULES_* environment variables > config file >
// built-in defaults.
type Settings struct {
	Env      string
	BaseURL  string
	APIKey   string
	Format   string
	Language string
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".comprules", "config.yaml"), nil
}

// LoadConfig loads the configuration from file
func LoadConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			// Return empty config if file doesn't exist
			return &Config{
				DefaultEnv:   "prod",
				Environments: make(map[string]EnvConfig),
			}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// SaveConfig saves the configuration to file
func SaveConfig(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Resolve turns the flag values into effective settings. Each field falls
// back independently: flag, then COMPRULES_BASE_URL / COMPRULES_API_KEY
// for credentials, then the config file, then built-ins (format "table",
// language "English").
//
// When both credentials arrive from flags or environment variables the
// config file is never read, so --env is required: there is no file to
// supply a default environment.
func Resolve(opts Options) (*Settings, error) {
	s := &Settings{
		Env:      opts.Env,
		BaseURL:  opts.BaseURL,
		APIKey:   opts.APIKey,
		Format:   opts.Format,
		Language: opts.Language,
	}
	if s.BaseURL == "" {
		s.BaseURL = os.Getenv("COMPRULES_BASE_URL")
	}
	if s.APIKey == "" {
		s.APIKey = os.Getenv("COMPRULES_API_KEY")
	}

	if s.BaseURL != "" && s.APIKey != "" {
		if s.Env == "" {
			return nil, fmt.Errorf("--env flag is required when credentials come from flags or COMPRULES_* environment variables")
		}
		s.applyBuiltins()
		return s, nil
	}

	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}

	if s.Env == "" {
		s.Env = cfg.DefaultEnv
	}
	envCfg, ok := cfg.Environments[s.Env]
	if !ok {
		return nil, fmt.Errorf("environment '%s' not found in config", s.Env)
	}
	if s.BaseURL == "" {
		s.BaseURL = envCfg.BaseURL
	}
	if s.APIKey == "" {
		s.APIKey = envCfg.APIKey
	}
	if s.BaseURL == "" || s.APIKey == "" {
		return nil, fmt.Errorf("base_url and api_key must be configured for environment '%s'", s.Env)
	}

	if s.Format == "" {
		s.Format = cfg.DefaultFormat
	}
	if s.Language == "" {
		s.Language = cfg.DefaultLanguage
	}
	s.applyBuiltins()
	return s, nil
}

func (s *Settings) applyBuiltins() {
	if s.Format == "" {
		s.Format = string(FormatTable)
	}
	if s.Language == "" {
		s.Language = "English"
	}
}

// InitConfig creates a default config file
func InitConfig() error {
	cfg := &Config{
		DefaultEnv:      "prod",
		DefaultFormat:   string(FormatTable),
		DefaultLanguage: "English",
		Environments: map[string]EnvConfig{
			"dev": {
				BaseURL: "http://localhost:8080",
				APIKey:  "dev-key-123",
			},
			"staging": {
				BaseURL: "https://staging.example.com",
				APIKey:  "staging-key-456",
			},
			"prod": {
				BaseURL: "https://comprules.example.com",
				APIKey:  "prod-key-789",
			},
		},
	}

	return SaveConfig(cfg)
}
