package config

import (
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

//go:embed data/default_config.toml
var defaultConfigTOML string

// environment variables holding provider API keys
var apiKeyEnv = map[string]string{
	"providers.openrouter.api_key": "OPENROUTER_API_KEY",
	"providers.litellm.api_key":    "LITELLM_API_KEY",
	"providers.openai.api_key":     "OPENAI_API_KEY",
}

// Manager handles configuration loading and management
type Manager struct {
	v      *viper.Viper
	cfg    *Config
	logger *slog.Logger
}

// NewManager creates a new configuration manager with default settings
func NewManager() *Manager {
	v := viper.New()

	// aliases for easier API key management
	v.RegisterAlias("openrouter-key", "providers.openrouter.api_key")
	v.RegisterAlias("litellm-key", "providers.litellm.api_key")
	v.RegisterAlias("openai-key", "providers.openai.api_key")

	for key, env := range apiKeyEnv {
		_ = v.BindEnv(key, env)
	}

	return &Manager{
		v:   v,
		cfg: &Config{}, // empty config, defaults loaded from embedded TOML in Load()
	}
}

// WithLogger sets the logger for the configuration manager
func (m *Manager) WithLogger(logger *slog.Logger) *Manager {
	m.logger = logger
	return m
}

// Load loads configuration from the specified TOML file, merging with defaults
func (m *Manager) Load(configPath string) error {
	if m.logger != nil {
		m.logger.Debug("Attempting to load config file", "path", configPath)
	}

	m.v.SetConfigType("toml")

	if err := m.v.ReadConfig(strings.NewReader(defaultConfigTOML)); err != nil {
		return fmt.Errorf("failed to load embedded defaults: %w", err)
	}

	m.v.SetConfigFile(configPath)

	// merge user config file over defaults
	err := m.v.MergeInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		var pathError *os.PathError
		if !errors.As(err, &configFileNotFoundError) && !errors.As(err, &pathError) {
			return err
		}
		if pathError != nil && !os.IsNotExist(pathError) {
			return err
		}
		if m.logger != nil {
			m.logger.Debug("Config file not found")
		}

		if err := m.createDefaultConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create default config file: %w", err)
		}

		// keep the path so Save writes there
		m.v.SetConfigFile(configPath)

	} else if m.logger != nil {
		m.logger.Info("Configuration loaded successfully", "path", m.v.ConfigFileUsed())
	}

	if err := m.v.Unmarshal(&m.cfg); err != nil {
		return err
	}
	return nil
}

// Config returns the current configuration
func (m *Manager) Config() *Config {
	return m.cfg
}

// Viper returns the underlying Viper instance for flag binding
func (m *Manager) Viper() *viper.Viper {
	return m.v
}

// Save writes the current configuration state back to the config file
func (m *Manager) Save() error {
	configFile := m.v.ConfigFileUsed()
	if configFile == "" {
		return fmt.Errorf("no config file path set")
	}

	configDir := filepath.Dir(configFile)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	out, err := m.persistable()
	if err != nil {
		return err
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		if err := out.SafeWriteConfigAs(configFile); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	} else {
		if err := out.WriteConfigAs(configFile); err != nil {
			return fmt.Errorf("failed to update config file: %w", err)
		}
	}

	// the file may hold secrets
	if err := os.Chmod(configFile, 0600); err != nil {
		return fmt.Errorf("failed to restrict config file permissions: %w", err)
	}

	if err := m.v.Unmarshal(&m.cfg); err != nil {
		return fmt.Errorf("failed to reload configuration after save: %w", err)
	}
	return nil
}

// persistable copies the settings for writing, leaving out API keys that
// only come from their environment variable
func (m *Manager) persistable() (*viper.Viper, error) {
	out := viper.New()
	out.SetConfigType("toml")
	if err := out.MergeConfigMap(m.v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to copy configuration: %w", err)
	}
	for key, env := range apiKeyEnv {
		if fromEnv := os.Getenv(env); fromEnv != "" && m.v.GetString(key) == fromEnv {
			out.Set(key, "")
		}
	}
	return out, nil
}

// NewDefaultFromEmbedded creates a Config struct populated from embedded TOML
// note we're primarily using this for testing
func NewDefaultFromEmbedded() *Config {
	v := viper.New()
	v.SetConfigType("toml")

	if err := v.ReadConfig(strings.NewReader(defaultConfigTOML)); err != nil {
		panic(fmt.Sprintf("failed to load embedded defaults in test helper: %v", err))
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal embedded config in test helper: %v", err))
	}
	return cfg
}

// DefaultConfigPath returns ~/.nodellm/config.toml
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".nodellm", "config.toml"), nil
}

// createDefaultConfigFile creates the default config.toml file if it doesn't exist
func (m *Manager) createDefaultConfigFile(configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfigTOML), 0600); err != nil {
		return fmt.Errorf("failed to write default config file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Created default config.toml at %s\n", configPath)
	fmt.Fprintf(os.Stderr, "For a guided setup, run: nodellm init\n")

	if m.logger != nil {
		m.logger.Info("Created default config file", "path", configPath)
	}
	return nil
}
