package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestNewDefault(t *testing.T) {
	config := NewDefaultFromEmbedded()

	if config == nil {
		t.Fatal("NewDefault() returned nil")
	}

	t.Run("Parameters", func(t *testing.T) {
		parameters := config.Parameters

		if parameters.Provider != "openrouter" {
			t.Errorf("Expected Provider to be openrouter, got %s", parameters.Provider)
		}
		if parameters.Temperature != 0.7 {
			t.Errorf("Expected Temperature to be 0.7, got %f", parameters.Temperature)
		}
		if parameters.MaxTokens != 2000 {
			t.Errorf("Expected MaxTokens to be 2000, got %d", parameters.MaxTokens)
		}
		if parameters.AspectRatio != "1:1" || parameters.ImageSize != "1K" {
			t.Errorf("Expected 1:1 / 1K image defaults, got %s / %s", parameters.AspectRatio, parameters.ImageSize)
		}
		if parameters.ImageTemperature != 1.0 {
			t.Errorf("Expected ImageTemperature to be 1.0, got %f", parameters.ImageTemperature)
		}
		if parameters.N != 1 {
			t.Errorf("Expected N to be 1, got %d", parameters.N)
		}
		if parameters.MaxAttempts != 0 {
			t.Errorf("Expected no global attempt override, got %d", parameters.MaxAttempts)
		}
	})

	t.Run("Providers", func(t *testing.T) {
		tests := []struct {
			name     string
			base     string
			model    string
			attempts int
		}{
			{"openrouter", "https://openrouter.ai/api/v1", "google/gemini-3-pro-image-preview", 2},
			{"litellm", "", "gemini/gemini-3-pro-image-preview", 1},
			{"openai", "https://api.openai.com/v1", "gpt-image-1", 2},
		}

		for _, tt := range tests {
			p, err := config.Provider(tt.name)
			if err != nil {
				t.Fatalf("Provider(%q) failed: %v", tt.name, err)
			}
			if p.APIBase != tt.base {
				t.Errorf("%s: expected api_base %q, got %q", tt.name, tt.base, p.APIBase)
			}
			if p.Model != tt.model {
				t.Errorf("%s: expected model %q, got %q", tt.name, tt.model, p.Model)
			}
			if p.ChatModel == "" {
				t.Errorf("%s: expected a chat model", tt.name)
			}
			if p.MaxAttempts != tt.attempts {
				t.Errorf("%s: expected %d attempts, got %d", tt.name, tt.attempts, p.MaxAttempts)
			}
		}
	})
}

func TestConfig_Provider(t *testing.T) {
	cfg := NewDefaultFromEmbedded()
	cfg.Providers.OpenRouter.SiteURL = "https://hatchery.example.com"
	cfg.Providers.OpenRouter.SiteName = "Central Hatchery"

	p, err := cfg.Provider("openrouter")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.SiteURL != "https://hatchery.example.com" || p.SiteName != "Central Hatchery" {
		t.Errorf("attribution not carried over: %+v", p)
	}

	if _, err := cfg.Provider("mock"); err != nil {
		t.Errorf("mock should need no section, got %v", err)
	}
	if _, err := cfg.Provider("entropic"); err == nil {
		t.Error("expected an error for an unknown provider")
	}
}

func TestConfig_Attempts(t *testing.T) {
	cfg := NewDefaultFromEmbedded()
	p, _ := cfg.Provider("openrouter")

	if got := cfg.Attempts(p); got != 2 {
		t.Errorf("Expected provider attempts 2, got %d", got)
	}

	cfg.Parameters.MaxAttempts = 4
	if got := cfg.Attempts(p); got != 4 {
		t.Errorf("Expected global override 4, got %d", got)
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name           string
		setupFile      func(t *testing.T, tempDir string) string
		expectError    bool
		validateConfig func(t *testing.T, cfg *Config)
	}{
		{
			name: "Successful Load",
			setupFile: func(t *testing.T, tempDir string) string {
				configPath := filepath.Join(tempDir, "test_config.toml")
				configContent := `[parameters]
provider = "litellm"
temperature = 0.5
aspect_ratio = "16:9"

[providers.litellm]
api_base = "https://litellm.example.com/v1"
model = "gemini/sestina-image"
`
				if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
					t.Fatalf("Failed to create test config file: %v", err)
				}
				return configPath
			},
			validateConfig: func(t *testing.T, cfg *Config) {
				if cfg.Parameters.Provider != "litellm" {
					t.Errorf("Expected Provider to be litellm, got %s", cfg.Parameters.Provider)
				}
				if cfg.Parameters.Temperature != 0.5 {
					t.Errorf("Expected Temperature to be 0.5, got %f", cfg.Parameters.Temperature)
				}
				if cfg.Parameters.AspectRatio != "16:9" {
					t.Errorf("Expected AspectRatio to be 16:9, got %s", cfg.Parameters.AspectRatio)
				}
				if cfg.Providers.LiteLLM.APIBase != "https://litellm.example.com/v1" {
					t.Errorf("Expected LiteLLM api_base override, got %s", cfg.Providers.LiteLLM.APIBase)
				}
				if cfg.Providers.LiteLLM.Model != "gemini/sestina-image" {
					t.Errorf("Expected LiteLLM model override, got %s", cfg.Providers.LiteLLM.Model)
				}
				// defaults are preserved for non-overridden values
				if cfg.Parameters.MaxTokens != 2000 {
					t.Errorf("Expected MaxTokens default to be preserved, got %d", cfg.Parameters.MaxTokens)
				}
				if cfg.Providers.LiteLLM.MaxAttempts != 1 {
					t.Errorf("Expected LiteLLM attempts default to be preserved, got %d", cfg.Providers.LiteLLM.MaxAttempts)
				}
			},
		},
		{
			name: "File Not Found",
			setupFile: func(t *testing.T, tempDir string) string {
				return filepath.Join(tempDir, "nested", "nonexistent.toml")
			},
			validateConfig: func(t *testing.T, cfg *Config) {
				if cfg.Parameters.Temperature != 0.7 {
					t.Errorf("Expected default Temperature to be 0.7, got %f", cfg.Parameters.Temperature)
				}
				if cfg.Providers.OpenRouter.APIBase == "" {
					t.Errorf("Expected default OpenRouter api_base, got empty string")
				}
			},
		},
		{
			name: "Malformed File",
			setupFile: func(t *testing.T, tempDir string) string {
				configPath := filepath.Join(tempDir, "malformed.toml")
				configContent := `[parameters
temperature = "invalid
missing_quote = test`
				if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
					t.Fatalf("Failed to create malformed config file: %v", err)
				}
				return configPath
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			configPath := tt.setupFile(t, tempDir)

			manager := NewManager()
			err := manager.Load(configPath)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected an error, but got none")
				}
				var configFileNotFoundError viper.ConfigFileNotFoundError
				if errors.As(err, &configFileNotFoundError) {
					t.Errorf("Expected parse error, but got ConfigFileNotFoundError")
				}
				return
			}

			if err != nil {
				t.Errorf("Expected no error, but got: %v", err)
			}
			if tt.validateConfig != nil {
				tt.validateConfig(t, manager.Config())
			}
		})
	}
}

func TestLoad_CreatesDefaultFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), ".nodellm", "config.toml")

	if err := NewManager().Load(configPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("default config file was not created: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected 0600 permissions, got %v", info.Mode().Perm())
	}

	content, _ := os.ReadFile(configPath)
	if !strings.Contains(string(content), "[providers.openrouter]") {
		t.Error("default config file is missing the openrouter section")
	}
}

// TestNewManager tests the manager constructor
func TestNewManager(t *testing.T) {
	manager := NewManager()

	if manager == nil {
		t.Fatal("NewManager() returned nil")
	}
	if manager.v == nil {
		t.Error("Manager's Viper instance is nil")
	}

	// config starts empty; defaults are loaded in Load()
	if manager.Config().Parameters.Temperature != 0.0 {
		t.Errorf("Expected empty Temperature to be 0.0, got %f", manager.Config().Parameters.Temperature)
	}
}

func TestLoadProviderKeysFromEnv(t *testing.T) {
	tests := []struct {
		name           string
		section        string
		configAPIKey   string
		envAPIKey      string
		envVarName     string
		expectedAPIKey string
	}{
		{
			name:           "Load OpenRouter API key from env when config is empty",
			section:        "openrouter",
			envAPIKey:      "env-openrouter-key",
			envVarName:     "OPENROUTER_API_KEY",
			expectedAPIKey: "env-openrouter-key",
		},
		{
			name:           "Use config API key when env is empty",
			section:        "litellm",
			configAPIKey:   "config-litellm-key",
			envVarName:     "LITELLM_API_KEY",
			expectedAPIKey: "config-litellm-key",
		},
		{
			name:           "Environment variable overrides config (Viper precedence)",
			section:        "openai",
			configAPIKey:   "config-openai-key",
			envAPIKey:      "env-openai-key",
			envVarName:     "OPENAI_API_KEY",
			expectedAPIKey: "env-openai-key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envVarName, tt.envAPIKey)
			if tt.envAPIKey == "" {
				os.Unsetenv(tt.envVarName)
			}

			configPath := filepath.Join(t.TempDir(), "config.toml")
			if tt.configAPIKey != "" {
				content := "[providers." + tt.section + "]\napi_key = \"" + tt.configAPIKey + "\"\n"
				if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
					t.Fatalf("Failed to write config file: %v", err)
				}
			}

			manager := NewManager()
			if err := manager.Load(configPath); err != nil {
				t.Fatalf("Failed to load config: %v", err)
			}

			p, err := manager.Config().Provider(tt.section)
			if err != nil {
				t.Fatalf("Provider failed: %v", err)
			}
			if p.APIKey != tt.expectedAPIKey {
				t.Errorf("Expected API key '%s', got '%s'", tt.expectedAPIKey, p.APIKey)
			}
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")

	manager := NewManager()
	if err := manager.Load(configPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	manager.Viper().Set("parameters.image_size", "4K")
	manager.Viper().Set("providers.openrouter.site_name", "Central Hatchery")
	if err := manager.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := NewManager()
	if err := reloaded.Load(configPath); err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Config().Parameters.ImageSize != "4K" {
		t.Errorf("Expected saved image size 4K, got %s", reloaded.Config().Parameters.ImageSize)
	}
	if reloaded.Config().Providers.OpenRouter.SiteName != "Central Hatchery" {
		t.Errorf("Expected saved site name, got %q", reloaded.Config().Providers.OpenRouter.SiteName)
	}
}

func TestSave_SkipsKeysFromEnv(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "sk-or-from-environment")
	t.Setenv("LITELLM_API_KEY", "")
	configPath := filepath.Join(t.TempDir(), "config.toml")

	manager := NewManager()
	if err := manager.Load(configPath); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	manager.Viper().Set("parameters.temperature", 0.3)
	manager.Viper().Set("providers.litellm.api_key", "sk-litellm-typed-in")
	if err := manager.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	raw, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read saved config: %v", err)
	}
	saved := string(raw)
	if strings.Contains(saved, "sk-or-from-environment") {
		t.Errorf("key from OPENROUTER_API_KEY was written to %s", configPath)
	}
	if !strings.Contains(saved, "sk-litellm-typed-in") {
		t.Errorf("explicitly set litellm key missing from saved config:\n%s", saved)
	}
	if !strings.Contains(saved, "0.3") {
		t.Errorf("saved temperature missing:\n%s", saved)
	}

	// the running config still sees the environment key
	if got := manager.Config().Providers.OpenRouter.APIKey; got != "sk-or-from-environment" {
		t.Errorf("Expected env key to stay active, got %q", got)
	}
}

func TestConfigAliases(t *testing.T) {
	manager := NewManager()
	if err := manager.Load(filepath.Join(t.TempDir(), "config.toml")); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	manager.Viper().Set("openrouter-key", "sk-or-alias")
	if got := manager.Viper().GetString("providers.openrouter.api_key"); got != "sk-or-alias" {
		t.Errorf("Expected alias to set canonical key, got %q", got)
	}
}
