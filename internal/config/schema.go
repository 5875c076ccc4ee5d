package config

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/chriscorrea/nodellm/internal/llm/common"
)

// ConfigFieldInfo contains metadata about a configuration field
type ConfigFieldInfo struct {
	Type        reflect.Type
	Description string
	Default     interface{}
	Validation  func(interface{}) error
}

// ConfigSchema holds the registry of valid configuration paths and aliases
type ConfigSchema struct {
	ValidPaths map[string]ConfigFieldInfo
	Aliases    map[string]string
}

// validateFloat64Range returns a validation function for float64 values within a range
func validateFloat64Range(min, max float64) func(interface{}) error {
	return func(value interface{}) error {
		if v, ok := value.(float64); ok {
			if v < min || v > max {
				return fmt.Errorf("value must be between %.2f and %.2f", min, max)
			}
			return nil
		}
		return fmt.Errorf("expected float64, got %T", value)
	}
}

// validateIntRange returns a validation function for int values within a range
func validateIntRange(min, max int) func(interface{}) error {
	return func(value interface{}) error {
		if v, ok := value.(int); ok {
			if v < min || v > max {
				return fmt.Errorf("value must be between %d and %d", min, max)
			}
			return nil
		}
		return fmt.Errorf("expected int, got %T", value)
	}
}

// validateOneOf returns a validation function accepting only the listed strings
func validateOneOf(allowed ...string) func(interface{}) error {
	return func(value interface{}) error {
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		for _, a := range allowed {
			if v == a {
				return nil
			}
		}
		return fmt.Errorf("value must be one of: %s", strings.Join(allowed, ", "))
	}
}

// validateAPIBase accepts an empty value or a public http(s) URL
func validateAPIBase() func(interface{}) error {
	return func(value interface{}) error {
		v, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		if v == "" {
			return nil
		}
		if !strings.HasPrefix(v, "https://") && !strings.HasPrefix(v, "http://") {
			return fmt.Errorf("api_base must start with http:// or https://")
		}
		_, err := common.ValidateBaseURL(v)
		return err
	}
}

func stringField(description string, def string, validation func(interface{}) error) ConfigFieldInfo {
	return ConfigFieldInfo{
		Type:        reflect.TypeOf(""),
		Description: description,
		Default:     def,
		Validation:  validation,
	}
}

// DefaultConfigSchema returns the default configuration schema
func DefaultConfigSchema() *ConfigSchema {
	paths := map[string]ConfigFieldInfo{
		"parameters.provider": stringField("Default provider (openrouter, litellm, openai, mock)", "openrouter",
			validateOneOf("openrouter", "litellm", "openai", "mock")),
		"parameters.system_prompt": stringField("Default system prompt for chat requests", "", nil),
		"parameters.temperature": {
			Type:        reflect.TypeOf(float64(0)),
			Description: "Chat temperature (0.0-2.0)",
			Default:     0.7,
			Validation:  validateFloat64Range(0.0, 2.0),
		},
		"parameters.max_tokens": {
			Type:        reflect.TypeOf(int(0)),
			Description: "Maximum number of tokens in a chat response",
			Default:     2000,
			Validation:  validateIntRange(1, 128000),
		},
		"parameters.aspect_ratio": stringField("Aspect ratio for generated images", "1:1",
			validateOneOf("1:1", "16:9", "4:3", "9:16", "3:4", "2:3", "3:2", "4:5", "5:4", "21:9")),
		"parameters.image_size": stringField("Image size for generated images", "1K",
			validateOneOf("1K", "2K", "4K")),
		"parameters.image_temperature": {
			Type:        reflect.TypeOf(float64(0)),
			Description: "Image generation temperature (0.0-1.0)",
			Default:     1.0,
			Validation:  validateFloat64Range(0.0, 1.0),
		},
		"parameters.n": {
			Type:        reflect.TypeOf(int(0)),
			Description: "Number of images to return (1-4)",
			Default:     1,
			Validation:  validateIntRange(1, 4),
		},
		"parameters.max_attempts": {
			Type:        reflect.TypeOf(int(0)),
			Description: "Attempts per request for every provider; 0 keeps provider defaults (max: 5)",
			Default:     0,
			Validation:  validateIntRange(0, 5),
		},

		"providers.openrouter.site_url":  stringField("HTTP-Referer attribution sent to OpenRouter", "", nil),
		"providers.openrouter.site_name": stringField("X-Title attribution sent to OpenRouter", "", nil),
	}

	defaults := map[string]struct {
		label, base, model, chatModel string
		attempts                      int
	}{
		"openrouter": {"OpenRouter", "https://openrouter.ai/api/v1", "google/gemini-3-pro-image-preview", "google/gemini-2.5-flash", 2},
		"litellm":    {"LiteLLM", "", "gemini/gemini-3-pro-image-preview", "gemini/gemini-2.5-flash", 1},
		"openai":     {"OpenAI", "https://api.openai.com/v1", "gpt-image-1", "gpt-4.1", 2},
	}
	for name, d := range defaults {
		prefix := "providers." + name + "."
		paths[prefix+"api_base"] = stringField(d.label+" API base URL", d.base, validateAPIBase())
		paths[prefix+"api_key"] = stringField(d.label+" API key", "", nil)
		paths[prefix+"model"] = stringField(d.label+" image generation model", d.model, nil)
		paths[prefix+"chat_model"] = stringField(d.label+" chat model", d.chatModel, nil)
		paths[prefix+"max_attempts"] = ConfigFieldInfo{
			Type:        reflect.TypeOf(int(0)),
			Description: d.label + " attempts per request (max: 5)",
			Default:     d.attempts,
			Validation:  validateIntRange(1, 5),
		}
	}

	return &ConfigSchema{
		ValidPaths: paths,
		Aliases: map[string]string{
			// parameter aliases
			"provider":          "parameters.provider",
			"temperature":       "parameters.temperature",
			"temp":              "parameters.temperature",
			"max-tokens":        "parameters.max_tokens",
			"max-attempts":      "parameters.max_attempts",
			"system":            "parameters.system_prompt",
			"system-prompt":     "parameters.system_prompt",
			"aspect-ratio":      "parameters.aspect_ratio",
			"image-size":        "parameters.image_size",
			"image-temperature": "parameters.image_temperature",
			"n":                 "parameters.n",

			// provider api key aliases
			"openrouter-key": "providers.openrouter.api_key",
			"litellm-key":    "providers.litellm.api_key",
			"openai-key":     "providers.openai.api_key",

			// endpoints
			"openrouter-url": "providers.openrouter.api_base",
			"litellm-url":    "providers.litellm.api_base",
			"openai-url":     "providers.openai.api_base",

			// attribution
			"site-url":  "providers.openrouter.site_url",
			"site-name": "providers.openrouter.site_name",
		},
	}
}

// ResolveKey resolves an alias to its canonical path or returns the path if already canonical
func (s *ConfigSchema) ResolveKey(key string) (string, error) {
	// Check if it's an alias first
	if canonicalPath, exists := s.Aliases[key]; exists {
		return canonicalPath, nil
	}

	// Check if it's a valid direct path
	if _, exists := s.ValidPaths[key]; exists {
		return key, nil
	}

	// Return error with suggestions
	suggestions := s.FindSimilarKeys(key)
	if len(suggestions) > 0 {
		return "", fmt.Errorf("invalid config key %q. Did you mean one of: %s", key, strings.Join(suggestions, ", "))
	}

	return "", fmt.Errorf("invalid config key %q. Use 'nodellm config list' to see valid keys", key)
}

// ValidateValue validates a value against the field's type and validation rules
func (s *ConfigSchema) ValidateValue(path string, value interface{}) error {
	fieldInfo, exists := s.ValidPaths[path]
	if !exists {
		return fmt.Errorf("unknown config path: %s", path)
	}

	// Check type compatibility
	valueType := reflect.TypeOf(value)
	if valueType != fieldInfo.Type {
		return fmt.Errorf("expected %s, got %s", fieldInfo.Type.String(), valueType.String())
	}

	// Run custom validation if present
	if fieldInfo.Validation != nil {
		return fieldInfo.Validation(value)
	}

	return nil
}

// GetFieldInfo returns information about a configuration field
func (s *ConfigSchema) GetFieldInfo(path string) (ConfigFieldInfo, error) {
	fieldInfo, exists := s.ValidPaths[path]
	if !exists {
		return ConfigFieldInfo{}, fmt.Errorf("unknown config path: %s", path)
	}
	return fieldInfo, nil
}

// ListCanonicalKeys returns only the canonical configuration paths
func (s *ConfigSchema) ListCanonicalKeys() []string {
	var keys []string
	for path := range s.ValidPaths {
		keys = append(keys, path)
	}
	sort.Strings(keys)
	return keys
}

// ListAliases returns only the alias keys
func (s *ConfigSchema) ListAliases() []string {
	var aliases []string
	for alias := range s.Aliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	return aliases
}

// FindSimilarKeys finds keys similar to the input using simple string matching
func (s *ConfigSchema) FindSimilarKeys(key string) []string {
	var suggestions []string
	lowerKey := strings.ToLower(key)

	// Check canonical paths
	for path := range s.ValidPaths {
		if strings.Contains(strings.ToLower(path), lowerKey) ||
			strings.Contains(lowerKey, strings.ToLower(strings.Split(path, ".")[len(strings.Split(path, "."))-1])) {
			suggestions = append(suggestions, path)
		}
	}

	// Check aliases
	for alias := range s.Aliases {
		if strings.Contains(strings.ToLower(alias), lowerKey) ||
			strings.Contains(lowerKey, strings.ToLower(alias)) {
			suggestions = append(suggestions, alias)
		}
	}

	// Limit suggestions to avoid overwhelming output
	if len(suggestions) > 5 {
		suggestions = suggestions[:5]
	}

	return suggestions
}
