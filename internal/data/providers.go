package data

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"
)

// see https://pkg.go.dev/embed for more on embedding files

//go:embed configs/*.json
var configFS embed.FS

// ModelInfo holds the suggested models for a provider
type ModelInfo struct {
	Image string `json:"image"`
	Chat  string `json:"chat"`
}

// ProviderInfo represents a provider's catalog entry
type ProviderInfo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Reference   string    `json:"reference,omitempty"`
	APIBase     string    `json:"api_base"`
	KeyEnv      string    `json:"key_env"`
	Models      ModelInfo `json:"models"`
}

// RequiresAPIBase reports whether the user must supply the endpoint
func (p ProviderInfo) RequiresAPIBase() bool {
	return p.APIBase == ""
}

// ProvidersData represents the structure of providers.json
type ProvidersData struct {
	Providers map[string]ProviderInfo `json:"providers"`
}

// ProviderRegistry handles loading and accessing provider data
type ProviderRegistry struct {
	data *ProvidersData
}

// NewProviderRegistry creates a new provider registry instance
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{}
}

// Load loads the embedded provider catalog
func (p *ProviderRegistry) Load() error {
	raw, err := configFS.ReadFile("configs/providers.json")
	if err != nil {
		return fmt.Errorf("failed to read embedded providers.json: %w", err)
	}
	data, err := Parse(raw)
	if err != nil {
		return err
	}
	p.data = data
	return nil
}

// Parse decodes a provider catalog
func Parse(raw []byte) (*ProvidersData, error) {
	var providersData ProvidersData
	if err := json.Unmarshal(raw, &providersData); err != nil {
		return nil, fmt.Errorf("failed to parse providers.json: %w", err)
	}
	if len(providersData.Providers) == 0 {
		return nil, fmt.Errorf("providers.json lists no providers")
	}
	return &providersData, nil
}

// GetProviders returns all available providers
func (p *ProviderRegistry) GetProviders() map[string]ProviderInfo {
	if p.data == nil {
		return nil
	}
	return p.data.Providers
}

// GetProvider returns a specific provider by key
func (p *ProviderRegistry) GetProvider(key string) (ProviderInfo, bool) {
	if p.data == nil {
		return ProviderInfo{}, false
	}
	provider, exists := p.data.Providers[key]
	return provider, exists
}

// keys returns provider keys in sorted order
func (p *ProviderRegistry) keys() []string {
	if p.data == nil {
		return nil
	}
	keys := make([]string, 0, len(p.data.Providers))
	for key := range p.data.Providers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// GetProviderOptions returns formatted options for survey selection
func (p *ProviderRegistry) GetProviderOptions() []string {
	var options []string
	for _, key := range p.keys() {
		options = append(options, formatOption(p.data.Providers[key]))
	}
	return options
}

// GetProviderKeyFromOption extracts the provider key from a formatted option string
func (p *ProviderRegistry) GetProviderKeyFromOption(selectedOption string) string {
	for _, key := range p.keys() {
		if selectedOption == formatOption(p.data.Providers[key]) {
			return key
		}
	}
	return ""
}

func formatOption(info ProviderInfo) string {
	return fmt.Sprintf("%s - %s", info.Name, info.Description)
}
