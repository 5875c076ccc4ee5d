package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chriscorrea/nodellm/internal/llm/common"
	"github.com/chriscorrea/nodellm/internal/llm/litellm"
	"github.com/chriscorrea/nodellm/internal/llm/mock"
	"github.com/chriscorrea/nodellm/internal/llm/openai"
	"github.com/chriscorrea/nodellm/internal/llm/openrouter"
)

// AllProviders contains registered provider bindings
var AllProviders = map[string]common.Provider{
	"litellm":    litellm.New(),
	"mock":       mock.New(),
	"openai":     openai.New(),
	"openrouter": openrouter.New(),
}

// Lookup returns the binding registered under name
func Lookup(name string) (common.Provider, error) {
	provider, exists := AllProviders[name]
	if !exists {
		return nil, fmt.Errorf("%w: unsupported provider '%s'. Available providers: %s",
			common.ErrInvalidConfig, name, availableProviders())
	}
	return provider, nil
}

// CreateProvider creates a client for the named provider using the central registry
func CreateProvider(name string, opts ...common.ClientOption) (common.Client, error) {
	provider, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return provider.CreateClient(opts...), nil
}

// GetAvailableProviders returns the registered provider names in sorted order
func GetAvailableProviders() []string {
	providers := make([]string, 0, len(AllProviders))
	for name := range AllProviders {
		providers = append(providers, name)
	}
	sort.Strings(providers)
	return providers
}

// availableProviders returns comma-separated string of available providers
func availableProviders() string {
	providers := GetAvailableProviders()
	if len(providers) == 0 {
		return "none"
	}
	return strings.Join(providers, ", ")
}

// IsProviderRegistered checks if provider is registered
func IsProviderRegistered(name string) bool {
	_, exists := AllProviders[name]
	return exists
}

// DefaultBaseURL returns the provider's default api_base, or "" if it has none
// or is not registered
func DefaultBaseURL(name string) string {
	provider, exists := AllProviders[name]
	if !exists {
		return ""
	}
	return provider.DefaultBaseURL()
}
