package cmd

import (
	"fmt"
	"os"

	"github.com/chriscorrea/nodellm/internal/app"
	"github.com/chriscorrea/nodellm/internal/config"
	"github.com/chriscorrea/nodellm/internal/data"
	"github.com/chriscorrea/nodellm/internal/llm/common"
	"github.com/chriscorrea/nodellm/internal/registry"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// placeholder credentials for the offline mock provider
const (
	mockAPIKey = "mock-key"
	mockModel  = "mock-model"
)

// profile returns the loaded configuration
func profile() (*config.Config, error) {
	if state.manager == nil {
		return nil, fmt.Errorf("config manager not initialized")
	}
	return state.manager.Config(), nil
}

// resolveProvider picks the provider for this invocation: --test forces the mock,
// otherwise --provider or parameters.provider from the profile
func resolveProvider(cmd *cobra.Command, cfg *config.Config) (string, error) {
	useMock, err := cmd.Flags().GetBool("test")
	if err != nil {
		return "", fmt.Errorf("failed to get test flag: %w", err)
	}
	if useMock {
		return "mock", nil
	}

	name := cfg.Parameters.Provider
	if !registry.IsProviderRegistered(name) {
		// Lookup formats the list of available providers
		_, err := registry.Lookup(name)
		return "", err
	}
	return name, nil
}

// baseConfiguration builds the endpoint stage for providerName from the profile.
// Image requests use the provider's model, chat requests its chat_model.
func baseConfiguration(cmd *cobra.Command, cfg *config.Config, providerName, kind string) (common.Configuration, error) {
	model, err := cmd.Flags().GetString("model")
	if err != nil {
		return common.Configuration{}, fmt.Errorf("failed to get model flag: %w", err)
	}

	if providerName == "mock" {
		if model == "" {
			model = mockModel
		}
		return app.BaseConfig(registry.DefaultBaseURL(providerName), mockAPIKey, model), nil
	}

	settings, err := cfg.Provider(providerName)
	if err != nil {
		return common.Configuration{}, fmt.Errorf("%w: %v", common.ErrInvalidConfig, err)
	}

	if model == "" {
		model = settings.Model
		if kind == common.KindChat && settings.ChatModel != "" {
			model = settings.ChatModel
		}
	}

	if settings.APIKey == "" {
		return common.Configuration{}, missingKeyError(providerName)
	}

	apiBase := settings.APIBase
	if apiBase == "" {
		apiBase = registry.DefaultBaseURL(providerName)
	}
	if apiBase == "" {
		return common.Configuration{}, fmt.Errorf(`%w: no api_base configured for %s.

Point it at your deployment, e.g. nodellm config set %s-url=https://litellm.example.com/v1`,
			common.ErrInvalidConfig, providerName, providerName)
	}

	if providerName == "openrouter" {
		return app.OpenRouterBaseConfig(apiBase, settings.APIKey, model, settings.SiteURL, settings.SiteName), nil
	}
	return app.BaseConfig(apiBase, settings.APIKey, model), nil
}

// missingKeyError explains where the API key for providerName can come from
func missingKeyError(providerName string) error {
	keyEnv := "the provider's API key variable"
	catalog := data.NewProviderRegistry()
	if err := catalog.Load(); err == nil {
		if info, ok := catalog.GetProvider(providerName); ok && info.KeyEnv != "" {
			keyEnv = info.KeyEnv
		}
	}
	return fmt.Errorf(`%w: no API key configured for %s.

You can set the key using the environment variable %s or via nodellm config set %s-key=<your_key>`,
		common.ErrInvalidConfig, providerName, keyEnv, providerName)
}

// newApp creates the app with the CLI's logger, spinner and optional metrics
func newApp(cmd *cobra.Command, cfg *config.Config) (*app.App, error) {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}

	opts := []app.Option{
		app.WithSpinner(cmd.ErrOrStderr()),
		app.WithUserAgent("nodellm/" + version),
	}
	if state.collector != nil {
		opts = append(opts, app.WithRecorder(state.collector))
	}
	return app.NewApp(cfg, state.logger, verbose, opts...), nil
}

// stdinFile returns the command's stdin when it is a real file, so piped
// prompts can be detected; other readers are ignored
func stdinFile(cmd *cobra.Command) *os.File {
	f, _ := cmd.InOrStdin().(*os.File)
	return f
}

// override returns the flag value when it was given explicitly, else current
func override[T any](flags *pflag.FlagSet, name string, current T, get func(string) (T, error)) T {
	if !flags.Changed(name) {
		return current
	}
	v, err := get(name)
	if err != nil {
		return current
	}
	return v
}
