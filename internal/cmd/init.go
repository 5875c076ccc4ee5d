package cmd

import (
	"fmt"

	"github.com/chriscorrea/nodellm/internal/data"
	"github.com/chriscorrea/nodellm/internal/llm/common"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// askOne is replaced in tests to script survey answers
var askOne = func(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
	return survey.AskOne(p, response, opts...)
}

// createInitCommand creates the init subcommand
func createInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize nodellm config through an interactive process",
		Long: `Initialize your nodellm configuration:
• Choose a gateway (OpenRouter, LiteLLM proxy or OpenAI-compatible)
• Set the endpoint for self-hosted gateways
• Choose image and chat models
• Store API key(s)

Your configuration will be saved to ~/.nodellm/config.toml`,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	// create color functions for consistent styling
	cyan := color.New(color.FgCyan).SprintFunc()
	magenta := color.New(color.FgMagenta).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(cmd.ErrOrStderr(), "\n%s\n", cyan("Welcome to nodellm"))
	fmt.Fprintf(cmd.ErrOrStderr(), "\n%s\n", "Let's get you set up, this will only take a minute!")

	catalog := data.NewProviderRegistry()
	if err := catalog.Load(); err != nil {
		return fmt.Errorf("failed to load provider data: %w", err)
	}
	if state.manager == nil {
		return fmt.Errorf("config manager not initialized")
	}
	viper := state.manager.Viper()

	providerOptions := catalog.GetProviderOptions()
	var selectedProvider string
	providerPrompt := &survey.Select{
		Message: fmt.Sprintf("%s Choose your gateway:", cyan("🤖")),
		Options: providerOptions,
		Default: providerOptions[0],
	}
	if err := askOne(providerPrompt, &selectedProvider); err != nil {
		return fmt.Errorf("survey error: %w", err)
	}

	providerKey := catalog.GetProviderKeyFromOption(selectedProvider)
	if providerKey == "" {
		return fmt.Errorf("failed to determine provider key")
	}
	providerInfo, exists := catalog.GetProvider(providerKey)
	if !exists {
		return fmt.Errorf("provider %s not found", providerKey)
	}
	prefix := "providers." + providerKey + "."

	// self-hosted gateways have no public endpoint to default to
	apiBase := providerInfo.APIBase
	help := "The OpenAI-compatible endpoint, usually ending in /v1"
	if providerInfo.RequiresAPIBase() {
		help = "Where your " + providerInfo.Name + " deployment listens, e.g. https://litellm.example.com/v1"
	}
	basePrompt := &survey.Input{
		Message: fmt.Sprintf("%s %s API base URL:", cyan("🔗"), providerInfo.Name),
		Default: apiBase,
		Help:    help,
	}
	if err := askOne(basePrompt, &apiBase, survey.WithValidator(validateAPIBaseAnswer)); err != nil {
		return fmt.Errorf("survey error: %w", err)
	}
	viper.Set(prefix+"api_base", common.NormalizeBaseURL(apiBase))

	var apiKey string
	apiKeyPrompt := &survey.Password{
		Message: fmt.Sprintf("%s Enter your %s API key (leave empty to use %s):", cyan("🔑"), providerInfo.Name, providerInfo.KeyEnv),
	}
	if err := askOne(apiKeyPrompt, &apiKey); err != nil {
		return fmt.Errorf("survey error: %w", err)
	}
	if apiKey != "" {
		viper.Set(prefix+"api_key", apiKey)
	}

	var imageModel string
	imagePrompt := &survey.Input{
		Message: fmt.Sprintf("%s Image generation model:", cyan("🎨")),
		Default: providerInfo.Models.Image,
		Help:    "This model will be used by nodellm image",
	}
	if err := askOne(imagePrompt, &imageModel); err != nil {
		return fmt.Errorf("survey error: %w", err)
	}

	var chatModel string
	chatPrompt := &survey.Input{
		Message: fmt.Sprintf("%s Chat model:", cyan("💬")),
		Default: providerInfo.Models.Chat,
		Help:    "This model will be used by nodellm chat",
	}
	if err := askOne(chatPrompt, &chatModel); err != nil {
		return fmt.Errorf("survey error: %w", err)
	}

	viper.Set(prefix+"model", imageModel)
	viper.Set(prefix+"chat_model", chatModel)
	viper.Set("parameters.provider", providerKey)

	fmt.Fprintf(cmd.ErrOrStderr(), "\n%s %s configured successfully!\n", green("✅"), providerInfo.Name)
	fmt.Fprintf(cmd.ErrOrStderr(), "\n%s Saving your configuration...\n", yellow("💾"))

	if err := state.manager.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "\n%s All set! Your configuration has been saved to %s\n",
		green("🎉"), magenta(viper.ConfigFileUsed()))
	fmt.Fprintf(cmd.ErrOrStderr(), "\n%s Try: %s\n",
		cyan("💡"), magenta(`nodellm image "A lighthouse at dusk, watercolor"`))
	fmt.Fprintf(cmd.ErrOrStderr(), "\n%s For more options, run: %s\n\n",
		cyan("📖"), magenta("nodellm --help"))
	return nil
}

// validateAPIBaseAnswer rejects endpoints the client would refuse to call
func validateAPIBaseAnswer(ans interface{}) error {
	s, ok := ans.(string)
	if !ok {
		return fmt.Errorf("expected a URL")
	}
	_, err := common.ValidateBaseURL(s)
	return err
}
