package cmd

import (
	"fmt"

	"github.com/chriscorrea/nodellm/internal/app"
	nodeIO "github.com/chriscorrea/nodellm/internal/io"
	"github.com/chriscorrea/nodellm/internal/llm/common"

	"github.com/spf13/cobra"
)

// createChatCommand creates the chat subcommand
func createChatCommand() *cobra.Command {
	chatCmd := &cobra.Command{
		Use:   "chat [prompt...]",
		Short: "Send a chat request and print the reply",
		Long: `Send a chat completion request to the configured gateway.

The prompt is built from piped stdin, --file contents and the arguments, in that order.
Reference images given with --image are attached after the prompt text.`,
		Example: `  nodellm chat "Describe a lighthouse at dusk"
  cat notes.md | nodellm chat --system "Summarize in one line"
  nodellm chat --image sketch.png "What is in this picture?"`,
		RunE: runChat,
	}

	chatCmd.Flags().String("system", "", "The system prompt (default from parameters.system_prompt)")
	chatCmd.Flags().Float64("temperature", common.DefaultTemperature, "Sampling temperature")
	chatCmd.Flags().Int("max-tokens", common.DefaultMaxTokens, "Maximum number of tokens in the reply")
	chatCmd.Flags().StringSlice("file", nil, "Text file(s) prepended to the prompt")
	chatCmd.Flags().StringSlice("image", nil, "Image file(s) sent with the prompt")
	return chatCmd
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := profile()
	if err != nil {
		return err
	}
	providerName, err := resolveProvider(cmd, cfg)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	files, _ := flags.GetStringSlice("file")
	imagePaths, _ := flags.GetStringSlice("image")

	prompt, err := nodeIO.ReadPrompt(stdinFile(cmd), args, files)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	images, err := nodeIO.ReadImages(imagePaths)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidInput, err)
	}

	// flags win over the profile only when given explicitly
	system := override(flags, "system", cfg.Parameters.SystemPrompt, flags.GetString)
	temperature := override(flags, "temperature", cfg.Parameters.Temperature, flags.GetFloat64)
	maxTokens := override(flags, "max-tokens", cfg.Parameters.MaxTokens, flags.GetInt)

	base, err := baseConfiguration(cmd, cfg, providerName, common.KindChat)
	if err != nil {
		return err
	}

	a, err := newApp(cmd, cfg)
	if err != nil {
		return err
	}
	reply, err := a.Chat(cmd.Context(), providerName, app.ChatParams(base, temperature, maxTokens), common.ChatInput{
		System: system,
		Prompt: prompt,
		Images: images,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), reply)
	return nil
}
