package cmd

import (
	"fmt"
	"strings"

	"github.com/chriscorrea/nodellm/internal/config"
	"github.com/chriscorrea/nodellm/internal/llm/common"

	"github.com/spf13/cobra"
)

// createConfigCommand creates the config command and its subcommands
func createConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage nodellm configuration",
		Long: `Manage nodellm configuration settings. This command provides subcommands
to view and modify configuration values.

Examples:
  nodellm config                  # Show current configuration status
  nodellm config list             # Show every key with its current value
  nodellm config set key=value    # Set a configuration value

      nodellm config set openrouter-key=<your api key>
      nodellm config set parameters.aspect_ratio=16:9
      nodellm config set image-size=2K
  `,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := profile()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Configuration loaded successfully")
			if used := state.manager.Viper().ConfigFileUsed(); used != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Config file: %s\n", used)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Provider: %s\n", cfg.Parameters.Provider)

			if settings, err := cfg.Provider(cfg.Parameters.Provider); err == nil && cfg.Parameters.Provider != "mock" {
				fmt.Fprintf(cmd.OutOrStdout(), "Image model: %s\n", settings.Model)
				fmt.Fprintf(cmd.OutOrStdout(), "Chat model: %s\n", settings.ChatModel)
				fmt.Fprintf(cmd.OutOrStdout(), "API key: %s\n", describeKey(settings.APIKey))
			}
			return nil
		},
	}

	configCmd.AddCommand(createSetCommand(), createListKeysCommand())
	return configCmd
}

// describeKey shows whether a key is present without revealing it
func describeKey(key string) string {
	if key == "" {
		return "not set"
	}
	return common.RedactKey(key)
}

// createListKeysCommand creates the config list subcommand
func createListKeysCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configuration keys and their current values",
		Long:  "Display every configuration key with its description and current value, followed by the accepted aliases.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if state.manager == nil {
				return fmt.Errorf("config manager not initialized")
			}
			schema := config.DefaultConfigSchema()
			v := state.manager.Viper()

			fmt.Fprintln(cmd.OutOrStdout(), "Configuration keys:")
			for _, key := range schema.ListCanonicalKeys() {
				info, _ := schema.GetFieldInfo(key)
				value := fmt.Sprint(v.Get(key))
				if strings.HasSuffix(key, ".api_key") {
					value = describeKey(v.GetString(key))
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %-34s %-28s %s\n", key, value, info.Description)
			}

			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), "Aliases:")
			for _, alias := range schema.ListAliases() {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-20s → %s\n", alias, schema.Aliases[alias])
			}
			return nil
		},
	}
}
