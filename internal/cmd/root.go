package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/chriscorrea/nodellm/internal/app"
	"github.com/chriscorrea/nodellm/internal/config"
	"github.com/chriscorrea/nodellm/internal/llm/common"
	"github.com/chriscorrea/nodellm/internal/logger"
	"github.com/chriscorrea/nodellm/internal/metrics"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// current version (hardcoded for now, could be replaced with build flags)
const version = "0.1.0"

// rootCmdState holds the config manager, logger and metrics for the command
type rootCmdState struct {
	manager   *config.Manager
	logger    *slog.Logger
	collector *metrics.Collector
}

// state is the global state instance for the root command
var state = &rootCmdState{}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if len(path) == 1 {
		return home, nil
	}

	return filepath.Join(home, path[1:]), nil
}

// loadEnvFile reads KEY=value pairs from path into the environment;
// variables that are already set win and a missing file is not an error
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load env file %q: %w", path, err)
	}
	return nil
}

// newRootCmd builds the command tree; every run gets fresh flag state
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "nodellm",
		Version: version,
		Short:   "Chat and image generation through OpenRouter, LiteLLM and OpenAI-compatible gateways",
		Long: `nodellm sends chat and image generation requests to Gemini and OpenAI-compatible
models through OpenRouter, a LiteLLM proxy or any OpenAI-compatible endpoint.

It is the command line face of the gateway client used by node-graph hosts.`,
		SilenceUsage:  true, // Don't show usage after errors
		SilenceErrors: true, // Execute prints errors itself

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// get the debug flag value and create logger
			debug, err := cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("failed to get debug flag: %w", err)
			}
			state.logger = logger.New(cmd.ErrOrStderr(), debug)

			envFile, err := cmd.Flags().GetString("env-file")
			if err != nil {
				return fmt.Errorf("failed to get env-file flag: %w", err)
			}
			if err := loadEnvFile(envFile); err != nil {
				return err
			}

			// instantiate the config manager with logger
			state.manager = config.NewManager().WithLogger(state.logger)

			configPath, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("failed to get config flag: %w", err)
			}
			if configPath == "" {
				configPath, err = config.DefaultConfigPath()
				if err != nil {
					return err
				}
			}
			configPath, err = expandHomePath(configPath)
			if err != nil {
				return fmt.Errorf("failed to expand home path: %w", err)
			}

			// bind persistent flags to their corresponding Viper keys
			viper := state.manager.Viper()
			flagBindings := map[string]string{
				"provider":     "parameters.provider",
				"max-attempts": "parameters.max_attempts",
			}
			for flagName, viperKey := range flagBindings {
				if err := viper.BindPFlag(viperKey, cmd.Flags().Lookup(flagName)); err != nil {
					return fmt.Errorf("failed to bind flag %s: %w", flagName, err)
				}
			}

			if err := state.manager.Load(configPath); err != nil {
				return fmt.Errorf("%w: failed to load configuration: %v", common.ErrInvalidConfig, err)
			}

			withMetrics, err := cmd.Flags().GetBool("metrics")
			if err != nil {
				return fmt.Errorf("failed to get metrics flag: %w", err)
			}
			if withMetrics {
				state.collector = metrics.NewCollector(metrics.Namespace, state.logger)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default ~/.nodellm/config.toml)")
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to a .env file with API keys")
	rootCmd.PersistentFlags().StringP("provider", "p", "", "Gateway to use: openrouter, litellm or openai")
	rootCmd.PersistentFlags().StringP("model", "m", "", "Model name, overriding the configured one")
	rootCmd.PersistentFlags().Int("max-attempts", 0, "Attempts per request before giving up (0 = provider default, max: 5)")
	rootCmd.PersistentFlags().Bool("test", false, "Use mock provider for testing")
	rootCmd.PersistentFlags().Bool("metrics", false, "Print request metrics to stderr when done")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Display request parameters in formatted table")
	rootCmd.PersistentFlags().BoolP("debug", "D", false, "Enable detailed debug logging")

	if err := rootCmd.PersistentFlags().MarkHidden("test"); err != nil {
		panic(err)
	}

	rootCmd.AddCommand(
		createChatCommand(),
		createImageCommand(),
		createConfigCommand(),
		createInitCommand(),
		createVersionCommand(),
		createManCommand(rootCmd),
	)
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags
// this is called by main.main() – it only needs to happen once to the rootCmd
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	state = &rootCmdState{}
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	err := rootCmd.Execute()

	if state.collector != nil {
		if werr := state.collector.WriteText(rootCmd.ErrOrStderr()); werr != nil && state.logger != nil {
			state.logger.Warn("failed to write metrics", "error", werr)
		}
	}

	if err != nil {
		fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		return app.ExitCode(err)
	}
	return app.ExitOK
}

// createVersionCommand creates the version subcommand
func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the current version of nodellm.",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(cmd.OutOrStdout(), "nodellm version ", version, "\n")
			return nil
		},
	}
}
