package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// createManCommand creates the hidden man page generator for root
func createManCommand(root *cobra.Command) *cobra.Command {
	manCmd := &cobra.Command{
		Use:    "man",
		Short:  "Generate man pages for nodellm",
		Long:   `This command generates the man pages for the nodellm CLI.`,
		Hidden: true, // hide this from the public help output
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			header := &doc.GenManHeader{
				Title:   "NODELLM",
				Section: "1", // Section 1 is for executable programs and shell commands
				Source:  "nodellm CLI",
			}

			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create man directory: %w", err)
			}
			if err := doc.GenManTree(root, header, dir); err != nil {
				return fmt.Errorf("failed to generate man pages: %w", err)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "Man pages successfully generated in %s\n", dir)
			return nil
		},
	}
	manCmd.Flags().String("dir", "./man", "Directory to write man pages to")
	return manCmd
}
