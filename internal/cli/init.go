package cli

import (
	"fmt"
	"os"

	"github.com/khanglvm/gift-hub/internal/config"
	"github.com/spf13/cobra"
)

// NewInitCmd creates the 'init' command that writes a default config.
func NewInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write the default configuration to ~/.gift-hub.json (or --config).
An existing file is kept unless --force is given; the previous version is
saved as .bak.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := configPath(cmd)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if _, err := os.Stat(path); err == nil && !force {
				fmt.Fprintf(out, "Config already exists: %s\n", path)
				fmt.Fprintln(out, "Use --force to overwrite.")
				return nil
			}

			if err := config.Save(config.NewConfig(), path); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config")

	return cmd
}
