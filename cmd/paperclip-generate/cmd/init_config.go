package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/PaperMC/PaperclipMavenPlugin/internal/config"
)

var (
	errConfigExists = errors.New("configuration file already exists")

	// overwriteConfig allows init-config to replace an existing file.
	overwriteConfig bool

	// initConfigCmd writes a config file with defaults filled in.
	initConfigCmd = &cobra.Command{
		Use:   "init-config",
		Short: "Write a configuration file with default values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configPath
			if path == "" {
				path = config.DefaultConfigFilename
			}

			if _, err := os.Stat(path); err == nil && !overwriteConfig {
				return fmt.Errorf("%s: %w (use --force to replace it)", path, errConfigExists)
			}

			if err := config.Save(path, config.Default()); err != nil {
				return err
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)

			return nil
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	initConfigCmd.Flags().BoolVarP(&overwriteConfig, "force", "f", false, "replace an existing file")
}
