package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/PaperMC/PaperclipMavenPlugin/internal/config"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/logger"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/service/generator"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// logLevel overrides the configured log level.
	logLevel string

	// generateOptions collects the generator flags.
	generateOptions generator.Options

	// rootCmd generates the patch kit.
	rootCmd = &cobra.Command{
		Use:   "paperclip-generate",
		Short: "Generate the Paperclip patch and patch.json for a paper server jar",
		Long: "Diffs the paper server jar against the vanilla server jar, hashes both, copies the " +
			"protocol descriptor when the paper jar ships one and writes paperMC.patch and patch.json " +
			"to the output directory.",
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		PersistentPreRunE: applyLogLevel,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := notifyContext(cmd.Context())
			defer stop()

			options := generateOptions
			options.ConfigPath = configPath
			options.LogLevel = logLevel

			return generator.Run(ctx, &options)
		},
	}
)

// Execute runs the paperclip-generate CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	err := rootCmd.Execute()

	logger.Sync()

	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		fmt.Sprintf("path to configuration file (default %s when present)", config.DefaultConfigFilename))
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")

	bindGenerateFlags(rootCmd.Flags(), &generateOptions)

	rootCmd.AddCommand(verifyCmd, initConfigCmd)
}

// bindGenerateFlags registers the flags that override config file values.
func bindGenerateFlags(flags *pflag.FlagSet, opts *generator.Options) {
	flags.StringVar(&opts.VanillaJar, "vanilla-jar", "", "path to the vanilla server jar")
	flags.StringVar(&opts.PaperJar, "paper-jar", "", "path to the paper server jar")
	flags.StringVarP(&opts.OutputDir, "output", "o", "",
		fmt.Sprintf("output directory (default %s)", config.DefaultOutputDir))
	flags.StringVar(&opts.MinecraftVersion, "mc-version", "", "version label written to patch.json")
	flags.StringVar(&opts.SourceURLTemplate, "source-url-template", "",
		"vanilla download URL with {sha1} and {version} placeholders")
	flags.StringVar(&opts.DigestAlgorithm, "digest", "", "digest algorithm for the manifest hashes (default SHA-256)")
}

// applyLogLevel sets the global log level from --log-level.
func applyLogLevel(_ *cobra.Command, _ []string) error {
	if logLevel == "" {
		return nil
	}

	level, ok := logger.ParseLogLevel(logLevel)
	if !ok {
		return fmt.Errorf("unknown log level %q", logLevel)
	}

	logger.SetLevel(level)

	return nil
}

// notifyContext cancels on SIGINT and SIGTERM.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}

	return signal.NotifyContext(parent, syscall.SIGTERM, syscall.SIGINT)
}
