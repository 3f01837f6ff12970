package cmd

import (
	"github.com/spf13/cobra"

	"github.com/PaperMC/PaperclipMavenPlugin/internal/service/generator"
)

var (
	// verifyOptions collects the verify flags.
	verifyOptions generator.VerifyOptions

	// verifyCmd checks a generated kit against the vanilla jar.
	verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Check that a generated kit rebuilds the paper jar from the vanilla jar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := notifyContext(cmd.Context())
			defer stop()

			options := verifyOptions
			options.ConfigPath = configPath
			options.LogLevel = logLevel

			return generator.Verify(ctx, &options)
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	verifyCmd.Flags().StringVar(&verifyOptions.VanillaJar, "vanilla-jar", "",
		"path to the vanilla server jar (default vanilla_jar from the config file)")
	verifyCmd.Flags().StringVarP(&verifyOptions.OutputDir, "output", "o", "", "kit directory containing patch.json")
	verifyCmd.Flags().StringVar(&verifyOptions.DigestAlgorithm, "digest", "", "digest algorithm of the manifest hashes")
}
