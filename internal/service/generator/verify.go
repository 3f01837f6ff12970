package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PaperMC/PaperclipMavenPlugin/internal/config"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/digest"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/domain/kit"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/logger"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/manifest"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/patch"
)

// ErrVerificationFailed is returned when a kit does not reproduce the paper jar.
var ErrVerificationFailed = kit.ErrVerificationFailed

var errUnsafePatchName = errors.New("patch must be a file name inside the kit directory")

// VerifyOptions are inputs for checking a generated kit. Non-empty fields
// override values from the config file.
type VerifyOptions struct {
	// ConfigPath is an optional YAML config file (defaults to paperclip.yaml when present).
	ConfigPath string
	// OutputDir is the kit directory containing patch.json.
	OutputDir string
	// VanillaJar is the vanilla jar the kit was generated against.
	VanillaJar string
	// DigestAlgorithm is the algorithm the manifest hashes were produced with.
	DigestAlgorithm string
	// LogLevel overrides the configured log level.
	LogLevel string
}

// Verify checks that the vanilla jar matches originalHash and that applying the
// patch to it yields a jar matching patchedHash.
func Verify(ctx context.Context, opts *VerifyOptions) error {
	ctx = logger.WithName(ctx, "paperclip-verify")

	cfg, err := resolveVerifyConfig(opts)
	if err != nil {
		return err
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	if cfg.VanillaJar == "" {
		return fmt.Errorf("%w: vanilla jar is not set", kit.ErrMissingInput)
	}

	layout := kit.NewLayout(cfg.OutputDir)

	m, err := manifest.Load(layout.Manifest())
	if err != nil {
		return err
	}

	if m.Patch == "" || filepath.Base(m.Patch) != m.Patch {
		return fmt.Errorf("%w: %q: %w", kit.ErrVerificationFailed, m.Patch, errUnsafePatchName)
	}

	original, err := digest.ParseHex(cfg.DigestAlgorithm, m.OriginalHash)
	if err != nil {
		return fmt.Errorf("%w: originalHash: %w", kit.ErrVerificationFailed, err)
	}

	patched, err := digest.ParseHex(cfg.DigestAlgorithm, m.PatchedHash)
	if err != nil {
		return fmt.Errorf("%w: patchedHash: %w", kit.ErrVerificationFailed, err)
	}

	vanilla, err := os.ReadFile(filepath.Clean(cfg.VanillaJar))
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: vanilla jar %s does not exist", kit.ErrMissingInput, cfg.VanillaJar)
	}

	if err != nil {
		return fmt.Errorf("%w: read vanilla jar: %w", kit.ErrIOFailure, err)
	}

	actual, err := digest.Sum(cfg.DigestAlgorithm, vanilla)
	if err != nil {
		return err
	}

	if !actual.Equal(original) {
		return fmt.Errorf("%w: vanilla jar digest %s does not match originalHash %s",
			kit.ErrVerificationFailed, actual.Hex(), m.OriginalHash)
	}

	logger.InfoKV(ctx, "Applying patch", "patch", m.Patch, "version", m.Version)

	if err = patch.Verify(ctx, cfg.VanillaJar, filepath.Join(layout.Root, m.Patch), patched); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Kit verified", "patched_hash", m.PatchedHash)

	return nil
}

// resolveVerifyConfig loads the config file and applies option overrides. Only
// the fields a kit check needs are validated.
func resolveVerifyConfig(opts *VerifyOptions) (*config.Config, error) {
	if opts == nil {
		opts = new(VerifyOptions)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	cfg.Merge(&config.Config{
		VanillaJar:      opts.VanillaJar,
		OutputDir:       opts.OutputDir,
		DigestAlgorithm: opts.DigestAlgorithm,
		LogLevel:        opts.LogLevel,
	})

	if err = config.ValidateOptional(cfg); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	return cfg, nil
}
