package generator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PaperMC/PaperclipMavenPlugin/internal/archive"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/config"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/digest"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/domain/kit"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/logger"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/manifest"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/patch"
)

// Errors a run can fail with. They are matched with errors.Is; the underlying
// cause stays reachable through the same chain.
var (
	ErrMissingInput          = kit.ErrMissingInput
	ErrCorruptArtifact       = kit.ErrCorruptArtifact
	ErrUnsupportedAlgorithm  = digest.ErrUnsupportedAlgorithm
	ErrPatchGenerationFailed = kit.ErrPatchGenerationFailed
	ErrIOFailure             = kit.ErrIOFailure
)

var errNotARegularFile = errors.New("not a regular file")

// Options contains inputs for the generator entry point. Non-empty fields
// override values from the config file.
type Options struct {
	// ConfigPath is an optional YAML config file (defaults to paperclip.yaml when present).
	ConfigPath string
	// VanillaJar is the unmodified server jar.
	VanillaJar string
	// PaperJar is the modified server jar.
	PaperJar string
	// OutputDir receives the generated kit.
	OutputDir string
	// MinecraftVersion is the version label written into patch.json.
	MinecraftVersion string
	// SourceURLTemplate overrides the vanilla download URL template.
	SourceURLTemplate string
	// DigestAlgorithm overrides the integrity digest algorithm.
	DigestAlgorithm string
	// LogLevel overrides the configured log level.
	LogLevel string
}

// Result describes the files produced by a successful run.
type Result struct {
	// Manifest is the record written to patch.json.
	Manifest *manifest.Manifest
	// PatchPath is the location of paperMC.patch.
	PatchPath string
	// ManifestPath is the location of patch.json.
	ManifestPath string
	// DescriptorPath is where the protocol descriptor is (or would be) copied.
	DescriptorPath string
	// DescriptorCopied reports whether the paper jar contained the descriptor.
	DescriptorCopied bool
}

// Generator runs the kit pipeline for one configuration.
type Generator struct {
	// cfg is the validated run configuration.
	cfg *config.Config
	// differ computes the patch.
	differ patch.Differ
}

// Option configures a Generator.
type Option func(*Generator)

// WithDiffer replaces the bsdiff differ.
func WithDiffer(differ patch.Differ) Option {
	return func(g *Generator) {
		if differ != nil {
			g.differ = differ
		}
	}
}

// inputs holds both jars read fully into memory.
type inputs struct {
	vanilla []byte
	paper   []byte
}

// digests holds the hashes computed over the inputs.
type digests struct {
	original digest.Digest
	patched  digest.Digest
	legacy   digest.Digest
}

// Run resolves the configuration and generates the kit.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "paperclip-generate")

	cfg, err := ResolveConfig(opts)
	if err != nil {
		return err
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	result, err := New(cfg).Generate(ctx)
	if err != nil {
		logger.ErrorKV(ctx, "Kit generation failed", "error", err)
		return fmt.Errorf("generate kit: %w", err)
	}

	logger.InfoKV(ctx, "Kit generated",
		"output_dir", cfg.OutputDir,
		"original_hash", result.Manifest.OriginalHash,
		"patched_hash", result.Manifest.PatchedHash,
		"descriptor", result.DescriptorCopied,
	)

	return nil
}

// ResolveConfig loads the config file, applies option overrides and validates the result.
func ResolveConfig(opts *Options) (*config.Config, error) {
	if opts == nil {
		opts = new(Options)
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	cfg.Merge(&config.Config{
		VanillaJar:        opts.VanillaJar,
		PaperJar:          opts.PaperJar,
		OutputDir:         opts.OutputDir,
		MinecraftVersion:  opts.MinecraftVersion,
		SourceURLTemplate: opts.SourceURLTemplate,
		DigestAlgorithm:   opts.DigestAlgorithm,
		LogLevel:          opts.LogLevel,
	})

	if err = config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	return cfg, nil
}

// New creates a generator for a validated configuration.
func New(cfg *config.Config, opts ...Option) *Generator {
	g := &Generator{
		cfg:    cfg,
		differ: patch.BSDiff{},
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate runs every stage in order and stops at the first failure.
func (g *Generator) Generate(ctx context.Context) (*Result, error) {
	layout := kit.NewLayout(g.cfg.OutputDir)
	result := &Result{
		PatchPath:      layout.Patch(),
		ManifestPath:   layout.Manifest(),
		DescriptorPath: layout.Descriptor(),
	}

	if err := g.validateInputsExist(ctx); err != nil {
		return nil, err
	}

	if err := g.ensureOutputDir(ctx, layout); err != nil {
		return nil, err
	}

	logger.Info(ctx, "Checking paper jar for a protocol descriptor")

	copied, err := archive.ExtractDescriptor(ctx, g.cfg.PaperJar, layout.Descriptor())
	if err != nil {
		return nil, err
	}

	result.DescriptorCopied = copied

	in, err := g.readInputs(ctx)
	if err != nil {
		return nil, err
	}

	logger.InfoKV(ctx, "Creating patch", "path", layout.Patch())

	if err = patch.Generate(ctx, g.differ, in.vanilla, in.paper, layout.Patch()); err != nil {
		return nil, err
	}

	sums, err := g.computeDigests(ctx, in)
	if err != nil {
		return nil, err
	}

	result.Manifest = manifest.New(
		sums.original.Hex(),
		sums.patched.Hex(),
		kit.PatchFilename,
		manifest.SourceURL(g.cfg.SourceURLTemplate, sums.legacy, g.cfg.MinecraftVersion),
		g.cfg.MinecraftVersion,
	)

	logger.InfoKV(ctx, "Writing manifest", "path", layout.Manifest())

	if err = manifest.Write(layout.Manifest(), result.Manifest); err != nil {
		return nil, err
	}

	return result, nil
}

// validateInputsExist fails fast, before anything in the output directory is touched.
func (g *Generator) validateInputsExist(ctx context.Context) error {
	for _, input := range []struct{ name, path string }{
		{name: "vanilla jar", path: g.cfg.VanillaJar},
		{name: "paper jar", path: g.cfg.PaperJar},
	} {
		info, err := os.Stat(input.path)
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s %s does not exist", kit.ErrMissingInput, input.name, input.path)
		}

		if err != nil {
			return fmt.Errorf("%w: stat %s %s: %w", kit.ErrIOFailure, input.name, input.path, err)
		}

		if !info.Mode().IsRegular() {
			return fmt.Errorf("%w: %s %s: %w", kit.ErrMissingInput, input.name, input.path, errNotARegularFile)
		}

		logger.DebugKV(ctx, "Found input", "input", input.name, "path", input.path, "bytes", info.Size())
	}

	return nil
}

// ensureOutputDir creates the output directory and removes the patch and
// manifest of a previous run, so a failed run never leaves a stale pair behind.
func (g *Generator) ensureOutputDir(ctx context.Context, layout kit.Layout) error {
	if err := os.MkdirAll(layout.Root, kit.DirMode); err != nil {
		return fmt.Errorf("%w: create output directory %s: %w", kit.ErrIOFailure, layout.Root, err)
	}

	for _, stale := range []string{layout.Manifest(), layout.Patch()} {
		err := os.Remove(stale)
		if err == nil {
			logger.DebugKV(ctx, "Removed output of previous run", "path", stale)
			continue
		}

		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: remove %s: %w", kit.ErrIOFailure, stale, err)
		}
	}

	return nil
}

func (g *Generator) readInputs(ctx context.Context) (*inputs, error) {
	logger.Info(ctx, "Reading jars into memory")

	vanilla, err := os.ReadFile(filepath.Clean(g.cfg.VanillaJar))
	if err != nil {
		return nil, fmt.Errorf("%w: read vanilla jar: %w", kit.ErrIOFailure, err)
	}

	paper, err := os.ReadFile(filepath.Clean(g.cfg.PaperJar))
	if err != nil {
		return nil, fmt.Errorf("%w: read paper jar: %w", kit.ErrIOFailure, err)
	}

	return &inputs{
		vanilla: vanilla,
		paper:   paper,
	}, nil
}

func (g *Generator) computeDigests(ctx context.Context, in *inputs) (*digests, error) {
	logger.InfoKV(ctx, "Hashing files", "algorithm", g.cfg.DigestAlgorithm)

	original, err := digest.Sum(g.cfg.DigestAlgorithm, in.vanilla)
	if err != nil {
		return nil, err
	}

	patched, err := digest.Sum(g.cfg.DigestAlgorithm, in.paper)
	if err != nil {
		return nil, err
	}

	legacy, err := digest.Sum(digest.Legacy, in.vanilla)
	if err != nil {
		return nil, err
	}

	return &digests{
		original: original,
		patched:  patched,
		legacy:   legacy,
	}, nil
}
