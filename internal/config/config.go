package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PaperMC/PaperclipMavenPlugin/internal/digest"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/logger"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/manifest"
)

// Config holds the parameters of a generation run.
type Config struct {
	// VanillaJar is the unmodified server jar that launchers download themselves.
	VanillaJar string `yaml:"vanilla_jar"`
	// PaperJar is the modified server jar the kit reconstructs.
	PaperJar string `yaml:"paper_jar"`
	// OutputDir receives paperMC.patch, patch.json and the optional descriptor.
	OutputDir string `yaml:"output_dir"`
	// MinecraftVersion is the version label written into the manifest.
	MinecraftVersion string `yaml:"mc_version"`
	// SourceURLTemplate is the vanilla download URL with {sha1} and {version} placeholders.
	SourceURLTemplate string `yaml:"source_url_template"`
	// DigestAlgorithm hashes both jars for the manifest integrity fields.
	DigestAlgorithm string `yaml:"digest_algorithm"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultConfigFilename is looked up when no config path is given.
	DefaultConfigFilename = "paperclip.yaml"

	// DefaultOutputDir mirrors the generated resources directory of the build.
	DefaultOutputDir = "target/generated-resources"

	// DefaultLogLevel is used when none is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is used when saving config files.
	DefaultFilePermissions = 0o600
)

var (
	errConfigIsNotSet      = errors.New("configuration is not set")
	errVanillaJarRequired  = errors.New("vanilla jar path must be provided")
	errPaperJarRequired    = errors.New("paper jar path must be provided")
	errVersionRequired     = errors.New("minecraft version must be provided")
	errInvalidLogLevel     = errors.New("invalid log level")
	errTemplateNotAbsolute = errors.New("source url template must be an absolute URL")
)

// Default returns a configuration with every optional field set.
func Default() *Config {
	return &Config{
		OutputDir:         DefaultOutputDir,
		SourceURLTemplate: manifest.DefaultSourceURLTemplate,
		DigestAlgorithm:   digest.Primary,
		LogLevel:          DefaultLogLevel,
	}
}

// Load reads configuration from path. A missing file is only an error when
// the path was given explicitly. The result is not validated so that command
// line values can be merged first.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return new(Config), nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err = yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	return &cfg, nil
}

// Merge overrides fields of c with the non-empty fields of override.
func (c *Config) Merge(override *Config) {
	if override == nil {
		return
	}

	replace := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}

	replace(&c.VanillaJar, override.VanillaJar)
	replace(&c.PaperJar, override.PaperJar)
	replace(&c.OutputDir, override.OutputDir)
	replace(&c.MinecraftVersion, override.MinecraftVersion)
	replace(&c.SourceURLTemplate, override.SourceURLTemplate)
	replace(&c.DigestAlgorithm, override.DigestAlgorithm)
	replace(&c.LogLevel, override.LogLevel)
}

// Save writes cfg to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err = os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields, fills defaults and canonicalizes the digest algorithm.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if err := ValidateOptional(cfg); err != nil {
		return err
	}

	if strings.TrimSpace(cfg.VanillaJar) == "" {
		return errVanillaJarRequired
	}

	if strings.TrimSpace(cfg.PaperJar) == "" {
		return errPaperJarRequired
	}

	if strings.TrimSpace(cfg.MinecraftVersion) == "" {
		return errVersionRequired
	}

	return nil
}

// ValidateOptional fills defaults and checks only the optional fields.
func ValidateOptional(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	defaults := Default()

	if cfg.OutputDir == "" {
		cfg.OutputDir = defaults.OutputDir
	}

	if cfg.SourceURLTemplate == "" {
		cfg.SourceURLTemplate = defaults.SourceURLTemplate
	}

	if cfg.DigestAlgorithm == "" {
		cfg.DigestAlgorithm = defaults.DigestAlgorithm
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}

	algorithm, err := digest.Canonical(cfg.DigestAlgorithm)
	if err != nil {
		return err
	}

	cfg.DigestAlgorithm = algorithm

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errInvalidLogLevel, cfg.LogLevel)
	}

	return validateTemplate(cfg.SourceURLTemplate)
}

// validateTemplate checks that the template is an absolute URL once placeholders are filled.
func validateTemplate(template string) error {
	sample := manifest.SourceURL(template, digest.Digest{Sum: []byte{0}}, "0")

	parsed, err := url.ParseRequestURI(sample)
	if err != nil {
		return fmt.Errorf("invalid source url template: %w", err)
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("%w: %q", errTemplateNotAbsolute, template)
	}

	return nil
}
