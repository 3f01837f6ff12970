package generator

import (
	"bytes"
	"context"
	"crypto/sha1" //nolint:gosec // The vanilla download URL is keyed by SHA-1.
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"

	"github.com/PaperMC/PaperclipMavenPlugin/internal/config"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/domain/kit"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/manifest"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/patch"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/testutil/jartest"
)

// fakeDiffer writes a deterministic stand-in for a patch.
var fakeDiffer = patch.DifferFunc(func(source, target []byte, w io.Writer) error {
	sum := sha256.Sum256(append(bytes.Clone(source), target...))
	_, err := w.Write(append([]byte("FAKEDIFF"), sum[:]...))

	return err
})

// fixture holds the inputs of one generator run.
type fixture struct {
	dir     string
	vanilla []byte
	paper   []byte
	cfg     *config.Config
}

// newFixture writes a vanilla jar and a paper jar with the given extra entries.
func newFixture(t *testing.T, paperExtra map[string][]byte) *fixture {
	t.Helper()

	dir := t.TempDir()
	f := &fixture{
		dir: dir,
		cfg: &config.Config{
			VanillaJar:       filepath.Join(dir, "mojang_1.16.5.jar"),
			PaperJar:         filepath.Join(dir, "paper-1.16.5.jar"),
			OutputDir:        filepath.Join(dir, "target", "generated-resources"),
			MinecraftVersion: "1.16.5",
		},
	}

	f.vanilla = jartest.Write(t, f.cfg.VanillaJar, jartest.Server("net.minecraft.server.Main", nil))
	f.paper = jartest.Write(t, f.cfg.PaperJar, jartest.Server("org.bukkit.craftbukkit.Main", paperExtra))

	require.NoError(t, config.Validate(f.cfg))

	return f
}

func (f *fixture) layout() kit.Layout {
	return kit.NewLayout(f.cfg.OutputDir)
}

// TestGenerate_WritesKit checks patch, manifest hashes and the SHA-1 keyed source URL.
func TestGenerate_WritesKit(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	result, err := New(f.cfg, WithDiffer(fakeDiffer)).Generate(context.Background())
	require.NoError(t, err)
	require.False(t, result.DescriptorCopied)

	originalSum := sha256.Sum256(f.vanilla)
	patchedSum := sha256.Sum256(f.paper)
	legacySum := sha1.Sum(f.vanilla) //nolint:gosec // The vanilla download URL is keyed by SHA-1.

	want := &manifest.Manifest{
		Patch:        kit.PatchFilename,
		SourceURL:    "https://launcher.mojang.com/v1/objects/" + hex.EncodeToString(legacySum[:]) + "/server.jar",
		OriginalHash: strings.ToUpper(hex.EncodeToString(originalSum[:])),
		PatchedHash:  strings.ToUpper(hex.EncodeToString(patchedSum[:])),
		Version:      "1.16.5",
	}
	require.Equal(t, want, result.Manifest)

	onDisk, err := manifest.Load(f.layout().Manifest())
	require.NoError(t, err)
	require.Equal(t, want, onDisk)

	patchBytes, err := os.ReadFile(f.layout().Patch())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(patchBytes, []byte("FAKEDIFF")))
}

// TestGenerate_SingleEntryByteFlip diffs two stored jars that differ in one payload byte.
func TestGenerate_SingleEntryByteFlip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	payload := make([]byte, 64*1024)
	flipped := bytes.Clone(payload)
	flipped[50] ^= 0xff

	cfg := &config.Config{
		VanillaJar:       filepath.Join(dir, "vanilla.jar"),
		PaperJar:         filepath.Join(dir, "paper.jar"),
		OutputDir:        filepath.Join(dir, "out"),
		MinecraftVersion: "1.16.5",
	}
	require.NoError(t, config.Validate(cfg))

	jartest.WriteWithMethod(t, cfg.VanillaJar, map[string][]byte{"data.bin": payload}, zip.Store)
	paper := jartest.WriteWithMethod(t, cfg.PaperJar, map[string][]byte{"data.bin": flipped}, zip.Store)

	result, err := New(cfg).Generate(context.Background())
	require.NoError(t, err)
	require.NotEqual(t, result.Manifest.OriginalHash, result.Manifest.PatchedHash)

	info, err := os.Stat(result.PatchPath)
	require.NoError(t, err)
	require.Positive(t, info.Size())
	require.Less(t, info.Size(), int64(len(paper)))
}

// TestGenerate_MissingVanilla aborts before touching the output directory.
func TestGenerate_MissingVanilla(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	require.NoError(t, os.Remove(f.cfg.VanillaJar))

	_, err := New(f.cfg, WithDiffer(fakeDiffer)).Generate(context.Background())
	require.ErrorIs(t, err, ErrMissingInput)
	require.Contains(t, err.Error(), f.cfg.VanillaJar)

	_, err = os.Stat(f.cfg.OutputDir)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestGenerate_MissingPaper names the paper jar and leaves an existing kit untouched.
func TestGenerate_MissingPaper(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	_, err := New(f.cfg, WithDiffer(fakeDiffer)).Generate(context.Background())
	require.NoError(t, err)

	before, err := os.ReadFile(f.layout().Manifest())
	require.NoError(t, err)

	require.NoError(t, os.Remove(f.cfg.PaperJar))

	_, err = New(f.cfg, WithDiffer(fakeDiffer)).Generate(context.Background())
	require.ErrorIs(t, err, ErrMissingInput)
	require.Contains(t, err.Error(), "paper jar")

	after, err := os.ReadFile(f.layout().Manifest())
	require.NoError(t, err)
	require.Equal(t, before, after)
}

// TestGenerate_CorruptPaper aborts with ErrCorruptArtifact and leaves no patch behind.
func TestGenerate_CorruptPaper(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	_, err := New(f.cfg, WithDiffer(fakeDiffer)).Generate(context.Background())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(f.cfg.PaperJar, []byte("not a jar at all"), 0o600))

	_, err = New(f.cfg, WithDiffer(fakeDiffer)).Generate(context.Background())
	require.ErrorIs(t, err, ErrCorruptArtifact)

	for _, path := range []string{f.layout().Patch(), f.layout().Manifest()} {
		_, err = os.Stat(path)
		require.ErrorIs(t, err, os.ErrNotExist, path)
	}
}

// TestGenerate_Descriptor copies the descriptor when present and removes it when a later build drops it.
func TestGenerate_Descriptor(t *testing.T) {
	t.Parallel()

	f := newFixture(t, map[string][]byte{kit.DescriptorEntry(): []byte("v1")})

	result, err := New(f.cfg, WithDiffer(fakeDiffer)).Generate(context.Background())
	require.NoError(t, err)
	require.True(t, result.DescriptorCopied)

	got, err := os.ReadFile(f.layout().Descriptor())
	require.NoError(t, err)
	require.Equal(t, "v1", string(got))

	jartest.Write(t, f.cfg.PaperJar, jartest.Server("org.bukkit.craftbukkit.Main", nil))

	result, err = New(f.cfg, WithDiffer(fakeDiffer)).Generate(context.Background())
	require.NoError(t, err)
	require.False(t, result.DescriptorCopied)

	_, err = os.Stat(f.layout().Descriptor())
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestGenerate_Idempotent produces byte-identical manifests and patches across runs.
func TestGenerate_Idempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	read := func(path string) []byte {
		data, err := os.ReadFile(path)
		require.NoError(t, err)

		return data
	}

	_, err := New(f.cfg).Generate(context.Background())
	require.NoError(t, err)

	firstManifest := read(f.layout().Manifest())
	firstPatch := read(f.layout().Patch())

	second := *f.cfg
	second.OutputDir = filepath.Join(f.dir, "second")

	_, err = New(&second).Generate(context.Background())
	require.NoError(t, err)

	layout := kit.NewLayout(second.OutputDir)
	require.Equal(t, firstManifest, read(layout.Manifest()))
	require.Equal(t, firstPatch, read(layout.Patch()))

	// Regenerating in place yields the same bytes as well.
	_, err = New(f.cfg).Generate(context.Background())
	require.NoError(t, err)
	require.Equal(t, firstManifest, read(f.layout().Manifest()))
}

// TestGenerate_DifferFailure surfaces the patch error and writes no manifest.
func TestGenerate_DifferFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)

	failing := patch.DifferFunc(func(_, _ []byte, _ io.Writer) error {
		return io.ErrShortWrite
	})

	_, err := New(f.cfg, WithDiffer(failing)).Generate(context.Background())
	require.ErrorIs(t, err, ErrPatchGenerationFailed)
	require.ErrorIs(t, err, io.ErrShortWrite)

	_, err = os.Stat(f.layout().Manifest())
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestGenerate_UnwritableOutput reports an I/O failure when the output path is a file.
func TestGenerate_UnwritableOutput(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	require.NoError(t, os.MkdirAll(filepath.Dir(f.cfg.OutputDir), 0o755))
	require.NoError(t, os.WriteFile(f.cfg.OutputDir, []byte("file"), 0o600))

	_, err := New(f.cfg, WithDiffer(fakeDiffer)).Generate(context.Background())
	require.ErrorIs(t, err, ErrIOFailure)
}

// TestGenerate_DigestAlgorithm hashes with the configured algorithm but keys the URL by SHA-1.
func TestGenerate_DigestAlgorithm(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	f.cfg.DigestAlgorithm = "blake3"
	f.cfg.SourceURLTemplate = "https://mirror.local/{version}/{sha1}.jar"
	require.NoError(t, config.Validate(f.cfg))

	result, err := New(f.cfg, WithDiffer(fakeDiffer)).Generate(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Manifest.OriginalHash, 64)

	legacySum := sha1.Sum(f.vanilla) //nolint:gosec // The vanilla download URL is keyed by SHA-1.
	require.Equal(t, "https://mirror.local/1.16.5/"+hex.EncodeToString(legacySum[:])+".jar", result.Manifest.SourceURL)

	sha := sha256.Sum256(f.vanilla)
	require.NotEqual(t, strings.ToUpper(hex.EncodeToString(sha[:])), result.Manifest.OriginalHash)
}

// TestRun_ConfigFile loads settings from YAML and lets options override them.
func TestRun_ConfigFile(t *testing.T) {
	t.Parallel()

	f := newFixture(t, nil)
	cfgPath := filepath.Join(f.dir, config.DefaultConfigFilename)

	fileCfg := *f.cfg
	fileCfg.MinecraftVersion = "from-file"
	require.NoError(t, config.Save(cfgPath, &fileCfg))

	err := Run(context.Background(), &Options{
		ConfigPath:       cfgPath,
		MinecraftVersion: "1.16.5-R0.1",
	})
	require.NoError(t, err)

	m, err := manifest.Load(f.layout().Manifest())
	require.NoError(t, err)
	require.Equal(t, "1.16.5-R0.1", m.Version)
}

// TestRun_InvalidOptions rejects a run with no inputs configured.
func TestRun_InvalidOptions(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{ConfigPath: filepath.Join(t.TempDir(), "absent.yaml")})
	require.Error(t, err)

	_, err = ResolveConfig(&Options{
		ConfigPath:       filepath.Join(t.TempDir(), "absent.yaml"),
		VanillaJar:       "v.jar",
		PaperJar:         "p.jar",
		MinecraftVersion: "1",
	})
	require.ErrorIs(t, err, os.ErrNotExist)
}
