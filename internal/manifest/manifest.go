package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PaperMC/PaperclipMavenPlugin/internal/digest"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/domain/kit"
)

const (
	// DefaultSourceURLTemplate points at the launcher object store, keyed by
	// the lower-case SHA-1 of the vanilla jar.
	DefaultSourceURLTemplate = "https://launcher.mojang.com/v1/objects/{sha1}/server.jar"
	// LegacySourceURLTemplate is the older download location keyed by version.
	LegacySourceURLTemplate = "https://s3.amazonaws.com/Minecraft.Download/versions/{version}/minecraft_server.{version}.jar"

	sha1Placeholder    = "{sha1}"
	versionPlaceholder = "{version}"
)

var errTrailingData = errors.New("trailing data after manifest")

// Manifest is the content of patch.json. Field order matches the historical output.
type Manifest struct {
	// Patch is the patch file name relative to the manifest.
	Patch string `json:"patch"`
	// SourceURL is where launchers download the vanilla jar from.
	SourceURL string `json:"sourceUrl"`
	// OriginalHash is the uppercase hex digest of the vanilla jar.
	OriginalHash string `json:"originalHash"`
	// PatchedHash is the uppercase hex digest of the paper jar.
	PatchedHash string `json:"patchedHash"`
	// Version is the free-form version label, usually the Minecraft version.
	Version string `json:"version"`
}

// New builds a manifest. It performs no validation.
func New(originalHash, patchedHash, patchFilename, sourceURL, version string) *Manifest {
	return &Manifest{
		Patch:        patchFilename,
		SourceURL:    sourceURL,
		OriginalHash: originalHash,
		PatchedHash:  patchedHash,
		Version:      version,
	}
}

// SourceURL fills the {sha1} and {version} placeholders of template.
func SourceURL(template string, legacy digest.Digest, version string) string {
	if template == "" {
		template = DefaultSourceURLTemplate
	}

	return strings.NewReplacer(
		sha1Placeholder, legacy.LowerHex(),
		versionPlaceholder, version,
	).Replace(template)
}

// Marshal encodes the manifest as compact JSON.
func (m *Manifest) Marshal() ([]byte, error) {
	return json.Marshal(m)
}

// Write persists m to path through a temporary file in the same directory so a
// reader never observes a half-written manifest.
func Write(path string, m *Manifest) error {
	data, err := m.Marshal()
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}

	path = filepath.Clean(path)

	temp, err := os.CreateTemp(filepath.Dir(path), ".patch-*.json")
	if err != nil {
		return fmt.Errorf("%w: create temporary manifest: %w", kit.ErrIOFailure, err)
	}

	// Harmless after a successful rename.
	defer func() {
		_ = os.Remove(temp.Name())
	}()

	if _, err = temp.Write(data); err != nil {
		_ = temp.Close()

		return fmt.Errorf("%w: write manifest: %w", kit.ErrIOFailure, err)
	}

	if err = temp.Close(); err != nil {
		return fmt.Errorf("%w: close manifest: %w", kit.ErrIOFailure, err)
	}

	if err = os.Chmod(temp.Name(), kit.FileMode); err != nil {
		return fmt.Errorf("%w: chmod manifest: %w", kit.ErrIOFailure, err)
	}

	if err = os.Rename(temp.Name(), path); err != nil {
		return fmt.Errorf("%w: rename manifest: %w", kit.ErrIOFailure, err)
	}

	return nil
}

// Load reads a manifest written by Write. Unknown fields are rejected.
func Load(path string) (*Manifest, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("%w: read manifest: %w", kit.ErrIOFailure, err)
	}

	decoder := json.NewDecoder(bytes.NewReader(contents))
	decoder.DisallowUnknownFields()

	var m Manifest
	if err = decoder.Decode(&m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}

	if decoder.More() {
		return nil, fmt.Errorf("decode manifest: %w", errTrailingData)
	}

	return &m, nil
}
