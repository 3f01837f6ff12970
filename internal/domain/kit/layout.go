package kit

import (
	"os"
	"path"
	"path/filepath"
)

const (
	// PatchFilename is the patch file name inside the output directory.
	PatchFilename = "paperMC.patch"
	// ManifestFilename is the manifest file name inside the output directory.
	ManifestFilename = "patch.json"
	// DescriptorName is the protocol descriptor shipped by paper builds that support the daemon protocol.
	DescriptorName = "io.papermc.paper.daemon.protocol"
	// DescriptorDir is the directory holding the descriptor, both inside the jar and in the output.
	DescriptorDir = "META-INF"

	// DirMode is used for directories created in the output tree.
	DirMode os.FileMode = 0o755
	// FileMode is used for files written to the output tree.
	FileMode os.FileMode = 0o644
)

// DescriptorEntry is the descriptor's slash-separated path inside the jar.
func DescriptorEntry() string {
	return path.Join(DescriptorDir, DescriptorName)
}

// Layout resolves the files of a kit rooted at an output directory.
type Layout struct {
	// Root is the output directory.
	Root string
}

// NewLayout returns the layout for the output directory.
func NewLayout(root string) Layout {
	return Layout{Root: filepath.Clean(root)}
}

// Patch returns the path of the patch file.
func (l Layout) Patch() string {
	return filepath.Join(l.Root, PatchFilename)
}

// Manifest returns the path of patch.json.
func (l Layout) Manifest() string {
	return filepath.Join(l.Root, ManifestFilename)
}

// Descriptor returns the path the protocol descriptor is copied to.
func (l Layout) Descriptor() string {
	return filepath.Join(l.Root, DescriptorDir, DescriptorName)
}
