package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/PaperMC/PaperclipMavenPlugin/internal/domain/kit"
)

// Container is a read-only view over the entries of a jar.
type Container struct {
	// path is the jar location on disk, kept for error messages.
	path string
	// reader owns the open file handle.
	reader *zip.ReadCloser
	// entries indexes regular file entries by their cleaned name.
	entries map[string]*zip.File
}

// Open opens the jar at path. A file that is not a zip container yields kit.ErrCorruptArtifact.
func Open(jarPath string) (*Container, error) {
	reader, err := zip.OpenReader(filepath.Clean(jarPath))
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", kit.ErrCorruptArtifact, jarPath, err)
	}

	entries := make(map[string]*zip.File, len(reader.File))

	for _, file := range reader.File {
		if file.FileInfo().IsDir() {
			continue
		}

		entries[cleanEntry(file.Name)] = file
	}

	return &Container{
		path:    jarPath,
		reader:  reader,
		entries: entries,
	}, nil
}

// Close releases the underlying file handle.
func (c *Container) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}

	return c.reader.Close()
}

// Exists reports whether a regular file entry with the given name is present.
func (c *Container) Exists(name string) bool {
	_, ok := c.entries[cleanEntry(name)]

	return ok
}

// CopyOut writes the entry to destination, creating parent directories and
// replacing any existing file.
func (c *Container) CopyOut(name, destination string) error {
	file, ok := c.entries[cleanEntry(name)]
	if !ok {
		return fmt.Errorf("%w: %s: entry %s: %w", kit.ErrIOFailure, c.path, name, os.ErrNotExist)
	}

	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("%w: %s: open entry %s: %w", kit.ErrCorruptArtifact, c.path, name, err)
	}

	defer func() {
		_ = src.Close()
	}()

	if err = os.MkdirAll(filepath.Dir(destination), kit.DirMode); err != nil {
		return fmt.Errorf("%w: create directory for %s: %w", kit.ErrIOFailure, destination, err)
	}

	dst, err := os.OpenFile(filepath.Clean(destination), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, kit.FileMode)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", kit.ErrIOFailure, destination, err)
	}

	if _, err = io.Copy(dst, src); err != nil {
		_ = dst.Close()

		if isFormatError(err) {
			return fmt.Errorf("%w: %s: read entry %s: %w", kit.ErrCorruptArtifact, c.path, name, err)
		}

		return fmt.Errorf("%w: copy %s to %s: %w", kit.ErrIOFailure, name, destination, err)
	}

	if err = dst.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", kit.ErrIOFailure, destination, err)
	}

	return nil
}

// cleanEntry normalizes a zip entry name for lookups.
func cleanEntry(name string) string {
	return strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(name, "\\", "/")), "/")
}

func isFormatError(err error) bool {
	return errors.Is(err, zip.ErrChecksum) ||
		errors.Is(err, zip.ErrFormat) ||
		errors.Is(err, zip.ErrAlgorithm)
}
