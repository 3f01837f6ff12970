// Package jartest builds small jar fixtures for tests.
package jartest

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/require"
)

// Write creates a deflated jar at path containing the given entries. Entries
// are written in sorted order so repeated calls produce identical bytes.
func Write(t *testing.T, path string, entries map[string][]byte) []byte {
	t.Helper()

	return WriteWithMethod(t, path, entries, zip.Deflate)
}

// WriteWithMethod is Write with an explicit compression method. zip.Store keeps
// entry bytes verbatim, which makes jar level diffs predictable.
func WriteWithMethod(t *testing.T, path string, entries map[string][]byte, method uint16) []byte {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	f, err := os.Create(path)
	require.NoError(t, err)

	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}

	sort.Strings(names)

	w := zip.NewWriter(f)

	for _, name := range names {
		header := &zip.FileHeader{
			Name:   name,
			Method: method,
		}

		entry, err := w.CreateHeader(header)
		require.NoError(t, err)

		_, err = entry.Write(entries[name])
		require.NoError(t, err)
	}

	require.NoError(t, w.Close())
	require.NoError(t, f.Close())

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	return contents
}

// Server returns entries resembling a server jar.
func Server(mainClass string, extra map[string][]byte) map[string][]byte {
	entries := map[string][]byte{
		"META-INF/MANIFEST.MF": []byte("Manifest-Version: 1.0\r\nMain-Class: " + mainClass + "\r\n\r\n"),
		"net/minecraft/server/Main.class": []byte{0xca, 0xfe, 0xba, 0xbe, 0x00, 0x00, 0x00, 0x34},
		"version.json":                    []byte(`{"id":"1.16.5"}`),
	}

	for name, data := range extra {
		entries[name] = data
	}

	return entries
}
