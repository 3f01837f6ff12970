package patch

import (
	"fmt"
	"io"

	"github.com/gabstv/go-bsdiff/pkg/bsdiff"
)

// Differ computes a patch that turns source into target and writes it to w.
type Differ interface {
	Diff(source, target []byte, w io.Writer) error
}

// DifferFunc adapts a function to the Differ interface.
type DifferFunc func(source, target []byte, w io.Writer) error

// Diff calls f.
func (f DifferFunc) Diff(source, target []byte, w io.Writer) error {
	return f(source, target, w)
}

// BSDiff produces BSDIFF40 patches.
type BSDiff struct{}

// Diff implements Differ.
func (BSDiff) Diff(source, target []byte, w io.Writer) error {
	patch, err := bsdiff.Bytes(source, target)
	if err != nil {
		return fmt.Errorf("bsdiff: %w", err)
	}

	if _, err = w.Write(patch); err != nil {
		return fmt.Errorf("write patch: %w", err)
	}

	return nil
}
