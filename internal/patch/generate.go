package patch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/PaperMC/PaperclipMavenPlugin/internal/domain/kit"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/logger"
)

var errNoDiffer = errors.New("differ is not set")

// Generate diffs base against derived and writes the patch to outputPath,
// truncating any previous content. On failure the partial file is removed and
// the error wraps kit.ErrPatchGenerationFailed.
func Generate(ctx context.Context, differ Differ, base, derived []byte, outputPath string) (err error) {
	if differ == nil {
		return fmt.Errorf("%w: %w", kit.ErrPatchGenerationFailed, errNoDiffer)
	}

	if err = ctx.Err(); err != nil {
		return fmt.Errorf("%w: %w", kit.ErrPatchGenerationFailed, err)
	}

	outputPath = filepath.Clean(outputPath)

	file, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, kit.FileMode)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", kit.ErrPatchGenerationFailed, outputPath, err)
	}

	closed := false

	defer func() {
		if !closed {
			_ = file.Close()
		}

		if err != nil {
			_ = os.Remove(outputPath)
		}
	}()

	buffered := bufio.NewWriter(file)

	if err = differ.Diff(base, derived, buffered); err != nil {
		return fmt.Errorf("%w: %w", kit.ErrPatchGenerationFailed, err)
	}

	if err = buffered.Flush(); err != nil {
		return fmt.Errorf("%w: flush %s: %w", kit.ErrPatchGenerationFailed, outputPath, err)
	}

	if err = file.Sync(); err != nil {
		return fmt.Errorf("%w: sync %s: %w", kit.ErrPatchGenerationFailed, outputPath, err)
	}

	closed = true

	if err = file.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", kit.ErrPatchGenerationFailed, outputPath, err)
	}

	if info, statErr := os.Stat(outputPath); statErr == nil {
		logger.DebugKV(ctx, "Patch written", "path", outputPath, "bytes", info.Size())
	}

	return nil
}
