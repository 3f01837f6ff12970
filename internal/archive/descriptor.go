package archive

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/PaperMC/PaperclipMavenPlugin/internal/domain/kit"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/logger"
)

// ExtractDescriptor copies the protocol descriptor out of the paper jar to
// outputPath. It reports whether the descriptor was present. When the jar has no
// descriptor, a stale copy at outputPath is removed.
func ExtractDescriptor(ctx context.Context, jarPath, outputPath string) (bool, error) {
	container, err := Open(jarPath)
	if err != nil {
		return false, err
	}

	defer func() {
		_ = container.Close()
	}()

	entry := kit.DescriptorEntry()

	if !container.Exists(entry) {
		logger.DebugKV(ctx, "Paper jar has no protocol descriptor", "entry", entry)

		err = os.Remove(outputPath)
		if err == nil {
			logger.WarnKV(ctx, "Removed stale protocol descriptor", "path", outputPath)

			return false, nil
		}

		if !errors.Is(err, os.ErrNotExist) {
			return false, fmt.Errorf("%w: remove stale descriptor %s: %w", kit.ErrIOFailure, outputPath, err)
		}

		return false, nil
	}

	if err = container.CopyOut(entry, outputPath); err != nil {
		return false, err
	}

	logger.DebugKV(ctx, "Copied protocol descriptor", "entry", entry, "path", outputPath)

	return true, nil
}
