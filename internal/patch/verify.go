package patch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/PaperMC/PaperclipMavenPlugin/internal/digest"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/domain/kit"
	"github.com/PaperMC/PaperclipMavenPlugin/internal/logger"
)

// Verify applies the patch at patchPath to a scratch copy of the jar at
// basePath and checks the result against expected. The base jar itself is
// never modified.
func Verify(ctx context.Context, basePath, patchPath string, expected digest.Digest) error {
	scratch, err := os.MkdirTemp("", "paperclip-verify-")
	if err != nil {
		return fmt.Errorf("%w: create scratch directory: %w", kit.ErrIOFailure, err)
	}

	defer func() {
		_ = os.RemoveAll(scratch)
	}()

	target := filepath.Join(scratch, "server.jar")
	if err = copyFile(basePath, target); err != nil {
		return err
	}

	patchFile, err := os.Open(filepath.Clean(patchPath))
	if err != nil {
		return fmt.Errorf("%w: open patch: %w", kit.ErrIOFailure, err)
	}

	defer func() {
		_ = patchFile.Close()
	}()

	options := goupdate.Options{
		TargetPath: target,
		TargetMode: kit.FileMode,
		Patcher:    goupdate.NewBSDiffPatcher(),
	}

	// go-update checks the checksum itself when the algorithm is a crypto.Hash.
	hashFn, hashErr := expected.CryptoHash()
	if hashErr == nil {
		options.Checksum = expected.Sum
		options.Hash = hashFn
	}

	logger.DebugKV(ctx, "Applying patch to scratch copy", "base", basePath, "patch", patchPath)

	if err = goupdate.Apply(patchFile, options); err != nil {
		return fmt.Errorf("%w: apply patch: %w", kit.ErrVerificationFailed, err)
	}

	if hashErr == nil {
		return nil
	}

	rebuilt, err := os.ReadFile(target)
	if err != nil {
		return fmt.Errorf("%w: read patched jar: %w", kit.ErrIOFailure, err)
	}

	actual, err := digest.Sum(expected.Algorithm, rebuilt)
	if err != nil {
		return err
	}

	if !actual.Equal(expected) {
		return fmt.Errorf("%w: patched jar digest %s, expected %s", kit.ErrVerificationFailed, actual, expected)
	}

	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(filepath.Clean(src))
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", kit.ErrIOFailure, src, err)
	}

	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, kit.FileMode)
	if err != nil {
		return fmt.Errorf("%w: create %s: %w", kit.ErrIOFailure, dst, err)
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()

		return fmt.Errorf("%w: copy %s: %w", kit.ErrIOFailure, src, err)
	}

	if err = out.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", kit.ErrIOFailure, dst, err)
	}

	return nil
}
