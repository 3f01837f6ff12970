package kit

import "errors"

// Every error below is fatal to a generation run.
var (
	// ErrMissingInput is returned when the vanilla or paper jar does not exist.
	ErrMissingInput = errors.New("missing input artifact")
	// ErrCorruptArtifact is returned when the paper jar cannot be opened as a zip container.
	ErrCorruptArtifact = errors.New("corrupt artifact")
	// ErrPatchGenerationFailed is returned when the differ fails or the patch cannot be written.
	ErrPatchGenerationFailed = errors.New("patch generation failed")
	// ErrIOFailure is returned for directory, copy and write failures.
	ErrIOFailure = errors.New("i/o failure")
	// ErrVerificationFailed is returned when a generated kit does not reproduce the paper jar.
	ErrVerificationFailed = errors.New("kit verification failed")
)
