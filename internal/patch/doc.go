// Package patch writes the binary delta between the vanilla and paper jars and
// checks that a written delta reproduces the paper jar.
//
// The delta format is BSDIFF40 with bzip2 blocks, the format read by
// Paperclip's launcher.
package patch
