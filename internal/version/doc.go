// Package version exposes build metadata of the kit generator.
//
// Version, Commit and BuildTime are injected with -ldflags -X. Full adds the
// Go toolchain so kits can be traced back to the binary that produced them.
package version
