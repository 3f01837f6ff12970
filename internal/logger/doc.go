// Package logger wraps zap for the kit generator:
//   - a global sugared logger writing console lines to stderr,
//   - context helpers (ToContext/FromContext/WithName),
//   - level parsing for the --log-level flag,
//   - leveled helpers that take the logger from the context.
//
// Pipeline stages receive the logger through their context, so nothing
// writes to stdout behind the caller's back.
package logger
