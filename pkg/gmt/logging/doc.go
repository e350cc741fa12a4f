// Package logging is the logger that the locator, sessions and virtual files
// write to.
//
// Logger is the context-aware subset of log/slog. New wraps an *slog.Logger;
// pass gmt.WithLogger or a Locator.Logger to route records elsewhere. A nil
// Logger anywhere in the binding means slog.Default().
//
//	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
//	s, err := gmt.Open(ctx, gmt.WithLogger(logging.New(slog.New(handler))))
//
// # Records
//
// Debug:
//
//	rejected GMT library candidate   path, error
//	loaded GMT library               path, platform
//	opened GMT session               library
//	calling GMT module               module, args
//	opened virtual file              name, direction, kind
//	closed virtual file              name
//	closed GMT session
//
// Warn:
//
//	closing GMT session with virtual files still open   names
//	failed to free data container                       status
//	failed to remove temporary file                     path, error
//
// Module args are logged verbatim. They hold file and virtual file names and
// option flags, never table contents.
package logging
