// Package logger provides a thin factory around Go's slog package plus
// helper attribute constructors shared across the steek security core.
//
// A single factory, New, creates a *slog.Logger configured by Option
// functions: output format (text or json), minimum level, destination
// writer and static attributes. Components that accept a logger default
// to Discard so logging is strictly opt-in.
//
// Helper constructors such as Component, Backend and AccountID keep
// attribute naming consistent across packages.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithDebug(),
//	    logger.WithAttr(slog.String("app", "steek")),
//	)
//	log.Info("vault unlocked", logger.Component("vault"))
package logger
