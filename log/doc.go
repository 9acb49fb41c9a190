// Package log provides the logging interface used by the matching pipeline.
//
// All components accept an optional Logger and fall back to the package-level
// default. Two implementations ship with the module:
//
//   - DefaultLogger, backed by the standard library log package
//   - GologLogger, backed by github.com/kataras/golog
//
// Enable debug output globally:
//
//	log.SetLogLevel(log.LogLevelDebug)
//
// Or plug in golog:
//
//	logger := log.NewGologLogger(golog.Default)
//	log.SetDefaultLogger(logger)
package log
