// Package trace provides structured tracing for moltree commands.
//
// It records where time goes while the driver tokenizes, parses and
// diagnoses files, and which file a long run is stuck on.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	moltree diag --trace=- --trace-level=detail ./src
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Nothing is traced; errors surface as diagnostics
//   - LevelPhase: Driver and pass boundaries
//   - LevelDetail: Per-file events
//   - LevelDebug: Everything
//
// # Context Propagation
//
// Tracers travel through the pipeline via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "parse", parentID)
//	defer span.End("")
package trace
