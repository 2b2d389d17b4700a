// Package trace provides the tracing subsystem for the drift analyzer.
//
// The trace package enables tracking of analysis phases, per-body
// processing, and other operations to help diagnose performance issues
// and hangs.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	drift interior --trace=- --trace-level=phase body.drift
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - NopTracer: Zero-overhead no-op tracer when disabled
//   - StreamTracer: Immediate write to output (file/stderr)
//   - RingTracer: Circular buffer for crash dumps
//   - MultiTracer: Combines multiple tracers
//
// # Levels
//
// Tracing verbosity is controlled by levels:
//
//   - LevelOff: No tracing
//   - LevelError: Only crash dumps
//   - LevelPhase: Driver and pass boundaries
//   - LevelDetail: Per-body events
//   - LevelDebug: Everything including HIR nodes
//
// # Scopes
//
// Events are categorized by scope:
//
//   - ScopeDriver: Top-level CLI operations
//   - ScopePass: Analysis passes (decode, validate, interior)
//   - ScopeModule: Per-body processing
//   - ScopeNode: HIR node level (liveness decisions)
//
// # Context Propagation
//
// Tracers are propagated through the analysis pipeline via context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	t := trace.FromContext(ctx)
//
//	span := trace.Begin(t, trace.ScopePass, "interior", parentID)
//	defer span.End("")
package trace
