// Package trace provides a tracing subsystem for meel.
//
// The trace package tracks check runs, language-server requests and the
// steps of the brace pipeline to help diagnose slow documents and hangs.
//
// # Usage
//
// Enable tracing via command-line flags:
//
//	meel check --trace=- --trace-level=phase templates/
//	meel lsp --trace=/tmp/meel.ndjson --trace-level=detail
//
// # Architecture
//
// The package provides several tracer implementations:
//
//   - Nop: Zero-overhead no-op tracer when disabled
//   - StreamTracer: Immediate write to output (file/stderr)
//   - RingTracer: Circular buffer kept in memory
//   - MultiTracer: Combines multiple tracers
//
// # Levels
//
//   - LevelOff: No tracing
//   - LevelError: Only crash dumps
//   - LevelPhase: Driver and pass boundaries
//   - LevelDetail: Document-level events
//   - LevelDebug: Everything including individual markers
//
// # Context Propagation
//
// The CLI stores the tracer in the command context. Start nests a span
// under whatever span the context already carries:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	ctx, span := trace.Start(ctx, trace.ScopeDocument, "document")
//	defer span.End("")
//
// Code that holds a tracer but no context (the LSP loop, the controller)
// uses Begin with an explicit parent id. A heartbeat reports the number of
// spans still open, which is how a stuck document shows up in a trace.
package trace
