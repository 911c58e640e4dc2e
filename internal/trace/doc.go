// Package trace records span and point events of an analysis run.
//
// Tracing is enabled from the command line:
//
//	wirecheck check --trace=- --trace-level=phase circuit.json
//
// A Tracer is carried through the pipeline in a context:
//
//	ctx = trace.WithTracer(ctx, tracer)
//	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDefinition, "lint:"+name, parent)
//	defer span.End("")
//
// Stream tracers write each event as it happens (text or NDJSON); ring
// tracers keep the last events in memory for dumping after a failure.
package trace
