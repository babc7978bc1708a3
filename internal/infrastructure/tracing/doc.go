/*
Package tracing provides lightweight request tracing.

Every HTTP request gets a span; the trace id of an incoming X-Trace-ID
header is continued, otherwise a new one is generated. Finished spans are
buffered and logged by a background collector, so tracing never blocks a
request.

# Usage

	tracer := tracing.New(logger)
	defer tracer.Close()
	router.Use(tracing.HTTPMiddleware(tracer))

	// Manual span creation
	span, ctx := tracer.StartSpan(ctx, "operation")
	defer func() {
		span.Finish()
		tracer.Submit(span)
	}()

# Trace Format

Traces use standard HTTP headers for propagation:
  - X-Trace-ID: Unique identifier for entire request flow
  - X-Span-ID: Identifier for current operation
*/
package tracing
