package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span attribute keys.
const (
	AttrMboxPath     = "mbox.path"
	AttrMessageCount = "mbox.messages"
	AttrPurgedCount  = "mbox.purged"
	AttrTrashEntryID = "trash.entry.id"
	AttrTrashCount   = "trash.entries"
	AttrContextCount = "highlight.contexts"
	AttrErrorMessage = "error.message"
)

// Span names.
const (
	SpanMboxLoad     = "mbox.load"
	SpanMboxWrite    = "mbox.write"
	SpanMboxCommit   = "mbox.commit"
	SpanHighlight    = "highlight.stream"
	SpanTrashArchive = "trash.archive"
	SpanTrashRestore = "trash.restore"
	SpanTrashMigrate = "trash.migrate"
)

// Start begins a span on the global tracer provider.
func Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(ServiceName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// End records err on span, if any, and ends it.
func End(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.SetAttributes(attribute.String(AttrErrorMessage, err.Error()))
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
