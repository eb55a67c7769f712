package obs

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// sqlAttrLimit caps the recorded statement length so span payloads stay small.
const sqlAttrLimit = 300

// PGXTracer implements pgx.QueryTracer, opening a span per statement. Wire it
// into pgxpool via ConnConfig.Tracer.
type PGXTracer struct{}

// TraceQueryStart opens the span. pgx threads the returned context through to
// TraceQueryEnd, so the span rides the context rather than a side channel.
func (PGXTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	ctx, span := otel.Tracer("db.pgx").Start(ctx, "pgx.query")
	attrs := []attribute.KeyValue{
		attribute.String("db.system", "postgresql"),
		attribute.String("db.statement", clipSQL(data.SQL)),
	}
	if fields := strings.Fields(data.SQL); len(fields) > 0 {
		attrs = append(attrs, attribute.String("db.operation", fields[0]))
	}
	span.SetAttributes(attrs...)
	return ctx
}

// TraceQueryEnd records the outcome and closes the span.
func (PGXTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span := trace.SpanFromContext(ctx)
	if data.Err != nil {
		span.RecordError(data.Err)
	}
	span.End()
}

func clipSQL(sql string) string {
	trimmed := strings.TrimSpace(sql)
	if len(trimmed) > sqlAttrLimit {
		return trimmed[:sqlAttrLimit] + "..."
	}
	return trimmed
}
