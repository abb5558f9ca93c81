package docstore

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "mesaOps/docstore"

// Traced decorates a Store with one span per operation.
type Traced struct {
	next   Store
	tracer trace.Tracer
}

// NewTraced wraps next using the global tracer provider.
func NewTraced(next Store) *Traced {
	return &Traced{next: next, tracer: otel.Tracer(tracerName)}
}

func (t *Traced) start(ctx context.Context, op, collection string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("db.operation", op), attribute.String("db.collection", collection))
	return t.tracer.Start(ctx, "docstore."+op, trace.WithSpanKind(trace.SpanKindClient), trace.WithAttributes(attrs...))
}

func finish(span trace.Span, err error) {
	// domain outcomes such as a rejected increment are not infrastructure failures
	if err != nil && !errors.Is(err, ErrBelowFloor) && !errors.Is(err, ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Ping forwards to the wrapped store when it is a Pinger.
func (t *Traced) Ping(ctx context.Context) error {
	pinger, ok := t.next.(Pinger)
	if !ok {
		return nil
	}
	ctx, span := t.start(ctx, "ping", "")
	err := pinger.Ping(ctx)
	finish(span, err)
	return err
}

func (t *Traced) Insert(ctx context.Context, collection string, doc Document) (string, error) {
	ctx, span := t.start(ctx, "insert", collection)
	id, err := t.next.Insert(ctx, collection, doc)
	span.SetAttributes(attribute.String("db.document_id", id))
	finish(span, err)
	return id, err
}

func (t *Traced) Get(ctx context.Context, collection, id string) (Document, error) {
	ctx, span := t.start(ctx, "get", collection, attribute.String("db.document_id", id))
	doc, err := t.next.Get(ctx, collection, id)
	span.SetAttributes(attribute.Bool("db.found", doc != nil))
	finish(span, err)
	return doc, err
}

func (t *Traced) Update(ctx context.Context, collection, id string, fields Fields) error {
	ctx, span := t.start(ctx, "update", collection, attribute.String("db.document_id", id), attribute.Int("db.fields", len(fields)))
	err := t.next.Update(ctx, collection, id, fields)
	finish(span, err)
	return err
}

func (t *Traced) Delete(ctx context.Context, collection, id string) error {
	ctx, span := t.start(ctx, "delete", collection, attribute.String("db.document_id", id))
	err := t.next.Delete(ctx, collection, id)
	finish(span, err)
	return err
}

func (t *Traced) Find(ctx context.Context, collection string, q Query) ([]Document, error) {
	ctx, span := t.start(ctx, "find", collection, attribute.Int("db.filters", len(q.Filters)))
	docs, err := t.next.Find(ctx, collection, q)
	span.SetAttributes(attribute.Int("db.results", len(docs)))
	finish(span, err)
	return docs, err
}

func (t *Traced) Count(ctx context.Context, collection string, q Query) (int64, error) {
	ctx, span := t.start(ctx, "count", collection, attribute.Int("db.filters", len(q.Filters)))
	n, err := t.next.Count(ctx, collection, q)
	span.SetAttributes(attribute.Int64("db.count", n))
	finish(span, err)
	return n, err
}

func (t *Traced) Page(ctx context.Context, collection string, q Query, cursor string, size int) ([]Document, string, error) {
	ctx, span := t.start(ctx, "page", collection, attribute.Int("db.page_size", size), attribute.Bool("db.has_cursor", cursor != ""))
	docs, next, err := t.next.Page(ctx, collection, q, cursor, size)
	span.SetAttributes(attribute.Int("db.results", len(docs)), attribute.Bool("db.has_next", next != ""))
	finish(span, err)
	return docs, next, err
}

func (t *Traced) Watch(ctx context.Context, collection string, q Query, fn func([]Document)) (func(), error) {
	_, span := t.start(ctx, "watch", collection, attribute.Int("db.filters", len(q.Filters)))
	stop, err := t.next.Watch(ctx, collection, q, fn)
	finish(span, err)
	return stop, err
}

func (t *Traced) WatchDocument(ctx context.Context, collection, id string, fn func(Document)) (func(), error) {
	_, span := t.start(ctx, "watch_document", collection, attribute.String("db.document_id", id))
	stop, err := t.next.WatchDocument(ctx, collection, id, fn)
	finish(span, err)
	return stop, err
}

func (t *Traced) Increment(ctx context.Context, collection, id, field string, delta, floor float64) (float64, error) {
	ctx, span := t.start(ctx, "increment", collection,
		attribute.String("db.document_id", id),
		attribute.String("db.field", field),
		attribute.Float64("db.delta", delta),
	)
	next, err := t.next.Increment(ctx, collection, id, field, delta, floor)
	span.SetAttributes(attribute.Bool("db.rejected", errors.Is(err, ErrBelowFloor)))
	finish(span, err)
	return next, err
}

func (t *Traced) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	ctx, span := t.start(ctx, "transaction", "")
	err := t.next.RunTransaction(ctx, fn)
	finish(span, err)
	return err
}

func (t *Traced) Close(ctx context.Context) error {
	return t.next.Close(ctx)
}

var _ Store = (*Traced)(nil)
