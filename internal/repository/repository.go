// Package repository provides typed access to one document collection.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mesaOps/internal/platform/docstore"
	"mesaOps/internal/shared/apperr"
)

// ErrIDAssigned is returned by Create when the payload already carries an identifier.
var ErrIDAssigned = errors.New("repository: payload already has an id")

// Entity is implemented by every document type: the identifier is owned by the store and
// surfaces through the `_id` bson key.
type Entity interface {
	DocumentID() string
}

// Page is one slice of a paginated query.
type Page[T Entity] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// Repository is the typed CRUD/query/subscription surface over one collection.
type Repository[T Entity] struct {
	store      docstore.Store
	collection string
}

func New[T Entity](store docstore.Store, collection string) *Repository[T] {
	return &Repository[T]{store: store, collection: collection}
}

// Collection returns the backing collection name.
func (r *Repository[T]) Collection() string { return r.collection }

// Store returns the backing document store.
func (r *Repository[T]) Store() docstore.Store { return r.store }

func (r *Repository[T]) Create(ctx context.Context, data T) (string, error) {
	if data.DocumentID() != "" {
		return "", fmt.Errorf("%w: %s", ErrIDAssigned, r.collection)
	}
	doc, err := r.Encode(data)
	if err != nil {
		return "", err
	}
	return r.store.Insert(ctx, r.collection, doc)
}

// GetByID returns nil without error when the document does not exist.
func (r *Repository[T]) GetByID(ctx context.Context, id string) (*T, error) {
	doc, err := r.store.Get(ctx, r.collection, id)
	if err != nil || doc == nil {
		return nil, err
	}
	entity, err := r.Decode(doc)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *Repository[T]) GetAll(ctx context.Context) ([]T, error) {
	return r.Query(ctx)
}

func (r *Repository[T]) Query(ctx context.Context, clauses ...docstore.Clause) ([]T, error) {
	docs, err := r.store.Find(ctx, r.collection, docstore.NewQuery(clauses...))
	if err != nil {
		return nil, err
	}
	return r.decodeAll(docs)
}

// First returns the first match of the query or nil.
func (r *Repository[T]) First(ctx context.Context, clauses ...docstore.Clause) (*T, error) {
	items, err := r.Query(ctx, append(clauses, docstore.Limit(1))...)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return &items[0], nil
}

func (r *Repository[T]) Count(ctx context.Context, clauses ...docstore.Clause) (int64, error) {
	return r.store.Count(ctx, r.collection, docstore.NewQuery(clauses...))
}

// Paginate returns up to pageSize items after cursor; an empty cursor starts from the beginning.
func (r *Repository[T]) Paginate(ctx context.Context, cursor string, pageSize int, clauses ...docstore.Clause) (Page[T], error) {
	docs, next, err := r.store.Page(ctx, r.collection, docstore.NewQuery(clauses...), cursor, pageSize)
	if err != nil {
		return Page[T]{}, err
	}
	items, err := r.decodeAll(docs)
	if err != nil {
		return Page[T]{}, err
	}
	return Page[T]{Items: items, NextCursor: next}, nil
}

// Subscribe delivers the full typed result set now and after every relevant change.
// The returned function is idempotent.
func (r *Repository[T]) Subscribe(ctx context.Context, fn func([]T), clauses ...docstore.Clause) (func(), error) {
	return r.store.Watch(ctx, r.collection, docstore.NewQuery(clauses...), func(docs []docstore.Document) {
		items, err := r.decodeAll(docs)
		if err != nil {
			slog.Warn("repository snapshot decode failed", slog.String("collection", r.collection), slog.Any("error", err))
			return
		}
		fn(items)
	})
}

// SubscribeDocument delivers the single document, or nil while it does not exist.
func (r *Repository[T]) SubscribeDocument(ctx context.Context, id string, fn func(*T)) (func(), error) {
	return r.store.WatchDocument(ctx, r.collection, id, func(doc docstore.Document) {
		if doc == nil {
			fn(nil)
			return
		}
		entity, err := r.Decode(doc)
		if err != nil {
			slog.Warn("repository document decode failed", slog.String("collection", r.collection), slog.String("id", id), slog.Any("error", err))
			return
		}
		fn(&entity)
	})
}

// Update merges fields into the document; a missing document surfaces the store's not-found error.
func (r *Repository[T]) Update(ctx context.Context, id string, fields docstore.Fields) error {
	return r.store.Update(ctx, r.collection, id, fields)
}

// Delete is idempotent.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	return r.store.Delete(ctx, r.collection, id)
}

// Encode converts an entity into a store document without its identifier.
func (r *Repository[T]) Encode(data T) (docstore.Document, error) {
	doc, err := docstore.Encode(data)
	if err != nil {
		return nil, apperr.WrapStore("encode", r.collection, err)
	}
	delete(doc, docstore.IDField)
	return doc, nil
}

// Decode converts a store document into the entity type.
func (r *Repository[T]) Decode(doc docstore.Document) (T, error) {
	var entity T
	if err := docstore.Decode(doc, &entity); err != nil {
		return entity, apperr.WrapStore("decode", r.collection, err)
	}
	return entity, nil
}

func (r *Repository[T]) decodeAll(docs []docstore.Document) ([]T, error) {
	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		entity, err := r.Decode(doc)
		if err != nil {
			return nil, err
		}
		items = append(items, entity)
	}
	return items, nil
}
