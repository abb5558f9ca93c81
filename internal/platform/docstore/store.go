package docstore

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"

	"mesaOps/internal/shared/apperr"
)

// IDField is the document key holding the store-assigned identifier.
const IDField = "_id"

var (
	// ErrNotFound is returned by Update and Increment when the document does not exist.
	ErrNotFound = apperr.ErrNotFound
	// ErrBelowFloor is returned by Increment when the guarded result would drop below the floor.
	ErrBelowFloor = errors.New("docstore: increment below floor")
)

// Document is the normalized representation of a stored document, keyed by field name.
type Document = bson.M

// Fields carries a partial set of fields merged into an existing document.
type Fields map[string]any

// Store is the collection-oriented persistence collaborator. Implementations guarantee
// per-document atomicity; multi-document atomicity is only available through RunTransaction.
type Store interface {
	// Insert stores doc under a freshly generated identifier and returns it.
	Insert(ctx context.Context, collection string, doc Document) (string, error)
	// Get returns the document or nil when it does not exist.
	Get(ctx context.Context, collection, id string) (Document, error)
	// Update merges fields into the document, failing with ErrNotFound when it is missing.
	Update(ctx context.Context, collection, id string, fields Fields) error
	// Delete removes the document; deleting a missing document is not an error.
	Delete(ctx context.Context, collection, id string) error
	Find(ctx context.Context, collection string, q Query) ([]Document, error)
	Count(ctx context.Context, collection string, q Query) (int64, error)
	// Page returns up to size documents following cursor and the cursor of the next page,
	// which is empty when the returned page is the last one.
	Page(ctx context.Context, collection string, q Query, cursor string, size int) ([]Document, string, error)
	// Watch delivers the full result set of q immediately and after every change that may
	// affect it. The returned function stops delivery and is safe to call more than once.
	Watch(ctx context.Context, collection string, q Query, fn func([]Document)) (func(), error)
	// WatchDocument delivers the document (nil when absent) immediately and after every change.
	WatchDocument(ctx context.Context, collection, id string, fn func(Document)) (func(), error)
	// Increment atomically adds delta to a numeric field unless the result would be below floor,
	// in which case it fails with ErrBelowFloor and leaves the document unchanged.
	Increment(ctx context.Context, collection, id, field string, delta, floor float64) (float64, error)
	// RunTransaction runs fn against a transactional view; writes are applied only when fn succeeds.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close(ctx context.Context) error
}

// Tx is the transactional view handed to RunTransaction callbacks.
type Tx interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Insert(ctx context.Context, collection string, doc Document) (string, error)
	Update(ctx context.Context, collection, id string, fields Fields) error
}

// Encode converts any bson-marshalable value into a normalized Document.
func Encode(v any) (Document, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var doc Document
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Decode fills out from doc using the bson tags of out's type.
func Decode(doc Document, out any) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, out)
}

// normalizeValue runs a single value through the bson codec so it compares against stored data.
func normalizeValue(v any) any {
	doc, err := Encode(bson.M{"v": v})
	if err != nil {
		return v
	}
	return doc["v"]
}

// DocumentID returns the identifier stored in doc.
func DocumentID(doc Document) string {
	if doc == nil {
		return ""
	}
	id, _ := doc[IDField].(string)
	return id
}

// Pinger is implemented by stores that talk to a server.
type Pinger interface {
	Ping(ctx context.Context) error
}
