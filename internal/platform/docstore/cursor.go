package docstore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultPageSize is used when Page is called with a non-positive size.
const DefaultPageSize = 10

// ErrInvalidCursor is returned when a cursor cannot be decoded or belongs to another ordering.
var ErrInvalidCursor = errors.New("docstore: invalid cursor")

type cursorPayload struct {
	Values primitive.A `bson:"v"`
	ID     string      `bson:"id"`
}

// EncodeCursor builds the opaque continuation token pointing after doc.
func (q Query) EncodeCursor(doc Document) (string, error) {
	key := q.keyOf(doc)
	raw, err := bson.Marshal(cursorPayload{Values: primitive.A(key.Values), ID: key.ID})
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeCursor parses a token produced by EncodeCursor for the same ordering.
func (q Query) DecodeCursor(cursor string) (CursorKey, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(cursor))
	if err != nil {
		return CursorKey{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	var payload cursorPayload
	if err := bson.Unmarshal(raw, &payload); err != nil {
		return CursorKey{}, fmt.Errorf("%w: %v", ErrInvalidCursor, err)
	}
	if len(payload.Values) != len(q.Orders) || payload.ID == "" {
		return CursorKey{}, fmt.Errorf("%w: ordering mismatch", ErrInvalidCursor)
	}
	return CursorKey{Values: []any(payload.Values), ID: payload.ID}, nil
}

// After reports whether doc sorts strictly after the cursor key.
func (q Query) After(doc Document, key CursorKey) bool {
	return compareKeys(q.keyOf(doc), key, q.Orders) > 0
}
