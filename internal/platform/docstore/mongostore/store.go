package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"mesaOps/internal/platform/docstore"
	"mesaOps/internal/shared/apperr"
)

// Store implements docstore.Store on MongoDB. Identifiers are hex ObjectIDs stored as strings.
// Watch relies on change streams, so the server must run as a replica set.
type Store struct {
	client  *mongo.Client
	db      *mongo.Database
	timeout time.Duration
}

func (s *Store) Insert(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.insert(ctx, collection, doc)
}

func (s *Store) insert(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	payload := make(bson.M, len(doc)+1)
	for key, value := range doc {
		payload[key] = value
	}
	id := primitive.NewObjectID().Hex()
	payload[docstore.IDField] = id
	if _, err := s.db.Collection(collection).InsertOne(ctx, payload); err != nil {
		return "", apperr.WrapStore("insert", collection, err)
	}
	return id, nil
}

func (s *Store) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.get(ctx, collection, id)
}

func (s *Store) get(ctx context.Context, collection, id string) (docstore.Document, error) {
	var doc docstore.Document
	err := s.db.Collection(collection).FindOne(ctx, bson.M{docstore.IDField: id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.WrapStore("get", collection, err)
	}
	return doc, nil
}

func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.update(ctx, collection, id, fields)
}

func (s *Store) update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if _, ok := fields[docstore.IDField]; ok {
		return apperr.WrapStore("update", collection, fmt.Errorf("field %s is immutable", docstore.IDField))
	}
	result, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{docstore.IDField: id}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return apperr.WrapStore("update", collection, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s/%s", docstore.ErrNotFound, collection, id)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{docstore.IDField: id}); err != nil {
		return apperr.WrapStore("delete", collection, err)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	filter, err := buildFilter(q)
	if err != nil {
		return nil, apperr.WrapStore("find", collection, err)
	}
	return s.find(ctx, collection, filter, q, q.Limit, false)
}

// find sorts by the query orderings; keyset reads always sort, ending on _id, so the cursor
// filter and the result order agree.
func (s *Store) find(ctx context.Context, collection string, filter bson.M, q docstore.Query, limit int, keyset bool) ([]docstore.Document, error) {
	opts := options.Find()
	if keyset || len(q.Orders) > 0 {
		opts.SetSort(buildSort(q))
	}
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	cursor, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, apperr.WrapStore("find", collection, err)
	}
	defer cursor.Close(ctx)

	docs := make([]docstore.Document, 0)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, apperr.WrapStore("find", collection, err)
	}
	return docs, nil
}

func (s *Store) Count(ctx context.Context, collection string, q docstore.Query) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	filter, err := buildFilter(q)
	if err != nil {
		return 0, apperr.WrapStore("count", collection, err)
	}
	n, err := s.db.Collection(collection).CountDocuments(ctx, filter)
	if err != nil {
		return 0, apperr.WrapStore("count", collection, err)
	}
	return n, nil
}

func (s *Store) Page(ctx context.Context, collection string, q docstore.Query, cursor string, size int) ([]docstore.Document, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if size <= 0 {
		size = docstore.DefaultPageSize
	}
	filter, err := buildFilter(q)
	if err != nil {
		return nil, "", apperr.WrapStore("page", collection, err)
	}
	if cursor != "" {
		key, err := q.DecodeCursor(cursor)
		if err != nil {
			return nil, "", apperr.WrapStore("page", collection, err)
		}
		filter = and(filter, keysetFilter(q, key))
	}

	// one extra document tells whether another page exists
	docs, err := s.find(ctx, collection, filter, q, size+1, true)
	if err != nil {
		return nil, "", err
	}
	if len(docs) <= size {
		return docs, "", nil
	}
	docs = docs[:size]
	next, err := q.EncodeCursor(docs[len(docs)-1])
	if err != nil {
		return nil, "", apperr.WrapStore("page", collection, err)
	}
	return docs, next, nil
}

func (s *Store) Watch(ctx context.Context, collection string, q docstore.Query, fn func([]docstore.Document)) (func(), error) {
	filter, err := buildFilter(q)
	if err != nil {
		return nil, apperr.WrapStore("watch", collection, err)
	}
	deliver := func(watchCtx context.Context) error {
		readCtx, cancel := context.WithTimeout(watchCtx, s.timeout)
		defer cancel()
		docs, err := s.find(readCtx, collection, filter, q, q.Limit, false)
		if err != nil {
			return err
		}
		fn(docs)
		return nil
	}
	return s.watch(ctx, collection, mongo.Pipeline{}, deliver)
}

func (s *Store) WatchDocument(ctx context.Context, collection, id string, fn func(docstore.Document)) (func(), error) {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.M{"documentKey._id": id}}}}
	deliver := func(watchCtx context.Context) error {
		readCtx, cancel := context.WithTimeout(watchCtx, s.timeout)
		defer cancel()
		doc, err := s.get(readCtx, collection, id)
		if err != nil {
			return err
		}
		fn(doc)
		return nil
	}
	return s.watch(ctx, collection, pipeline, deliver)
}

// watch opens the change stream before the initial read so no change between the two is lost.
func (s *Store) watch(ctx context.Context, collection string, pipeline mongo.Pipeline, deliver func(context.Context) error) (func(), error) {
	watchCtx, cancel := context.WithCancel(ctx)
	stream, err := s.db.Collection(collection).Watch(watchCtx, pipeline)
	if err != nil {
		cancel()
		return nil, apperr.WrapStore("watch", collection, err)
	}

	var once sync.Once
	stop := func() { once.Do(cancel) }

	go func() {
		defer stream.Close(context.Background())
		if err := deliver(watchCtx); err != nil && watchCtx.Err() == nil {
			slog.Warn("mongostore initial snapshot failed", slog.String("collection", collection), slog.Any("error", err))
		}
		for stream.Next(watchCtx) {
			if err := deliver(watchCtx); err != nil {
				if watchCtx.Err() != nil {
					return
				}
				slog.Warn("mongostore snapshot refresh failed", slog.String("collection", collection), slog.Any("error", err))
			}
		}
		if err := stream.Err(); err != nil && watchCtx.Err() == nil {
			slog.Error("mongostore change stream stopped", slog.String("collection", collection), slog.Any("error", err))
		}
	}()

	return stop, nil
}

func (s *Store) Increment(ctx context.Context, collection, id, field string, delta, floor float64) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	filter := bson.M{docstore.IDField: id, field: bson.M{"$gte": floor - delta}}
	update := bson.M{"$inc": bson.M{field: delta}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc docstore.Document
	err := s.db.Collection(collection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		existing, getErr := s.get(ctx, collection, id)
		if getErr != nil {
			return 0, getErr
		}
		if existing == nil {
			return 0, fmt.Errorf("%w: %s/%s", docstore.ErrNotFound, collection, id)
		}
		current, _ := toFloat(existing[field])
		return current, fmt.Errorf("%w: %s/%s %s=%v delta=%v", docstore.ErrBelowFloor, collection, id, field, current, delta)
	}
	if err != nil {
		return 0, apperr.WrapStore("increment", collection, err)
	}
	next, _ := toFloat(doc[field])
	return next, nil
}

func (s *Store) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx docstore.Tx) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return apperr.WrapStore("transaction", "", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc, &sessionTx{store: s})
	})
	return apperr.WrapStore("transaction", "", err)
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// sessionTx runs every call on the session context handed to the callback.
type sessionTx struct {
	store *Store
}

func (tx *sessionTx) Get(ctx context.Context, collection, id string) (docstore.Document, error) {
	return tx.store.get(ctx, collection, id)
}

func (tx *sessionTx) Insert(ctx context.Context, collection string, doc docstore.Document) (string, error) {
	return tx.store.insert(ctx, collection, doc)
}

func (tx *sessionTx) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	return tx.store.update(ctx, collection, id, fields)
}

func toFloat(v any) (float64, bool) {
	switch typed := v.(type) {
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case float64:
		return typed, true
	default:
		return 0, false
	}
}

var _ docstore.Store = (*Store)(nil)
