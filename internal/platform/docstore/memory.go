package docstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"mesaOps/internal/shared/apperr"
)

// Memory is an in-process Store. Writes are serialized under one mutex and every
// committed write wakes the watchers of the touched collection.
type Memory struct {
	mu          sync.Mutex
	collections map[string]map[string]Document
	order       map[string][]string
	watchers    map[string]map[*watcher]struct{}
	newID       func() string
}

type watcher struct {
	collection string
	query      Query
	deliver    func([]Document)
	signal     chan struct{}
	done       chan struct{}
	stopOnce   sync.Once
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		collections: make(map[string]map[string]Document),
		order:       make(map[string][]string),
		watchers:    make(map[string]map[*watcher]struct{}),
		newID:       func() string { return uuid.NewString() },
	}
}

func (m *Memory) Insert(_ context.Context, collection string, doc Document) (string, error) {
	normalized, err := Encode(doc)
	if err != nil {
		return "", apperr.WrapStore("insert", collection, err)
	}
	m.mu.Lock()
	id := m.insertLocked(collection, normalized)
	m.mu.Unlock()
	m.notify(collection)
	return id, nil
}

func (m *Memory) Get(_ context.Context, collection, id string) (Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getLocked(collection, id)
}

func (m *Memory) Update(_ context.Context, collection, id string, fields Fields) error {
	normalized, err := normalizeFields(fields)
	if err != nil {
		return apperr.WrapStore("update", collection, err)
	}
	m.mu.Lock()
	err = m.updateLocked(collection, id, normalized)
	m.mu.Unlock()
	if err != nil {
		return err
	}
	m.notify(collection)
	return nil
}

func (m *Memory) Delete(_ context.Context, collection, id string) error {
	m.mu.Lock()
	docs := m.collections[collection]
	_, existed := docs[id]
	if existed {
		delete(docs, id)
		ids := m.order[collection]
		for i, candidate := range ids {
			if candidate == id {
				m.order[collection] = append(ids[:i:i], ids[i+1:]...)
				break
			}
		}
	}
	m.mu.Unlock()
	if existed {
		m.notify(collection)
	}
	return nil
}

func (m *Memory) Find(_ context.Context, collection string, q Query) ([]Document, error) {
	if err := q.Validate(); err != nil {
		return nil, apperr.WrapStore("find", collection, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findLocked(collection, q), nil
}

func (m *Memory) Count(_ context.Context, collection string, q Query) (int64, error) {
	if err := q.Validate(); err != nil {
		return 0, apperr.WrapStore("count", collection, err)
	}
	q.Limit = 0
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range m.order[collection] {
		if q.Matches(m.collections[collection][id]) {
			n++
		}
	}
	return n, nil
}

func (m *Memory) Page(_ context.Context, collection string, q Query, cursor string, size int) ([]Document, string, error) {
	if err := q.Validate(); err != nil {
		return nil, "", apperr.WrapStore("page", collection, err)
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	var after *CursorKey
	if cursor != "" {
		key, err := q.DecodeCursor(cursor)
		if err != nil {
			return nil, "", apperr.WrapStore("page", collection, err)
		}
		after = &key
	}

	q.Limit = 0
	m.mu.Lock()
	all := m.findLocked(collection, q)
	m.mu.Unlock()
	// the cursor compares ids last, so pages walk the id order even without orderings
	q.Sort(all)

	page := make([]Document, 0, size)
	hasMore := false
	for _, doc := range all {
		if after != nil && !q.After(doc, *after) {
			continue
		}
		if len(page) == size {
			hasMore = true
			break
		}
		page = append(page, doc)
	}
	if !hasMore || len(page) == 0 {
		return page, "", nil
	}
	next, err := q.EncodeCursor(page[len(page)-1])
	if err != nil {
		return nil, "", apperr.WrapStore("page", collection, err)
	}
	return page, next, nil
}

func (m *Memory) Watch(ctx context.Context, collection string, q Query, fn func([]Document)) (func(), error) {
	if err := q.Validate(); err != nil {
		return nil, apperr.WrapStore("watch", collection, err)
	}
	if fn == nil {
		return nil, apperr.WrapStore("watch", collection, fmt.Errorf("nil callback"))
	}
	w := &watcher{
		collection: collection,
		query:      q,
		deliver:    fn,
		signal:     make(chan struct{}, 1),
		done:       make(chan struct{}),
	}
	w.signal <- struct{}{}

	m.mu.Lock()
	if m.watchers[collection] == nil {
		m.watchers[collection] = make(map[*watcher]struct{})
	}
	m.watchers[collection][w] = struct{}{}
	m.mu.Unlock()

	stop := func() {
		w.stopOnce.Do(func() {
			close(w.done)
			m.mu.Lock()
			delete(m.watchers[collection], w)
			if len(m.watchers[collection]) == 0 {
				delete(m.watchers, collection)
			}
			m.mu.Unlock()
		})
	}

	go m.run(ctx, w, stop)
	return stop, nil
}

func (m *Memory) WatchDocument(ctx context.Context, collection, id string, fn func(Document)) (func(), error) {
	if fn == nil {
		return nil, apperr.WrapStore("watch", collection, fmt.Errorf("nil callback"))
	}
	q := NewQuery(Where(IDField, OpEq, id))
	return m.Watch(ctx, collection, q, func(docs []Document) {
		if len(docs) == 0 {
			fn(nil)
			return
		}
		fn(docs[0])
	})
}

func (m *Memory) Increment(_ context.Context, collection, id, field string, delta, floor float64) (float64, error) {
	m.mu.Lock()
	doc, ok := m.collections[collection][id]
	if !ok {
		m.mu.Unlock()
		return 0, fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	var current float64
	if raw, present := doc[field]; present && raw != nil {
		number, ok := asNumber(raw)
		if !ok {
			m.mu.Unlock()
			return 0, apperr.WrapStore("increment", collection, fmt.Errorf("%s/%s field %s is %T, not a number", collection, id, field, raw))
		}
		current = number
	}
	next := current + delta
	if next < floor {
		m.mu.Unlock()
		return current, fmt.Errorf("%w: %s/%s %s=%v delta=%v", ErrBelowFloor, collection, id, field, current, delta)
	}
	doc[field] = next
	m.mu.Unlock()
	m.notify(collection)
	return next, nil
}

// RunTransaction holds the store lock for the whole callback, so fn must only use tx.
func (m *Memory) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	m.mu.Lock()
	tx := &memoryTx{store: m, staged: make(map[string]map[string]Document)}
	if err := fn(ctx, tx); err != nil {
		m.mu.Unlock()
		return err
	}
	touched := tx.commitLocked()
	m.mu.Unlock()
	for _, collection := range touched {
		m.notify(collection)
	}
	return nil
}

func (m *Memory) Close(context.Context) error {
	m.mu.Lock()
	var all []*watcher
	for _, set := range m.watchers {
		for w := range set {
			all = append(all, w)
		}
	}
	m.mu.Unlock()
	for _, w := range all {
		w.stopOnce.Do(func() { close(w.done) })
	}
	m.mu.Lock()
	m.watchers = make(map[string]map[*watcher]struct{})
	m.mu.Unlock()
	return nil
}

func (m *Memory) run(ctx context.Context, w *watcher, stop func()) {
	for {
		select {
		case <-ctx.Done():
			stop()
			return
		case <-w.done:
			return
		case <-w.signal:
			m.mu.Lock()
			snapshot := m.findLocked(w.collection, w.query)
			m.mu.Unlock()
			select {
			case <-w.done:
				return
			default:
			}
			m.safeDeliver(w, snapshot)
		}
	}
}

func (m *Memory) safeDeliver(w *watcher, snapshot []Document) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("docstore watcher callback panic", slog.String("collection", w.collection), slog.Any("error", r))
		}
	}()
	w.deliver(snapshot)
}

func (m *Memory) notify(collection string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for w := range m.watchers[collection] {
		select {
		case w.signal <- struct{}{}:
		default:
		}
	}
}

func (m *Memory) insertLocked(collection string, doc Document) string {
	id := m.newID()
	doc[IDField] = id
	if m.collections[collection] == nil {
		m.collections[collection] = make(map[string]Document)
	}
	m.collections[collection][id] = doc
	m.order[collection] = append(m.order[collection], id)
	return id
}

func (m *Memory) getLocked(collection, id string) (Document, error) {
	doc, ok := m.collections[collection][id]
	if !ok {
		return nil, nil
	}
	return cloneDocument(doc, collection)
}

func (m *Memory) updateLocked(collection, id string, fields Document) error {
	doc, ok := m.collections[collection][id]
	if !ok {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
	}
	for key, value := range fields {
		doc[key] = value
	}
	return nil
}

func (m *Memory) findLocked(collection string, q Query) []Document {
	docs := make([]Document, 0)
	for _, id := range m.order[collection] {
		doc := m.collections[collection][id]
		if !q.Matches(doc) {
			continue
		}
		cloned, err := cloneDocument(doc, collection)
		if err != nil {
			continue
		}
		docs = append(docs, cloned)
	}
	if len(q.Orders) > 0 {
		q.Sort(docs)
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs
}

func cloneDocument(doc Document, collection string) (Document, error) {
	cloned, err := Encode(doc)
	if err != nil {
		return nil, apperr.WrapStore("read", collection, err)
	}
	return cloned, nil
}

func normalizeFields(fields Fields) (Document, error) {
	if _, ok := fields[IDField]; ok {
		return nil, fmt.Errorf("field %s is immutable", IDField)
	}
	return Encode(map[string]any(fields))
}

type memoryTx struct {
	store  *Memory
	staged map[string]map[string]Document
	fresh  []stagedInsert
}

type stagedInsert struct {
	collection string
	id         string
}

func (tx *memoryTx) Get(_ context.Context, collection, id string) (Document, error) {
	if doc, ok := tx.staged[collection][id]; ok {
		return cloneDocument(doc, collection)
	}
	return tx.store.getLocked(collection, id)
}

func (tx *memoryTx) Insert(_ context.Context, collection string, doc Document) (string, error) {
	normalized, err := Encode(doc)
	if err != nil {
		return "", apperr.WrapStore("insert", collection, err)
	}
	id := tx.store.newID()
	normalized[IDField] = id
	tx.stage(collection, id, normalized)
	tx.fresh = append(tx.fresh, stagedInsert{collection: collection, id: id})
	return id, nil
}

func (tx *memoryTx) Update(_ context.Context, collection, id string, fields Fields) error {
	normalized, err := normalizeFields(fields)
	if err != nil {
		return apperr.WrapStore("update", collection, err)
	}
	current, ok := tx.staged[collection][id]
	if !ok {
		existing, found := tx.store.collections[collection][id]
		if !found {
			return fmt.Errorf("%w: %s/%s", ErrNotFound, collection, id)
		}
		current, err = cloneDocument(existing, collection)
		if err != nil {
			return err
		}
	}
	for key, value := range normalized {
		current[key] = value
	}
	tx.stage(collection, id, current)
	return nil
}

func (tx *memoryTx) stage(collection, id string, doc Document) {
	if tx.staged[collection] == nil {
		tx.staged[collection] = make(map[string]Document)
	}
	tx.staged[collection][id] = doc
}

func (tx *memoryTx) commitLocked() []string {
	touched := make([]string, 0, len(tx.staged))
	for collection, docs := range tx.staged {
		if tx.store.collections[collection] == nil {
			tx.store.collections[collection] = make(map[string]Document)
		}
		for id, doc := range docs {
			tx.store.collections[collection][id] = doc
		}
		touched = append(touched, collection)
	}
	for _, ins := range tx.fresh {
		tx.store.order[ins.collection] = append(tx.store.order[ins.collection], ins.id)
	}
	return touched
}

var _ Store = (*Memory)(nil)
