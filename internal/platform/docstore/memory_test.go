package docstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"mesaOps/internal/shared/apperr"
)

func seedTables(t *testing.T, store *Memory) map[int]string {
	t.Helper()
	ids := make(map[int]string)
	rows := []Document{
		{"numero": 3, "status": "livre", "restauranteId": "r1"},
		{"numero": 1, "status": "ocupada", "restauranteId": "r1"},
		{"numero": 2, "status": "livre", "restauranteId": "r1"},
		{"numero": 4, "status": "livre", "restauranteId": "r2"},
	}
	for _, row := range rows {
		id, err := store.Insert(context.Background(), "mesas", row)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		ids[row["numero"].(int)] = id
	}
	return ids
}

func numbers(docs []Document) []int {
	out := make([]int, 0, len(docs))
	for _, doc := range docs {
		n, _ := asNumber(doc["numero"])
		out = append(out, int(n))
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMemoryFind(t *testing.T) {
	store := NewMemory()
	seedTables(t, store)

	cases := []struct {
		name     string
		clauses  []Clause
		expected []int
	}{
		{name: "equality ordered asc", clauses: []Clause{Where("restauranteId", OpEq, "r1"), OrderBy("numero", Asc)}, expected: []int{1, 2, 3}},
		{name: "equality ordered desc", clauses: []Clause{Where("restauranteId", OpEq, "r1"), OrderBy("numero", Desc)}, expected: []int{3, 2, 1}},
		{name: "conjunction", clauses: []Clause{Where("restauranteId", OpEq, "r1"), Where("status", OpEq, "livre"), OrderBy("numero", Asc)}, expected: []int{2, 3}},
		{name: "range", clauses: []Clause{Where("numero", OpGte, 2), Where("numero", OpLt, 4), OrderBy("numero", Asc)}, expected: []int{2, 3}},
		{name: "membership", clauses: []Clause{Where("numero", OpIn, []int{1, 4}), OrderBy("numero", Asc)}, expected: []int{1, 4}},
		{name: "limit", clauses: []Clause{OrderBy("numero", Asc), Limit(2)}, expected: []int{1, 2}},
		{name: "missing ordered field excluded", clauses: []Clause{OrderBy("capacidade", Asc)}, expected: []int{}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			docs, err := store.Find(context.Background(), "mesas", NewQuery(tc.clauses...))
			if err != nil {
				t.Fatalf("find: %v", err)
			}
			if got := numbers(docs); !equalInts(got, tc.expected) {
				t.Fatalf("expected %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestMemoryFindRejectsInvalidQuery(t *testing.T) {
	store := NewMemory()
	_, err := store.Find(context.Background(), "mesas", NewQuery(Where("status", OpIn, "livre")))
	var storeErr *apperr.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestMemoryTimeRange(t *testing.T) {
	store := NewMemory()
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)
	for _, at := range []time.Time{day.Add(-time.Minute), day, day.Add(23 * time.Hour), day.Add(24 * time.Hour)} {
		if _, err := store.Insert(context.Background(), "pedidos", Document{"hora_criacao": at}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	n, err := store.Count(context.Background(), "pedidos", NewQuery(
		Where("hora_criacao", OpGte, day),
		Where("hora_criacao", OpLt, day.Add(24*time.Hour)),
	))
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 documents in window, got %d", n)
	}
}

func TestMemoryUpdateMergesAndReportsMissing(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	id, _ := store.Insert(ctx, "mesas", Document{"numero": 7, "status": "livre", "capacidade": 4})

	if err := store.Update(ctx, "mesas", id, Fields{"status": "ocupada"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	doc, err := store.Get(ctx, "mesas", id)
	if err != nil || doc == nil {
		t.Fatalf("get: %v %v", doc, err)
	}
	if doc["status"] != "ocupada" {
		t.Fatalf("status not merged: %v", doc["status"])
	}
	if n, _ := asNumber(doc["capacidade"]); n != 4 {
		t.Fatalf("untouched field changed: %v", doc["capacidade"])
	}

	err = store.Update(ctx, "mesas", "missing", Fields{"status": "livre"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := store.Update(ctx, "mesas", id, Fields{IDField: "other"}); err == nil {
		t.Fatal("expected id overwrite to fail")
	}
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	id, _ := store.Insert(ctx, "mesas", Document{"status": "livre"})
	doc, _ := store.Get(ctx, "mesas", id)
	doc["status"] = "mutated"
	again, _ := store.Get(ctx, "mesas", id)
	if again["status"] != "livre" {
		t.Fatalf("stored document was mutated through a read: %v", again["status"])
	}
	missing, err := store.Get(ctx, "mesas", "nope")
	if err != nil || missing != nil {
		t.Fatalf("expected explicit absence, got %v %v", missing, err)
	}
}

func TestMemoryDeleteIsIdempotent(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	id, _ := store.Insert(ctx, "mesas", Document{"status": "livre"})
	for i := 0; i < 2; i++ {
		if err := store.Delete(ctx, "mesas", id); err != nil {
			t.Fatalf("delete #%d: %v", i+1, err)
		}
	}
	if doc, _ := store.Get(ctx, "mesas", id); doc != nil {
		t.Fatal("document still present after delete")
	}
}

func TestMemoryPage(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	for n := 1; n <= 5; n++ {
		store.Insert(ctx, "mesas", Document{"numero": n})
	}
	q := NewQuery(OrderBy("numero", Desc))

	var seen []int
	cursor := ""
	pages := 0
	for {
		docs, next, err := store.Page(ctx, "mesas", q, cursor, 2)
		if err != nil {
			t.Fatalf("page: %v", err)
		}
		pages++
		seen = append(seen, numbers(docs)...)
		if next == "" {
			break
		}
		cursor = next
	}
	if pages != 3 {
		t.Fatalf("expected 3 pages, got %d", pages)
	}
	if !equalInts(seen, []int{5, 4, 3, 2, 1}) {
		t.Fatalf("unexpected page sequence %v", seen)
	}

	if _, _, err := store.Page(ctx, "mesas", q, "not-a-cursor", 2); !errors.Is(err, ErrInvalidCursor) {
		t.Fatalf("expected invalid cursor, got %v", err)
	}
}

func TestMemoryPageWithoutOrderingVisitsEveryDocumentOnce(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	for n := 1; n <= 20; n++ {
		category := "x"
		if n%4 == 0 {
			category = "y"
		}
		store.Insert(ctx, "cardapio", Document{"numero": n, "categoria": category})
	}
	q := NewQuery(Where("categoria", OpEq, "x"))

	seen := make(map[string]int)
	cursor := ""
	for pages := 0; ; pages++ {
		if pages > 10 {
			t.Fatal("pagination did not terminate")
		}
		docs, next, err := store.Page(ctx, "cardapio", q, cursor, 4)
		if err != nil {
			t.Fatalf("page: %v", err)
		}
		for _, doc := range docs {
			seen[DocumentID(doc)]++
		}
		if next == "" {
			break
		}
		cursor = next
	}
	if len(seen) != 15 {
		t.Fatalf("expected 15 distinct documents, got %d", len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("document %s returned %d times", id, count)
		}
	}
}

func TestMemoryPageExactFitHasNoNextCursor(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	for n := 1; n <= 2; n++ {
		store.Insert(ctx, "mesas", Document{"numero": n})
	}
	docs, next, err := store.Page(ctx, "mesas", NewQuery(OrderBy("numero", Asc)), "", 2)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if len(docs) != 2 || next != "" {
		t.Fatalf("expected last page of 2 without cursor, got %d docs cursor=%q", len(docs), next)
	}
}

func TestMemoryWatchDeliversFullSnapshots(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	updates := make(chan []Document, 8)
	stop, err := store.Watch(ctx, "mesas", NewQuery(Where("status", OpEq, "livre"), OrderBy("numero", Asc)), func(docs []Document) {
		updates <- docs
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	if got := numbers(waitSnapshot(t, updates)); len(got) != 0 {
		t.Fatalf("expected empty initial snapshot, got %v", got)
	}

	store.Insert(ctx, "mesas", Document{"numero": 2, "status": "livre"})
	if got := numbers(waitSnapshot(t, updates)); !equalInts(got, []int{2}) {
		t.Fatalf("unexpected snapshot %v", got)
	}
	store.Insert(ctx, "mesas", Document{"numero": 1, "status": "livre"})
	if got := numbers(waitSnapshot(t, updates)); !equalInts(got, []int{1, 2}) {
		t.Fatalf("unexpected snapshot %v", got)
	}

	stop()
	stop()
	store.Insert(ctx, "mesas", Document{"numero": 3, "status": "livre"})
	select {
	case docs := <-updates:
		t.Fatalf("unexpected delivery after stop: %v", numbers(docs))
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMemoryWatchDocumentReportsAbsence(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	id, _ := store.Insert(ctx, "pedidos", Document{"status": "novo"})

	updates := make(chan Document, 4)
	stop, err := store.WatchDocument(ctx, "pedidos", id, func(doc Document) { updates <- doc })
	if err != nil {
		t.Fatalf("watch document: %v", err)
	}
	defer stop()

	first := waitDocument(t, updates)
	if first == nil || first["status"] != "novo" {
		t.Fatalf("unexpected first delivery %v", first)
	}
	store.Delete(ctx, "pedidos", id)
	if doc := waitDocument(t, updates); doc != nil {
		t.Fatalf("expected nil after delete, got %v", doc)
	}
}

func TestMemoryIncrementGuardsFloor(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	id, _ := store.Insert(ctx, "estoque", Document{"quantidade": 3})

	if _, err := store.Increment(ctx, "estoque", id, "quantidade", -5, 0); !errors.Is(err, ErrBelowFloor) {
		t.Fatalf("expected below floor, got %v", err)
	}
	doc, _ := store.Get(ctx, "estoque", id)
	if n, _ := asNumber(doc["quantidade"]); n != 3 {
		t.Fatalf("quantity changed after rejected increment: %v", n)
	}
	next, err := store.Increment(ctx, "estoque", id, "quantidade", -3, 0)
	if err != nil || next != 0 {
		t.Fatalf("expected 0, got %v %v", next, err)
	}
	if _, err := store.Increment(ctx, "estoque", "missing", "quantidade", 1, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMemoryIncrementRejectsNonNumericField(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	id, _ := store.Insert(ctx, "estoque", Document{"quantidade": "muito"})

	_, err := store.Increment(ctx, "estoque", id, "quantidade", 1, 0)
	var storeErr *apperr.StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	doc, _ := store.Get(ctx, "estoque", id)
	if doc["quantidade"] != "muito" {
		t.Fatalf("field overwritten: %v", doc["quantidade"])
	}

	fresh, _ := store.Insert(ctx, "estoque", Document{"nome": "sal"})
	if next, err := store.Increment(ctx, "estoque", fresh, "quantidade", 2, 0); err != nil || next != 2 {
		t.Fatalf("missing field should start at 0, got %v %v", next, err)
	}
}

func TestMemoryTransactionRollsBackOnError(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	tableID, _ := store.Insert(ctx, "mesas", Document{"status": "livre"})

	boom := errors.New("boom")
	err := store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Update(ctx, "mesas", tableID, Fields{"status": "reservada"}); err != nil {
			return err
		}
		staged, _ := tx.Get(ctx, "mesas", tableID)
		if staged["status"] != "reservada" {
			t.Fatalf("transaction does not read its own writes: %v", staged["status"])
		}
		if _, err := tx.Insert(ctx, "reservas", Document{"mesa_id": tableID}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected callback error, got %v", err)
	}
	doc, _ := store.Get(ctx, "mesas", tableID)
	if doc["status"] != "livre" {
		t.Fatalf("rolled back write leaked: %v", doc["status"])
	}
	if n, _ := store.Count(ctx, "reservas", Query{}); n != 0 {
		t.Fatalf("rolled back insert leaked: %d", n)
	}
}

func TestMemoryTransactionCommits(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()
	tableID, _ := store.Insert(ctx, "mesas", Document{"status": "livre"})

	var reservationID string
	err := store.RunTransaction(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.Update(ctx, "mesas", tableID, Fields{"status": "reservada"}); err != nil {
			return err
		}
		id, err := tx.Insert(ctx, "reservas", Document{"mesa_id": tableID})
		reservationID = id
		return err
	})
	if err != nil {
		t.Fatalf("transaction: %v", err)
	}
	doc, _ := store.Get(ctx, "mesas", tableID)
	if doc["status"] != "reservada" {
		t.Fatalf("table not updated: %v", doc["status"])
	}
	res, _ := store.Get(ctx, "reservas", reservationID)
	if res == nil || res["mesa_id"] != tableID {
		t.Fatalf("reservation not inserted: %v", res)
	}
}

func waitSnapshot(t *testing.T, ch <-chan []Document) []Document {
	t.Helper()
	select {
	case docs := <-ch:
		return docs
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func waitDocument(t *testing.T, ch <-chan Document) Document {
	t.Helper()
	select {
	case doc := <-ch:
		return doc
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for document")
		return nil
	}
}
