package docstore

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Op is the comparison operator of a filter clause.
type Op string

const (
	OpEq  Op = "=="
	OpLt  Op = "<"
	OpLte Op = "<="
	OpGt  Op = ">"
	OpGte Op = ">="
	OpIn  Op = "in"
)

// Direction is the ordering direction of an order clause.
type Direction int

const (
	Asc Direction = iota
	Desc
)

type clauseKind int

const (
	clauseFilter clauseKind = iota
	clauseOrder
	clauseLimit
)

// Clause is one conjunctive filter, ordering, or limit element of a query.
type Clause struct {
	kind  clauseKind
	Field string
	Op    Op
	Value any
	Dir   Direction
	N     int
}

// Where builds a filter clause.
func Where(field string, op Op, value any) Clause {
	return Clause{kind: clauseFilter, Field: strings.TrimSpace(field), Op: op, Value: value}
}

// OrderBy builds an ordering clause. Clause order is significant.
func OrderBy(field string, dir Direction) Clause {
	return Clause{kind: clauseOrder, Field: strings.TrimSpace(field), Dir: dir}
}

// Limit caps the number of documents returned by Find and Watch.
func Limit(n int) Clause {
	return Clause{kind: clauseLimit, N: n}
}

// IsFilter reports whether the clause filters documents.
func (c Clause) IsFilter() bool { return c.kind == clauseFilter }

// IsOrder reports whether the clause orders documents.
func (c Clause) IsOrder() bool { return c.kind == clauseOrder }

// Query is the compiled form of a clause list.
type Query struct {
	Filters []Clause
	Orders  []Clause
	Limit   int
}

// NewQuery splits clauses into filters, orderings and limit, keeping their relative order.
func NewQuery(clauses ...Clause) Query {
	var q Query
	for _, c := range clauses {
		switch c.kind {
		case clauseFilter:
			q.Filters = append(q.Filters, c)
		case clauseOrder:
			q.Orders = append(q.Orders, c)
		case clauseLimit:
			if c.N > 0 {
				q.Limit = c.N
			}
		}
	}
	return q
}

// Validate rejects clauses the stores cannot evaluate.
func (q Query) Validate() error {
	for _, f := range q.Filters {
		if f.Field == "" {
			return fmt.Errorf("docstore: filter without field")
		}
		switch f.Op {
		case OpEq, OpLt, OpLte, OpGt, OpGte:
		case OpIn:
			if _, ok := normalizeValue(f.Value).(primitive.A); !ok {
				return fmt.Errorf("docstore: %q in-filter needs a list value", f.Field)
			}
		default:
			return fmt.Errorf("docstore: unsupported operator %q", f.Op)
		}
	}
	for _, o := range q.Orders {
		if o.Field == "" {
			return fmt.Errorf("docstore: order without field")
		}
	}
	return nil
}

// Matches reports whether doc satisfies every filter clause and carries every ordered field.
// Documents missing an ordered field are excluded, mirroring index-backed stores.
func (q Query) Matches(doc Document) bool {
	for _, f := range q.Filters {
		value, ok := lookup(doc, f.Field)
		if !ok {
			return false
		}
		if !matchFilter(value, f.Op, normalizeValue(f.Value)) {
			return false
		}
	}
	for _, o := range q.Orders {
		if _, ok := lookup(doc, o.Field); !ok {
			return false
		}
	}
	return true
}

// Sort orders docs by the query orderings, breaking ties by identifier.
func (q Query) Sort(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		return compareKeys(q.keyOf(docs[i]), q.keyOf(docs[j]), q.Orders) < 0
	})
}

func matchFilter(value any, op Op, target any) bool {
	if op == OpIn {
		list, _ := target.(primitive.A)
		for _, candidate := range list {
			if cmp, ok := compareValues(value, candidate); ok && cmp == 0 {
				return true
			}
		}
		return false
	}
	cmp, ok := compareValues(value, target)
	if !ok {
		return false
	}
	switch op {
	case OpEq:
		return cmp == 0
	case OpLt:
		return cmp < 0
	case OpLte:
		return cmp <= 0
	case OpGt:
		return cmp > 0
	case OpGte:
		return cmp >= 0
	default:
		return false
	}
}

func lookup(doc Document, field string) (any, bool) {
	if doc == nil {
		return nil, false
	}
	if v, ok := doc[field]; ok {
		return v, true
	}
	parts := strings.Split(field, ".")
	if len(parts) < 2 {
		return nil, false
	}
	var current any = map[string]any(doc)
	for _, part := range parts {
		switch typed := current.(type) {
		case primitive.M:
			v, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = v
		case map[string]any:
			v, ok := typed[part]
			if !ok {
				return nil, false
			}
			current = v
		default:
			return nil, false
		}
	}
	return current, true
}

// compareValues orders two normalized values of a comparable kind.
func compareValues(a, b any) (int, bool) {
	if af, ok := asNumber(a); ok {
		bf, ok := asNumber(b)
		if !ok {
			return 0, false
		}
		return compareOrdered(af, bf), true
	}
	if at, ok := asTime(a); ok {
		bt, ok := asTime(b)
		if !ok {
			return 0, false
		}
		return compareOrdered(at, bt), true
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		default:
			return 1, true
		}
	case nil:
		if b == nil {
			return 0, true
		}
	}
	return 0, false
}

func compareOrdered[N int64 | float64](a, b N) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func asNumber(v any) (float64, bool) {
	switch typed := v.(type) {
	case int32:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case int:
		return float64(typed), true
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	default:
		return 0, false
	}
}

func asTime(v any) (int64, bool) {
	switch typed := v.(type) {
	case primitive.DateTime:
		return int64(typed), true
	case time.Time:
		return typed.UnixMilli(), true
	default:
		return 0, false
	}
}

// CursorKey identifies a document's position within an ordered result.
type CursorKey struct {
	Values []any
	ID     string
}

func (q Query) keyOf(doc Document) CursorKey {
	key := CursorKey{Values: make([]any, 0, len(q.Orders)), ID: DocumentID(doc)}
	for _, o := range q.Orders {
		v, _ := lookup(doc, o.Field)
		key.Values = append(key.Values, v)
	}
	return key
}

func compareKeys(a, b CursorKey, orders []Clause) int {
	for i, o := range orders {
		if i >= len(a.Values) || i >= len(b.Values) {
			break
		}
		cmp, ok := compareValues(a.Values[i], b.Values[i])
		if !ok || cmp == 0 {
			continue
		}
		if o.Dir == Desc {
			return -cmp
		}
		return cmp
	}
	return strings.Compare(a.ID, b.ID)
}
