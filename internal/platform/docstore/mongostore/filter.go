package mongostore

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"mesaOps/internal/platform/docstore"
)

var operators = map[docstore.Op]string{
	docstore.OpEq:  "$eq",
	docstore.OpLt:  "$lt",
	docstore.OpLte: "$lte",
	docstore.OpGt:  "$gt",
	docstore.OpGte: "$gte",
	docstore.OpIn:  "$in",
}

// buildFilter translates the conjunctive filters into a mongo filter document. Ordered fields
// must exist so results match the in-memory semantics.
func buildFilter(q docstore.Query) (bson.M, error) {
	clauses := make(bson.A, 0, len(q.Filters)+len(q.Orders))
	for _, f := range q.Filters {
		op, ok := operators[f.Op]
		if !ok {
			return nil, fmt.Errorf("mongostore: unsupported operator %q", f.Op)
		}
		clauses = append(clauses, bson.M{f.Field: bson.M{op: f.Value}})
	}
	for _, o := range q.Orders {
		clauses = append(clauses, bson.M{o.Field: bson.M{"$exists": true}})
	}
	if len(clauses) == 0 {
		return bson.M{}, nil
	}
	return bson.M{"$and": clauses}, nil
}

// buildSort returns the sort specification with the identifier as final tiebreaker.
func buildSort(q docstore.Query) bson.D {
	sort := make(bson.D, 0, len(q.Orders)+1)
	for _, o := range q.Orders {
		sort = append(sort, bson.E{Key: o.Field, Value: direction(o.Dir)})
	}
	return append(sort, bson.E{Key: docstore.IDField, Value: 1})
}

// keysetFilter selects documents sorting strictly after key under the query ordering.
func keysetFilter(q docstore.Query, key docstore.CursorKey) bson.M {
	branches := make(bson.A, 0, len(q.Orders)+1)
	for i := 0; i <= len(q.Orders); i++ {
		branch := bson.M{}
		for j := 0; j < i; j++ {
			branch[q.Orders[j].Field] = key.Values[j]
		}
		if i == len(q.Orders) {
			branch[docstore.IDField] = bson.M{"$gt": key.ID}
		} else {
			op := "$gt"
			if q.Orders[i].Dir == docstore.Desc {
				op = "$lt"
			}
			branch[q.Orders[i].Field] = bson.M{op: key.Values[i]}
		}
		branches = append(branches, branch)
	}
	return bson.M{"$or": branches}
}

func direction(dir docstore.Direction) int {
	if dir == docstore.Desc {
		return -1
	}
	return 1
}

func and(filters ...bson.M) bson.M {
	parts := make(bson.A, 0, len(filters))
	for _, f := range filters {
		if len(f) == 0 {
			continue
		}
		parts = append(parts, f)
	}
	switch len(parts) {
	case 0:
		return bson.M{}
	case 1:
		return parts[0].(bson.M)
	default:
		return bson.M{"$and": parts}
	}
}
