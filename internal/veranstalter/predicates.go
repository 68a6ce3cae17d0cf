package veranstalter

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/JaimeStill/veranstalter/pkg/query"
)

// Suchparameter maps search keys to their raw string values.
type Suchparameter map[string]string

// SearchKeys is the allow-list of keys Find accepts.
var SearchKeys = []string{
	"id",
	"name",
	"email",
	"aktiv",
	"ort",
	"land",
	"plz",
	"telefon",
	"kategorien",
	"art",
}

// Validate reports ErrInvalidSearch for keys outside SearchKeys.
func (s Suchparameter) Validate() error {
	for key := range s {
		if !slices.Contains(SearchKeys, key) {
			return fmt.Errorf("%w: %s", ErrInvalidSearch, key)
		}
	}
	return nil
}

// Op is the comparison a Predicate applies.
type Op int

const (
	OpEquals Op = iota
	OpContains
	OpAnyOf
)

func (o Op) String() string {
	switch o {
	case OpEquals:
		return "equals"
	case OpContains:
		return "contains"
	case OpAnyOf:
		return "any-of"
	default:
		return "unknown"
	}
}

// Predicate is a single condition on a projected field.
type Predicate struct {
	Field string
	Op    Op
	Value any
}

// Apply adds the condition to b.
func (p Predicate) Apply(b *query.Builder) *query.Builder {
	switch p.Op {
	case OpContains:
		s, _ := p.Value.(string)
		return b.WhereContains(p.Field, &s)
	case OpAnyOf:
		return b.WhereAnyOf(p.Field, p.Value)
	default:
		return b.WhereEquals(p.Field, p.Value)
	}
}

// Predicates are combined with AND.
type Predicates []Predicate

// Apply adds every predicate to b.
func (ps Predicates) Apply(b *query.Builder) *query.Builder {
	for _, p := range ps {
		p.Apply(b)
	}
	return b
}

// BuildPredicates translates search parameters into predicates.
// Keys without a predicate policy are dropped and logged at debug level.
// A non-numeric id yields ErrInvalidSearch.
func BuildPredicates(params Suchparameter, logger *slog.Logger) (Predicates, error) {
	preds := make(Predicates, 0, len(params))

	for _, key := range slices.Sorted(maps.Keys(params)) {
		value := params[key]

		switch key {
		case "id":
			id, err := strconv.Atoi(value)
			if err != nil {
				return nil, fmt.Errorf("%w: id %q", ErrInvalidSearch, value)
			}
			preds = append(preds, Predicate{Field: "ID", Op: OpEquals, Value: id})
		case "name":
			preds = append(preds, Predicate{Field: "Name", Op: OpContains, Value: value})
		case "email":
			preds = append(preds, Predicate{Field: "Email", Op: OpEquals, Value: value})
		case "aktiv":
			preds = append(preds, Predicate{
				Field: "Aktiv",
				Op:    OpEquals,
				Value: strings.ToLower(value) == "true",
			})
		case "art":
			preds = append(preds, Predicate{Field: "Art", Op: OpEquals, Value: value})
		case "ort":
			preds = append(preds, Predicate{Field: "Ort", Op: OpContains, Value: value})
		case "land":
			preds = append(preds, Predicate{Field: "Land", Op: OpEquals, Value: value})
		case "plz":
			preds = append(preds, Predicate{Field: "Plz", Op: OpEquals, Value: value})
		case "telefon":
			preds = append(preds, Predicate{Field: "Telefon", Op: OpEquals, Value: value})
		case "kategorien":
			preds = append(preds, Predicate{Field: "Kategorien", Op: OpAnyOf, Value: value})
		default:
			logger.Debug("search key dropped", "key", key, "value", value)
		}
	}

	return preds, nil
}
