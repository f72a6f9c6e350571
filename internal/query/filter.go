// Package query describes row filters as small predicate trees. A Filter can
// be rendered into a parameterised Postgres WHERE clause or evaluated directly
// against an in-memory record, so both stores enforce the same predicate.
package query

import (
	"fmt"
	"reflect"
	"strings"
)

// Field names double as column names in the Postgres schema.
type Field string

const (
	FieldID       Field = "id"
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldRole     Field = "role"
	FieldTitle    Field = "title"
	FieldContent  Field = "content"
	FieldHidden   Field = "hidden"
	FieldAuthorID Field = "author_id"
)

// Record is a row that filters can be evaluated against.
type Record interface {
	FieldValue(f Field) (any, bool)
}

type Filter interface {
	Match(r Record) bool
	render(b *builder)
}

type eq struct {
	field Field
	value any
}

type ne struct {
	field Field
	value any
}

type and []Filter

type or []Filter

func Eq(field Field, value any) Filter {
	return eq{field: field, value: normalize(value)}
}

func Ne(field Field, value any) Filter {
	return ne{field: field, value: normalize(value)}
}

// All matches every row.
func All() Filter {
	return and{}
}

// And flattens nested conjunctions and drops nil operands.
func And(filters ...Filter) Filter {
	out := make(and, 0, len(filters))
	for _, f := range filters {
		switch v := f.(type) {
		case nil:
			continue
		case and:
			out = append(out, v...)
		default:
			out = append(out, v)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func Or(filters ...Filter) Filter {
	out := make(or, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			out = append(out, f)
		}
	}
	return out
}

// IsAll reports whether f places no restriction at all.
func IsAll(f Filter) bool {
	a, ok := f.(and)
	return f == nil || (ok && len(a) == 0)
}

// Contains reports whether every top-level conjunct of sub is also a
// top-level conjunct of f, i.e. whether f is at least as strict as sub.
func Contains(f, sub Filter) bool {
	if reflect.DeepEqual(f, sub) {
		return true
	}

	have := conjuncts(f)
	for _, want := range conjuncts(sub) {
		found := false
		for _, h := range have {
			if reflect.DeepEqual(h, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func conjuncts(f Filter) []Filter {
	if a, ok := f.(and); ok {
		return a
	}
	return []Filter{f}
}

func (f eq) Match(r Record) bool {
	v, ok := r.FieldValue(f.field)
	return ok && normalize(v) == f.value
}

func (f ne) Match(r Record) bool {
	v, ok := r.FieldValue(f.field)
	return ok && normalize(v) != f.value
}

func (f and) Match(r Record) bool {
	for _, part := range f {
		if !part.Match(r) {
			return false
		}
	}
	return true
}

func (f or) Match(r Record) bool {
	for _, part := range f {
		if part.Match(r) {
			return true
		}
	}
	return false
}

// normalize folds integer kinds to int64 and named string types to string
// so that values compare equal regardless of how callers typed them.
func normalize(v any) any {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32:
		return int64(rv.Uint())
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return rv.Bool()
	default:
		return v
	}
}

// String renders f with its values inlined; meant for logs and test output.
func String(f Filter) string {
	clause, args := SQL(f, 1)
	for i := len(args); i >= 1; i-- {
		clause = strings.ReplaceAll(clause, fmt.Sprintf("$%d", i), fmt.Sprintf("%#v", args[i-1]))
	}
	return clause
}
