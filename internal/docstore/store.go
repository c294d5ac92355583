// Package docstore provides the document store the dashboard reads from.
// Documents are addressed by collection and id; queries are conjunctions of
// equality and membership conditions over top-level fields.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
)

// ErrNotFound is returned by Get when no document has the requested id.
var ErrNotFound = errors.New("docstore: document not found")

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// Store is the interface for reading and writing documents.
type Store interface {
	// Get decodes the document with the given id into out.
	// It returns ErrNotFound when the id is empty or unknown.
	Get(ctx context.Context, collection, id string, out any) error

	// Find decodes all documents matching filter into out, which must be a
	// pointer to a slice. An empty Filter matches every document.
	Find(ctx context.Context, collection string, filter Filter, out any) error

	// Insert writes documents, replacing any existing document with the
	// same id. Each document must carry a non-empty "_id".
	Insert(ctx context.Context, collection string, docs ...any) error

	Close() error
}

// Op is a condition operator.
type Op int

const (
	OpEq Op = iota
	OpIn
)

// Cond matches a document when any of Fields satisfies Op against Values.
// Listing several fields expresses "the same fact stored under two names".
type Cond struct {
	Fields []string
	Op     Op
	Values []string
}

// Filter is a conjunction of conditions.
type Filter []Cond

// Where builds a Filter from conditions.
func Where(conds ...Cond) Filter { return Filter(conds) }

// Eq matches documents whose field equals value.
func Eq(field, value string) Cond { return AnyOf(field).Eq(value) }

// In matches documents whose field is one of values.
func In(field string, values []string) Cond { return AnyOf(field).In(values) }

// FieldSet names alternative fields holding the same value.
type FieldSet []string

// AnyOf returns a FieldSet; conditions built from it match when any field matches.
func AnyOf(fields ...string) FieldSet { return FieldSet(fields) }

func (fs FieldSet) Eq(value string) Cond {
	return Cond{Fields: fs, Op: OpEq, Values: []string{value}}
}

func (fs FieldSet) In(values []string) Cond {
	return Cond{Fields: fs, Op: OpIn, Values: values}
}

// MatchesNothing reports whether the filter contains a membership test
// against an empty set. Stores return an empty result for such filters
// without issuing a query.
func (f Filter) MatchesNothing() bool {
	for _, c := range f {
		if c.Op == OpIn && len(c.Values) == 0 {
			return true
		}
	}
	return false
}

var fieldName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks that every field name is a plain identifier.
func (f Filter) Validate() error {
	for _, c := range f {
		if len(c.Fields) == 0 {
			return errors.New("docstore: condition without fields")
		}
		for _, name := range c.Fields {
			if !fieldName.MatchString(name) {
				return fmt.Errorf("docstore: invalid field name %q", name)
			}
		}
		if c.Op != OpEq && c.Op != OpIn {
			return fmt.Errorf("docstore: unknown operator %d", c.Op)
		}
	}
	return nil
}

// Options selects and configures a Store implementation.
type Options struct {
	Driver        string // "sqlite", "mongo" or "memory"
	DSN           string
	MongoURI      string
	MongoDatabase string
}

// Open returns the Store selected by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", "sqlite":
		s, err := OpenSQLite(ctx, opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return s, nil
	case "mongo":
		s, err := NewMongoStore(ctx, opts.MongoURI, opts.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("opening mongo store: %w", err)
		}
		return s, nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("docstore: unknown driver %q", opts.Driver)
	}
}

// emptyResult sets *out to an empty, non-nil slice.
func emptyResult(out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("docstore: Find needs a pointer to a slice, got %T", out)
	}
	rv.Elem().Set(reflect.MakeSlice(rv.Elem().Type(), 0, 0))
	return nil
}
