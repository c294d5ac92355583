// Package seed loads fixture documents into a store. Fixtures are CUE (or
// plain JSON, which is valid CUE) checked against an embedded schema.
package seed

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/google/uuid"

	"github.com/matthewbaird/sughar/internal/docstore"
	"github.com/matthewbaird/sughar/internal/model"
)

//go:embed schema.cue
var schemaSrc string

// Fixture is a set of documents grouped by collection.
type Fixture struct {
	Users           []model.User              `json:"users"`
	Properties      []model.Property          `json:"properties"`
	Units           []model.Unit              `json:"units"`
	Leases          []model.LeaseAgreement    `json:"leases"`
	Payments        []model.Payment           `json:"payments"`
	ServiceRequests []model.ServiceRequest    `json:"serviceRequests"`
	Applications    []model.RentalApplication `json:"applications"`
}

// Load reads and validates the fixture at path.
func Load(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	return Parse(filepath.Base(path), data)
}

// Parse validates data against the fixture schema and decodes it.
func Parse(name string, data []byte) (*Fixture, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSrc, cue.Filename("schema.cue"))
	if schema.Err() != nil {
		return nil, fmt.Errorf("compiling fixture schema: %w", schema.Err())
	}
	val := ctx.CompileBytes(data, cue.Filename(name))
	if val.Err() != nil {
		return nil, fmt.Errorf("parsing %s: %w", name, val.Err())
	}
	val = schema.LookupPath(cue.ParsePath("#Fixture")).Unify(val)
	if err := val.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("validating %s: %w", name, err)
	}

	raw, err := val.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("exporting %s: %w", name, err)
	}
	var f Fixture
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return &f, nil
}

// Seed inserts every document of f, assigning ids to documents without one.
// Documents with an existing id are replaced.
func Seed(ctx context.Context, store docstore.Store, f *Fixture) error {
	for i := range f.Properties {
		ensureID(&f.Properties[i].ID)
	}
	for i := range f.Units {
		ensureID(&f.Units[i].ID)
	}
	for i := range f.Leases {
		ensureID(&f.Leases[i].ID)
	}
	for i := range f.Payments {
		ensureID(&f.Payments[i].ID)
	}
	for i := range f.ServiceRequests {
		ensureID(&f.ServiceRequests[i].ID)
	}
	for i := range f.Applications {
		ensureID(&f.Applications[i].ID)
	}

	batches := []struct {
		collection string
		docs       []any
	}{
		{model.CollectionUsers, docs(f.Users)},
		{model.CollectionProperties, docs(f.Properties)},
		{model.CollectionUnits, docs(f.Units)},
		{model.CollectionLeases, docs(f.Leases)},
		{model.CollectionPayments, docs(f.Payments)},
		{model.CollectionServiceReqs, docs(f.ServiceRequests)},
		{model.CollectionApplications, docs(f.Applications)},
	}
	for _, b := range batches {
		if len(b.docs) == 0 {
			continue
		}
		if err := store.Insert(ctx, b.collection, b.docs...); err != nil {
			return fmt.Errorf("seeding %s: %w", b.collection, err)
		}
		log.Printf("seed: %d %s", len(b.docs), b.collection)
	}
	return nil
}

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func docs[T any](xs []T) []any {
	out := make([]any, len(xs))
	for i, x := range xs {
		out[i] = x
	}
	return out
}
