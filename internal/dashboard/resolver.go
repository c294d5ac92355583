package dashboard

import (
	"context"

	"github.com/matthewbaird/sughar/internal/docstore"
	"github.com/matthewbaird/sughar/internal/model"
)

// Resolver follows stored references to the documents they name.
// A nil result with a nil error means the reference is absent or dangling;
// only store failures are returned as errors.
type Resolver struct {
	store docstore.Store
}

// NewResolver creates a Resolver reading from store.
func NewResolver(store docstore.Store) *Resolver {
	return &Resolver{store: store}
}

// Unit resolves the first of refs that names an existing unit.
func (r *Resolver) Unit(ctx context.Context, refs ...string) (*model.Unit, error) {
	return resolveFirst[model.Unit](ctx, r.store, model.CollectionUnits, refs)
}

// Property resolves the first of refs that names an existing property.
func (r *Resolver) Property(ctx context.Context, refs ...string) (*model.Property, error) {
	return resolveFirst[model.Property](ctx, r.store, model.CollectionProperties, refs)
}

// Lease resolves the first of refs that names an existing lease agreement.
func (r *Resolver) Lease(ctx context.Context, refs ...string) (*model.LeaseAgreement, error) {
	return resolveFirst[model.LeaseAgreement](ctx, r.store, model.CollectionLeases, refs)
}

// User resolves the first of refs that names an existing user.
func (r *Resolver) User(ctx context.Context, refs ...string) (*model.User, error) {
	return resolveFirst[model.User](ctx, r.store, model.CollectionUsers, refs)
}

// OwnerOfUnit walks unit → property → owner and returns nil at the first
// broken link.
func (r *Resolver) OwnerOfUnit(ctx context.Context, unit *model.Unit) (*model.User, error) {
	if unit == nil {
		return nil, nil
	}
	prop, err := r.Property(ctx, unit.PropertyRefs()...)
	if err != nil || prop == nil {
		return nil, err
	}
	return r.User(ctx, prop.UserID, prop.Landlord)
}

// pick returns the reference that refs resolves to, trying each in order.
// owned reports whether that reference is in the owned set. A reference
// that is neither owned nor resolvable is skipped as dangling; one that
// resolves outside the owned set ends the search.
func (r *Resolver) pick(ctx context.Context, collection string, refs []string, owned map[string]bool) (id string, isOwned bool, err error) {
	for _, ref := range refs {
		if owned[ref] {
			return ref, true, nil
		}
		var head struct {
			ID string `json:"_id" bson:"_id"`
		}
		err := r.store.Get(ctx, collection, ref, &head)
		if docstore.IsNotFound(err) {
			continue
		}
		if err != nil {
			return "", false, err
		}
		return ref, false, nil
	}
	return "", false, nil
}

func resolveFirst[T any](ctx context.Context, store docstore.Store, collection string, refs []string) (*T, error) {
	for _, id := range refs {
		if id == "" {
			continue
		}
		var doc T
		err := store.Get(ctx, collection, id, &doc)
		if docstore.IsNotFound(err) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &doc, nil
	}
	return nil, nil
}
