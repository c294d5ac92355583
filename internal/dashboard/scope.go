package dashboard

import (
	"context"
	"fmt"
	"log"

	"github.com/matthewbaird/sughar/internal/docstore"
	"github.com/matthewbaird/sughar/internal/model"
)

// Scope is the owner-scoped working set: every document transitively
// reachable from one owner through property → unit.
type Scope struct {
	OwnerID         string
	Properties      []model.Property
	Units           []Unit
	Leases          []Lease
	Payments        []Payment
	ServiceRequests []ServiceRequest
	Applications    []Application

	// Excluded counts records dropped for dangling references or malformed fields.
	Excluded int

	unitByID     map[string]Unit
	propertyByID map[string]model.Property
}

// UnitByID returns the scoped unit with the given id.
func (s *Scope) UnitByID(id string) (Unit, bool) {
	u, ok := s.unitByID[id]
	return u, ok
}

// PropertyByID returns the scoped property with the given id.
func (s *Scope) PropertyByID(id string) (model.Property, bool) {
	p, ok := s.propertyByID[id]
	return p, ok
}

func (s *Scope) exclude(kind, id, reason string) {
	s.Excluded++
	log.Printf("dashboard: excluding %s %s for owner %s: %s", kind, id, s.OwnerID, reason)
}

var (
	ownerFields    = docstore.AnyOf("userID", "landlord")
	propertyFields = docstore.AnyOf("propertyID", "property")
	unitFields     = docstore.AnyOf("unitID", "unit")
	leaseFields    = docstore.AnyOf("leaseID", "lease")
)

// LoadScope builds the Scope for ownerID. An owner without properties gets
// an empty Scope and no further queries are issued. Records whose references
// do not resolve into the scope are excluded and logged; only store
// failures are returned.
func LoadScope(ctx context.Context, store docstore.Store, ownerID string) (*Scope, error) {
	s := &Scope{
		OwnerID:      ownerID,
		unitByID:     make(map[string]Unit),
		propertyByID: make(map[string]model.Property),
	}
	if ownerID == "" {
		return s, nil
	}
	res := NewResolver(store)

	owner, err := res.User(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("resolving owner: %w", err)
	}
	if owner == nil {
		log.Printf("dashboard: owner %s does not resolve to a user, scope is empty", ownerID)
		return s, nil
	}

	if err := store.Find(ctx, model.CollectionProperties, docstore.Where(ownerFields.Eq(ownerID)), &s.Properties); err != nil {
		return nil, fmt.Errorf("loading properties: %w", err)
	}
	if len(s.Properties) == 0 {
		return s, nil
	}
	propertyIDs := make([]string, 0, len(s.Properties))
	ownedProps := make(map[string]bool, len(s.Properties))
	for _, p := range s.Properties {
		propertyIDs = append(propertyIDs, p.ID)
		ownedProps[p.ID] = true
		s.propertyByID[p.ID] = p
	}

	var units []model.Unit
	if err := store.Find(ctx, model.CollectionUnits, docstore.Where(propertyFields.In(propertyIDs)), &units); err != nil {
		return nil, fmt.Errorf("loading units: %w", err)
	}
	ownedUnits := make(map[string]bool, len(units))
	for _, u := range units {
		propID, ok, err := res.pick(ctx, model.CollectionProperties, u.PropertyRefs(), ownedProps)
		if err != nil {
			return nil, fmt.Errorf("resolving property of unit %s: %w", u.ID, err)
		}
		if !ok {
			s.exclude("unit", u.ID, fmt.Sprintf("property reference %v resolves outside scope", u.PropertyRefs()))
			continue
		}
		nu, err := NormalizeUnit(u, propID)
		if err != nil {
			s.exclude("unit", u.ID, err.Error())
			continue
		}
		s.Units = append(s.Units, nu)
		s.unitByID[nu.ID] = nu
		ownedUnits[nu.ID] = true
	}
	if len(s.Units) == 0 {
		return s, nil
	}
	unitIDs := make([]string, 0, len(s.Units))
	for _, u := range s.Units {
		unitIDs = append(unitIDs, u.ID)
	}
	byUnit := docstore.Where(unitFields.In(unitIDs))

	var leases []model.LeaseAgreement
	if err := store.Find(ctx, model.CollectionLeases, byUnit, &leases); err != nil {
		return nil, fmt.Errorf("loading leases: %w", err)
	}
	ownedLeases := make(map[string]bool, len(leases))
	for _, l := range leases {
		unitID, ok, err := res.pick(ctx, model.CollectionUnits, l.UnitRefs(), ownedUnits)
		if err != nil {
			return nil, fmt.Errorf("resolving unit of lease %s: %w", l.ID, err)
		}
		if !ok {
			s.exclude("lease", l.ID, fmt.Sprintf("unit reference %v resolves outside scope", l.UnitRefs()))
			continue
		}
		unit, _ := s.UnitByID(unitID)
		nl, err := normalizeLease(l, unit)
		if err != nil {
			s.exclude("lease", l.ID, err.Error())
			continue
		}
		s.Leases = append(s.Leases, nl)
		ownedLeases[nl.ID] = true
	}

	var requests []model.ServiceRequest
	if err := store.Find(ctx, model.CollectionServiceReqs, byUnit, &requests); err != nil {
		return nil, fmt.Errorf("loading service requests: %w", err)
	}
	for _, sr := range requests {
		unitID, ok, err := res.pick(ctx, model.CollectionUnits, sr.UnitRefs(), ownedUnits)
		if err != nil {
			return nil, fmt.Errorf("resolving unit of service request %s: %w", sr.ID, err)
		}
		if !ok {
			s.exclude("service request", sr.ID, fmt.Sprintf("unit reference %v resolves outside scope", sr.UnitRefs()))
			continue
		}
		nsr, err := normalizeServiceRequest(sr, unitID)
		if err != nil {
			s.exclude("service request", sr.ID, err.Error())
			continue
		}
		s.ServiceRequests = append(s.ServiceRequests, nsr)
	}

	var apps []model.RentalApplication
	if err := store.Find(ctx, model.CollectionApplications, byUnit, &apps); err != nil {
		return nil, fmt.Errorf("loading applications: %w", err)
	}
	for _, a := range apps {
		unitID, ok, err := res.pick(ctx, model.CollectionUnits, a.UnitRefs(), ownedUnits)
		if err != nil {
			return nil, fmt.Errorf("resolving unit of application %s: %w", a.ID, err)
		}
		if !ok {
			s.exclude("application", a.ID, fmt.Sprintf("unit reference %v resolves outside scope", a.UnitRefs()))
			continue
		}
		s.Applications = append(s.Applications, Application{ID: a.ID, UnitID: unitID, Status: a.Status})
	}

	if len(s.Leases) == 0 {
		return s, nil
	}
	leaseIDs := make([]string, 0, len(s.Leases))
	for _, l := range s.Leases {
		leaseIDs = append(leaseIDs, l.ID)
	}
	var payments []model.Payment
	if err := store.Find(ctx, model.CollectionPayments, docstore.Where(leaseFields.In(leaseIDs)), &payments); err != nil {
		return nil, fmt.Errorf("loading payments: %w", err)
	}
	for _, p := range payments {
		leaseID, ok, err := res.pick(ctx, model.CollectionLeases, p.LeaseRefs(), ownedLeases)
		if err != nil {
			return nil, fmt.Errorf("resolving lease of payment %s: %w", p.ID, err)
		}
		if !ok {
			s.exclude("payment", p.ID, fmt.Sprintf("lease reference %v resolves outside scope", p.LeaseRefs()))
			continue
		}
		np, err := normalizePayment(p, leaseID)
		if err != nil {
			s.exclude("payment", p.ID, err.Error())
			continue
		}
		s.Payments = append(s.Payments, np)
	}

	return s, nil
}

// FilterByOwner returns the raw documents of collection that belong to
// ownerID, in the shape the store holds them.
func FilterByOwner(ctx context.Context, store docstore.Store, ownerID, collection string) ([]any, error) {
	scope, err := LoadScope(ctx, store, ownerID)
	if err != nil {
		return nil, err
	}

	var ids []string
	switch collection {
	case model.CollectionProperties:
		out := make([]any, len(scope.Properties))
		for i, p := range scope.Properties {
			out[i] = p
		}
		return out, nil
	case model.CollectionUnits:
		for _, u := range scope.Units {
			ids = append(ids, u.ID)
		}
		return fetchByID[model.Unit](ctx, store, collection, ids)
	case model.CollectionLeases:
		for _, l := range scope.Leases {
			ids = append(ids, l.ID)
		}
		return fetchByID[model.LeaseAgreement](ctx, store, collection, ids)
	case model.CollectionPayments:
		for _, p := range scope.Payments {
			ids = append(ids, p.ID)
		}
		return fetchByID[model.Payment](ctx, store, collection, ids)
	case model.CollectionServiceReqs:
		for _, sr := range scope.ServiceRequests {
			ids = append(ids, sr.ID)
		}
		return fetchByID[model.ServiceRequest](ctx, store, collection, ids)
	case model.CollectionApplications:
		for _, a := range scope.Applications {
			ids = append(ids, a.ID)
		}
		return fetchByID[model.RentalApplication](ctx, store, collection, ids)
	default:
		return nil, fmt.Errorf("collection %q is not owner-scoped", collection)
	}
}

func fetchByID[T any](ctx context.Context, store docstore.Store, collection string, ids []string) ([]any, error) {
	var docs []T
	if err := store.Find(ctx, collection, docstore.Where(docstore.In("_id", ids)), &docs); err != nil {
		return nil, fmt.Errorf("loading %s: %w", collection, err)
	}
	out := make([]any, len(docs))
	for i, d := range docs {
		out[i] = d
	}
	return out, nil
}
