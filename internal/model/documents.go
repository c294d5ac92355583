// Package model defines the documents persisted by the SuGhar document store.
//
// The stored schema evolved without coordination, so several facts are
// represented twice (propertyID/property, unitID/unit, leaseID/lease,
// userID/landlord, status/isOccupied). These types mirror the stored shape
// faithfully; the dashboard package normalizes them at its boundary.
package model

import "time"

// Collection names as used by the document store.
const (
	CollectionUsers        = "users"
	CollectionProperties   = "properties"
	CollectionUnits        = "units"
	CollectionLeases       = "leaseagreements"
	CollectionPayments     = "payments"
	CollectionServiceReqs  = "servicerequests"
	CollectionApplications = "rentalapplications"
)

// User roles.
const (
	RoleLandlord   = "landlord"
	RoleTenant     = "tenant"
	RoleContractor = "contractor"
)

// Unit occupancy status values.
const (
	UnitStatusOccupied = "occupied"
	UnitStatusVacant   = "vacant"
)

// Payment status values. Only completed payments count as collected cash.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
	PaymentRefunded  = "refunded"
)

// Service request status values.
const (
	ServicePending    = "pending"
	ServiceInProgress = "in_progress"
	ServiceCompleted  = "completed"
	ServiceCancelled  = "cancelled"
)

// Rental application status values.
const (
	ApplicationPending   = "pending"
	ApplicationApproved  = "approved"
	ApplicationRejected  = "rejected"
	ApplicationWithdrawn = "withdrawn"
)

// Timestamps are the implicit creation/update times every document carries.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt,omitempty" bson:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// User is a landlord, tenant or contractor account.
type User struct {
	ID    string `json:"_id" bson:"_id"`
	Name  string `json:"name" bson:"name"`
	Email string `json:"email" bson:"email"`
	Role  string `json:"role" bson:"role"`
	Timestamps `bson:",inline"`
}

// Property is owned by a landlord referenced through UserID or, in older
// documents, Landlord.
type Property struct {
	ID       string `json:"_id" bson:"_id"`
	UserID   string `json:"userID,omitempty" bson:"userID,omitempty"`
	Landlord string `json:"landlord,omitempty" bson:"landlord,omitempty"`
	Name     string `json:"name,omitempty" bson:"name,omitempty"`
	Address  string `json:"address,omitempty" bson:"address,omitempty"`
	Timestamps `bson:",inline"`
}

// OwnerID returns the owning user id regardless of which field stores it.
func (p Property) OwnerID() string {
	if p.UserID != "" {
		return p.UserID
	}
	return p.Landlord
}

// DisplayName is the address when known, falling back to the name.
func (p Property) DisplayName() string {
	if p.Address != "" {
		return p.Address
	}
	return p.Name
}

// Unit belongs to a property. Occupancy is stored as Status, IsOccupied, or
// both; nil means the field is absent from the document.
type Unit struct {
	ID          string  `json:"_id" bson:"_id"`
	PropertyID  string  `json:"propertyID,omitempty" bson:"propertyID,omitempty"`
	Property    string  `json:"property,omitempty" bson:"property,omitempty"`
	UnitNumber  string  `json:"unitNumber,omitempty" bson:"unitNumber,omitempty"`
	MonthlyRent Amount  `json:"monthlyRent,omitempty" bson:"monthlyRent,omitempty"`
	Status      *string `json:"status,omitempty" bson:"status,omitempty"`
	IsOccupied  *bool   `json:"isOccupied,omitempty" bson:"isOccupied,omitempty"`
	Timestamps `bson:",inline"`
}

// PropertyRefs returns the candidate property ids in lookup order.
func (u Unit) PropertyRefs() []string { return refs(u.PropertyID, u.Property) }

// LeaseAgreement links a tenant to a unit for [StartDate, EndDate].
type LeaseAgreement struct {
	ID          string    `json:"_id" bson:"_id"`
	UserID      string    `json:"userID,omitempty" bson:"userID,omitempty"`
	UnitID      string    `json:"unitID,omitempty" bson:"unitID,omitempty"`
	Unit        string    `json:"unit,omitempty" bson:"unit,omitempty"`
	StartDate   time.Time `json:"startDate" bson:"startDate"`
	EndDate     time.Time `json:"endDate" bson:"endDate"`
	MonthlyRent Amount    `json:"monthlyRent,omitempty" bson:"monthlyRent,omitempty"`
	Timestamps `bson:",inline"`
}

// UnitRefs returns the candidate unit ids in lookup order.
func (l LeaseAgreement) UnitRefs() []string { return refs(l.UnitID, l.Unit) }

// Payment is money received against a lease. Only completed payments count.
type Payment struct {
	ID          string    `json:"_id" bson:"_id"`
	UserID      string    `json:"userID,omitempty" bson:"userID,omitempty"`
	LeaseID     string    `json:"leaseID,omitempty" bson:"leaseID,omitempty"`
	Lease       string    `json:"lease,omitempty" bson:"lease,omitempty"`
	Amount      Amount    `json:"amount,omitempty" bson:"amount,omitempty"`
	PaymentDate time.Time `json:"paymentDate" bson:"paymentDate"`
	Status      string    `json:"status" bson:"status"`
	Timestamps `bson:",inline"`
}

// LeaseRefs returns the candidate lease ids in lookup order.
func (p Payment) LeaseRefs() []string { return refs(p.LeaseID, p.Lease) }

// ServiceRequest is a maintenance request raised for a unit.
type ServiceRequest struct {
	ID            string     `json:"_id" bson:"_id"`
	UserID        string     `json:"userID,omitempty" bson:"userID,omitempty"`
	UnitID        string     `json:"unitID,omitempty" bson:"unitID,omitempty"`
	Unit          string     `json:"unit,omitempty" bson:"unit,omitempty"`
	Title         string     `json:"title,omitempty" bson:"title,omitempty"`
	Status        string     `json:"status" bson:"status"`
	Priority      string     `json:"priority,omitempty" bson:"priority,omitempty"`
	RequestDate   time.Time  `json:"requestDate" bson:"requestDate"`
	CompletedDate *time.Time `json:"completedDate,omitempty" bson:"completedDate,omitempty"`
	Cost          Amount     `json:"cost,omitempty" bson:"cost,omitempty"`
	Timestamps `bson:",inline"`
}

// UnitRefs returns the candidate unit ids in lookup order.
func (s ServiceRequest) UnitRefs() []string { return refs(s.UnitID, s.Unit) }

// RentalApplication is a prospective tenant's application for a unit.
type RentalApplication struct {
	ID     string `json:"_id" bson:"_id"`
	UserID string `json:"userID,omitempty" bson:"userID,omitempty"`
	UnitID string `json:"unitID,omitempty" bson:"unitID,omitempty"`
	Unit   string `json:"unit,omitempty" bson:"unit,omitempty"`
	Status string `json:"status" bson:"status"`
	Timestamps `bson:",inline"`
}

// UnitRefs returns the candidate unit ids in lookup order.
func (a RentalApplication) UnitRefs() []string { return refs(a.UnitID, a.Unit) }

func refs(ids ...string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}
