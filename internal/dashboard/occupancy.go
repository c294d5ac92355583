package dashboard

import (
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matthewbaird/sughar/internal/model"
)

// Unit is a stored unit after normalization: one property reference, a
// parsed rent and a single occupancy flag.
type Unit struct {
	ID         string
	PropertyID string
	Number     string
	Rent       decimal.Decimal
	Occupied   bool
}

// Lease is a stored lease agreement with its unit reference resolved.
type Lease struct {
	ID       string
	TenantID string
	UnitID   string
	Start    time.Time
	End      time.Time
	Rent     decimal.Decimal // rent recorded on the lease itself, may be zero
}

// Payment is a stored payment with its lease reference resolved.
type Payment struct {
	ID      string
	LeaseID string
	Amount  decimal.Decimal
	Date    time.Time
	Status  string
}

// ServiceRequest is a stored service request with its unit reference resolved.
type ServiceRequest struct {
	ID          string
	UnitID      string
	Title       string
	Status      string
	Priority    string
	RequestDate time.Time
	Completed   *time.Time
	Cost        decimal.Decimal
}

// Application is a stored rental application with its unit reference resolved.
type Application struct {
	ID     string
	UnitID string
	Status string
}

// IsOccupied classifies a stored unit. A set status wins; otherwise a set
// isOccupied flag (including false) is used; a unit with neither is vacant.
func IsOccupied(u model.Unit) bool {
	if u.Status != nil && *u.Status != "" {
		return *u.Status == model.UnitStatusOccupied
	}
	if u.IsOccupied != nil {
		return *u.IsOccupied
	}
	return false
}

// NormalizeUnit maps a stored unit onto Unit using propertyID as its
// resolved property. It fails when the stored rent cannot be parsed.
func NormalizeUnit(u model.Unit, propertyID string) (Unit, error) {
	rent, err := u.MonthlyRent.Decimal()
	if err != nil {
		return Unit{}, fmt.Errorf("unit %s: %w", u.ID, err)
	}
	return Unit{
		ID:         u.ID,
		PropertyID: propertyID,
		Number:     u.UnitNumber,
		Rent:       rent,
		Occupied:   IsOccupied(u),
	}, nil
}

// normalizeLease maps a stored lease onto its resolved unit. Leases without
// a valid [start, end] interval are rejected. The lease's own rent only
// matters when the unit has none, so a malformed value is rejected only then.
func normalizeLease(l model.LeaseAgreement, unit Unit) (Lease, error) {
	if l.StartDate.IsZero() || l.EndDate.IsZero() || !l.StartDate.Before(l.EndDate) {
		return Lease{}, fmt.Errorf("lease %s: invalid term %s to %s", l.ID,
			l.StartDate.Format(time.DateOnly), l.EndDate.Format(time.DateOnly))
	}
	rent, err := l.MonthlyRent.Decimal()
	if err != nil {
		if unit.Rent.IsZero() {
			return Lease{}, fmt.Errorf("lease %s: %w", l.ID, err)
		}
		log.Printf("dashboard: lease %s: ignoring %v, unit %s rent applies", l.ID, err, unit.ID)
		rent = decimal.Zero
	}
	return Lease{
		ID:       l.ID,
		TenantID: l.UserID,
		UnitID:   unit.ID,
		Start:    l.StartDate,
		End:      l.EndDate,
		Rent:     rent,
	}, nil
}

func normalizePayment(p model.Payment, leaseID string) (Payment, error) {
	amount, err := p.Amount.Decimal()
	if err != nil {
		return Payment{}, fmt.Errorf("payment %s: %w", p.ID, err)
	}
	return Payment{
		ID:      p.ID,
		LeaseID: leaseID,
		Amount:  amount,
		Date:    p.PaymentDate,
		Status:  p.Status,
	}, nil
}

func normalizeServiceRequest(s model.ServiceRequest, unitID string) (ServiceRequest, error) {
	cost, err := s.Cost.Decimal()
	if err != nil {
		return ServiceRequest{}, fmt.Errorf("service request %s: %w", s.ID, err)
	}
	return ServiceRequest{
		ID:          s.ID,
		UnitID:      unitID,
		Title:       s.Title,
		Status:      s.Status,
		Priority:    s.Priority,
		RequestDate: s.RequestDate,
		Completed:   s.CompletedDate,
		Cost:        cost,
	}, nil
}
