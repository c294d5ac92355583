package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/matthewbaird/sughar/internal/model"
)

// billingPeriod is the fixed month length used to count elapsed rent periods.
// Calendar-month billing and proration are not modeled.
const billingPeriod = 30 * 24 * time.Hour

// IsActive reports whether now falls inside the lease term, inclusive.
func IsActive(l Lease, now time.Time) bool {
	return !now.Before(l.Start) && !now.After(l.End)
}

// MonthsElapsed counts started 30-day periods since start; the period
// containing start counts as the first.
func MonthsElapsed(start, now time.Time) int64 {
	if now.Before(start) {
		return 0
	}
	return int64(now.Sub(start)/billingPeriod) + 1
}

// OverdueForLease compares rent due since the lease started against every
// completed payment on the lease, regardless of payment date. Inactive
// leases are never overdue and the result is never negative.
func OverdueForLease(l Lease, rent decimal.Decimal, payments []Payment, now time.Time) decimal.Decimal {
	if !IsActive(l, now) {
		return decimal.Zero
	}
	expected := rent.Mul(decimal.NewFromInt(MonthsElapsed(l.Start, now)))

	paid := decimal.Zero
	for _, p := range payments {
		if p.LeaseID != l.ID || p.Status != model.PaymentCompleted {
			continue
		}
		paid = paid.Add(p.Amount)
	}

	overdue := expected.Sub(paid)
	if overdue.IsNegative() {
		return decimal.Zero
	}
	return overdue
}

// LeaseRent is the monthly rent billed for a lease: the unit's rent, or the
// rent recorded on the lease when the unit carries none.
func (s *Scope) LeaseRent(l Lease) decimal.Decimal {
	if u, ok := s.UnitByID(l.UnitID); ok && !u.Rent.IsZero() {
		return u.Rent
	}
	return l.Rent
}

// OverdueRent sums OverdueForLease over the scope's active leases.
func OverdueRent(s *Scope, now time.Time) decimal.Decimal {
	byLease := make(map[string][]Payment, len(s.Leases))
	for _, p := range s.Payments {
		byLease[p.LeaseID] = append(byLease[p.LeaseID], p)
	}
	total := decimal.Zero
	for _, l := range s.Leases {
		if !IsActive(l, now) {
			continue
		}
		total = total.Add(OverdueForLease(l, s.LeaseRent(l), byLease[l.ID], now))
	}
	return total
}
