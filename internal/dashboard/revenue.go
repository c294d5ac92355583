package dashboard

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/matthewbaird/sughar/internal/model"
)

// MonthWindow returns the first and last instant of the calendar month in loc.
func MonthWindow(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return start, end
}

func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// RevenueForMonth sums completed payments dated inside the month.
// Payments are expected to be owner-scoped already.
func RevenueForMonth(payments []Payment, year int, month time.Month, loc *time.Location) decimal.Decimal {
	start, end := MonthWindow(year, month, loc)
	total := decimal.Zero
	for _, p := range payments {
		if p.Status != model.PaymentCompleted {
			continue
		}
		if !within(p.Date, start, end) {
			continue
		}
		total = total.Add(p.Amount)
	}
	return total
}

// IncomingRent is the rent expected from occupied units. It is an
// expectation, independent of what has been collected.
func IncomingRent(units []Unit) decimal.Decimal {
	total := decimal.Zero
	for _, u := range units {
		if u.Occupied {
			total = total.Add(u.Rent)
		}
	}
	return total
}

// ServiceCosts sums the cost of service requests completed inside the month.
// A request without a completion date counts on its request date.
func ServiceCosts(requests []ServiceRequest, year int, month time.Month, loc *time.Location) decimal.Decimal {
	start, end := MonthWindow(year, month, loc)
	total := decimal.Zero
	for _, sr := range requests {
		if sr.Status != model.ServiceCompleted {
			continue
		}
		if !within(completionDate(sr), start, end) {
			continue
		}
		total = total.Add(sr.Cost)
	}
	return total
}

func completionDate(sr ServiceRequest) time.Time {
	if sr.Completed != nil && !sr.Completed.IsZero() {
		return *sr.Completed
	}
	return sr.RequestDate
}
