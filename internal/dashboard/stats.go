// Package dashboard computes the landlord dashboard from the document store:
// occupancy, revenue, overdue rent and the short "recent" slices shown next
// to each total. Every call is a fresh read-only scan; nothing is cached.
package dashboard

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/matthewbaird/sughar/internal/docstore"
	"github.com/matthewbaird/sughar/internal/model"
)

const (
	detailLimit     = 5
	endingSoonDays  = 30
	occupancyPlaces = 2
)

// Money is a currency amount that serializes as a JSON number.
type Money struct {
	decimal.Decimal
}

// MarshalJSON writes the amount rounded to cents as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Round(2).String()), nil
}

// StatsPayload is the body of GET /dashboard/stats.
type StatsPayload struct {
	Properties      PropertyStats       `json:"properties"`
	Units           UnitStats           `json:"units"`
	ServiceRequests ServiceRequestStats `json:"serviceRequests"`
	Applications    ApplicationStats    `json:"applications"`
	Leases          LeaseStats          `json:"leases"`
}

// PropertyStats counts the owner's properties.
type PropertyStats struct {
	Total     int      `json:"total"`
	Addresses []string `json:"addresses"`
}

// UnitStats summarizes occupancy and expected rent across the owner's units.
type UnitStats struct {
	Total         int          `json:"total"`
	Occupied      int          `json:"occupied"`
	Vacant        int          `json:"vacant"`
	OccupancyRate float64      `json:"occupancyRate"` // percent
	TotalRevenue  Money        `json:"totalRevenue"`
	Details       []UnitDetail `json:"details"`
}

// UnitDetail is one row of UnitStats.Details.
type UnitDetail struct {
	ID          string `json:"id"`
	UnitNumber  string `json:"unitNumber"`
	Property    string `json:"property"`
	MonthlyRent Money  `json:"monthlyRent"`
	IsOccupied  bool   `json:"isOccupied"`
}

// ServiceRequestStats counts service requests by state.
type ServiceRequestStats struct {
	Total          int                    `json:"total"`
	Active         int                    `json:"active"`
	Completed      int                    `json:"completed"`
	CompletedToday int                    `json:"completedToday"`
	Recent         []ServiceRequestDetail `json:"recent"`
}

// ServiceRequestDetail is one row of ServiceRequestStats.Recent.
type ServiceRequestDetail struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	UnitNumber  string    `json:"unitNumber"`
	RequestDate time.Time `json:"requestDate"`
}

// ApplicationStats counts rental applications by status.
type ApplicationStats struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

// LeaseStats counts leases and those ending soon or today.
type LeaseStats struct {
	Total              int           `json:"total"`
	EndingSoon         int           `json:"endingSoon"`
	EndingToday        int           `json:"endingToday"`
	EndingSoonDetails  []LeaseDetail `json:"endingSoonDetails"`
	EndingTodayDetails []LeaseDetail `json:"endingTodayDetails"`
}

// LeaseDetail is one row of the ending-lease slices.
type LeaseDetail struct {
	ID          string    `json:"id"`
	TenantName  string    `json:"tenantName"`
	UnitNumber  string    `json:"unitNumber"`
	Property    string    `json:"property"`
	EndDate     time.Time `json:"endDate"`
	MonthlyRent Money     `json:"monthlyRent"`
}

// FinancialPayload is the body of GET /dashboard/financial-stats.
type FinancialPayload struct {
	RevenueThisMonth Money `json:"revenueThisMonth"`
	IncomingRent     Money `json:"incomingRent"`
	OverdueRent      Money `json:"overdueRent"`
	ServiceCosts     Money `json:"serviceCosts"`
	UtilitiesCosts   Money `json:"utilitiesCosts"`
}

// Service assembles dashboard payloads for an owner.
type Service struct {
	store docstore.Store
	loc   *time.Location
	now   func() time.Time
}

// NewService creates a Service reading from store. Calendar boundaries
// (months, "today") are taken in loc; nil means time.Local.
func NewService(store docstore.Store, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{store: store, loc: loc, now: time.Now}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// BuildFinancialStats computes revenue, expected rent and arrears for ownerID.
func (s *Service) BuildFinancialStats(ctx context.Context, ownerID string) (FinancialPayload, error) {
	scope, err := LoadScope(ctx, s.store, ownerID)
	if err != nil {
		return FinancialPayload{}, err
	}
	now := s.now().In(s.loc)
	year, month, _ := now.Date()

	return FinancialPayload{
		RevenueThisMonth: Money{RevenueForMonth(scope.Payments, year, month, s.loc)},
		IncomingRent:     Money{IncomingRent(scope.Units)},
		OverdueRent:      Money{OverdueRent(scope, now)},
		ServiceCosts:     Money{ServiceCosts(scope.ServiceRequests, year, month, s.loc)},
		// No utility bills are recorded anywhere in the data model.
		UtilitiesCosts: Money{decimal.Zero},
	}, nil
}

// BuildDashboardStats computes counts and detail slices for ownerID.
func (s *Service) BuildDashboardStats(ctx context.Context, ownerID string) (StatsPayload, error) {
	scope, err := LoadScope(ctx, s.store, ownerID)
	if err != nil {
		return StatsPayload{}, err
	}
	now := s.now().In(s.loc)

	leases, err := s.leaseStats(ctx, scope, now)
	if err != nil {
		return StatsPayload{}, err
	}
	return StatsPayload{
		Properties:      propertyStats(scope),
		Units:           unitStats(scope),
		ServiceRequests: serviceRequestStats(scope, now),
		Applications:    applicationStats(scope),
		Leases:          leases,
	}, nil
}

func propertyStats(scope *Scope) PropertyStats {
	ps := PropertyStats{Total: len(scope.Properties), Addresses: []string{}}
	for _, p := range scope.Properties {
		ps.Addresses = append(ps.Addresses, p.DisplayName())
	}
	return ps
}

func unitStats(scope *Scope) UnitStats {
	us := UnitStats{Total: len(scope.Units), Details: []UnitDetail{}}
	for _, u := range scope.Units {
		if u.Occupied {
			us.Occupied++
		}
	}
	us.Vacant = us.Total - us.Occupied
	if us.Total > 0 {
		rate := decimal.NewFromInt(int64(us.Occupied)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(us.Total))).
			Round(occupancyPlaces)
		us.OccupancyRate = rate.InexactFloat64()
	}
	us.TotalRevenue = Money{IncomingRent(scope.Units)}

	units := append([]Unit(nil), scope.Units...)
	sort.SliceStable(units, func(i, j int) bool { return naturalLess(units[i].Number, units[j].Number) })
	for _, u := range units[:min(len(units), detailLimit)] {
		us.Details = append(us.Details, UnitDetail{
			ID:          u.ID,
			UnitNumber:  u.Number,
			Property:    propertyName(scope, u.PropertyID),
			MonthlyRent: Money{u.Rent},
			IsOccupied:  u.Occupied,
		})
	}
	return us
}

func serviceRequestStats(scope *Scope, now time.Time) ServiceRequestStats {
	st := ServiceRequestStats{Total: len(scope.ServiceRequests), Recent: []ServiceRequestDetail{}}
	for _, sr := range scope.ServiceRequests {
		switch sr.Status {
		case model.ServicePending, model.ServiceInProgress:
			st.Active++
		case model.ServiceCompleted:
			st.Completed++
			if sameDay(completionDate(sr), now) {
				st.CompletedToday++
			}
		}
	}

	recent := append([]ServiceRequest(nil), scope.ServiceRequests...)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].RequestDate.After(recent[j].RequestDate) })
	for _, sr := range recent[:min(len(recent), detailLimit)] {
		unit, _ := scope.UnitByID(sr.UnitID)
		st.Recent = append(st.Recent, ServiceRequestDetail{
			ID:          sr.ID,
			Title:       sr.Title,
			Status:      sr.Status,
			Priority:    sr.Priority,
			UnitNumber:  unit.Number,
			RequestDate: sr.RequestDate,
		})
	}
	return st
}

func applicationStats(scope *Scope) ApplicationStats {
	as := ApplicationStats{Total: len(scope.Applications)}
	for _, a := range scope.Applications {
		switch a.Status {
		case model.ApplicationPending:
			as.Pending++
		case model.ApplicationApproved:
			as.Approved++
		case model.ApplicationRejected:
			as.Rejected++
		}
	}
	return as
}

// leaseStats counts leases ending within the next 30 days (today included)
// and those ending today. Tenant names are resolved for the detail rows only.
func (s *Service) leaseStats(ctx context.Context, scope *Scope, now time.Time) (LeaseStats, error) {
	ls := LeaseStats{
		Total:              len(scope.Leases),
		EndingSoonDetails:  []LeaseDetail{},
		EndingTodayDetails: []LeaseDetail{},
	}
	y, m, d := now.Date()
	todayStart := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	horizon := todayStart.AddDate(0, 0, endingSoonDays+1).Add(-time.Nanosecond)

	var soon, today []Lease
	for _, l := range scope.Leases {
		if !within(l.End, todayStart, horizon) {
			continue
		}
		soon = append(soon, l)
		if sameDay(l.End, now) {
			today = append(today, l)
		}
	}
	ls.EndingSoon = len(soon)
	ls.EndingToday = len(today)

	byEnd := func(ls []Lease) {
		sort.SliceStable(ls, func(i, j int) bool { return ls[i].End.Before(ls[j].End) })
	}
	byEnd(soon)
	byEnd(today)

	res := NewResolver(s.store)
	for _, group := range []struct {
		leases []Lease
		out    *[]LeaseDetail
	}{{soon, &ls.EndingSoonDetails}, {today, &ls.EndingTodayDetails}} {
		for _, l := range group.leases[:min(len(group.leases), detailLimit)] {
			detail, err := leaseDetail(ctx, res, scope, l)
			if err != nil {
				return LeaseStats{}, err
			}
			*group.out = append(*group.out, detail)
		}
	}
	return ls, nil
}

func leaseDetail(ctx context.Context, res *Resolver, scope *Scope, l Lease) (LeaseDetail, error) {
	unit, _ := scope.UnitByID(l.UnitID)
	detail := LeaseDetail{
		ID:          l.ID,
		UnitNumber:  unit.Number,
		Property:    propertyName(scope, unit.PropertyID),
		EndDate:     l.End,
		MonthlyRent: Money{scope.LeaseRent(l)},
	}
	tenant, err := res.User(ctx, l.TenantID)
	if err != nil {
		return LeaseDetail{}, err
	}
	if tenant == nil {
		log.Printf("dashboard: tenant %q of lease %s does not resolve", l.TenantID, l.ID)
	} else {
		detail.TenantName = tenant.Name
	}
	return detail, nil
}

func propertyName(scope *Scope, id string) string {
	p, ok := scope.PropertyByID(id)
	if !ok {
		return ""
	}
	return p.DisplayName()
}

// naturalLess orders unit numbers with embedded digit runs compared by
// value, so "9" < "10" and "A2" < "A10".
func naturalLess(a, b string) bool {
	for a != "" && b != "" {
		da, db := isDigit(a[0]), isDigit(b[0])
		switch {
		case da && db:
			na, ra := digitRun(a)
			nb, rb := digitRun(b)
			ta, tb := strings.TrimLeft(na, "0"), strings.TrimLeft(nb, "0")
			if len(ta) != len(tb) {
				return len(ta) < len(tb)
			}
			if ta != tb {
				return ta < tb
			}
			a, b = ra, rb
		case a[0] != b[0]:
			return a[0] < b[0]
		default:
			a, b = a[1:], b[1:]
		}
	}
	return len(a) < len(b)
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func digitRun(s string) (run, rest string) {
	i := 0
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.In(b.Location()).Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
