package seed

import (
	"time"

	"github.com/matthewbaird/sughar/internal/model"
)

// DemoOwner is the landlord who owns everything in the Demo fixture.
const DemoOwner = "demo-landlord"

// Demo returns a small portfolio dated relative to now. It deliberately mixes
// the current and legacy reference fields so every lookup path is exercised.
func Demo(now time.Time) *Fixture {
	day := 24 * time.Hour
	at := func(days int) time.Time { return now.Add(time.Duration(days) * day) }
	str := func(s string) *string { return &s }
	yes := func(b bool) *bool { return &b }
	done := now.Add(-2 * time.Hour)

	return &Fixture{
		Users: []model.User{
			{ID: DemoOwner, Name: "Sita Sharma", Email: "sita@example.com", Role: model.RoleLandlord},
			{ID: "demo-tenant-1", Name: "Bikash Thapa", Email: "bikash@example.com", Role: model.RoleTenant},
			{ID: "demo-tenant-2", Name: "Anita Gurung", Email: "anita@example.com", Role: model.RoleTenant},
		},
		Properties: []model.Property{
			{ID: "demo-lakeside", UserID: DemoOwner, Name: "Lakeside Apartments", Address: "12 Lakeside Rd, Pokhara"},
			{ID: "demo-thamel", Landlord: DemoOwner, Name: "Thamel House"},
		},
		Units: []model.Unit{
			{ID: "demo-101", PropertyID: "demo-lakeside", UnitNumber: "101", MonthlyRent: "25000", Status: str(model.UnitStatusOccupied)},
			{ID: "demo-102", PropertyID: "demo-lakeside", UnitNumber: "102", MonthlyRent: "22000", Status: str(model.UnitStatusVacant), IsOccupied: yes(true)},
			{ID: "demo-201", Property: "demo-thamel", UnitNumber: "201", MonthlyRent: "18000", IsOccupied: yes(true)},
			{ID: "demo-202", Property: "demo-thamel", UnitNumber: "202", MonthlyRent: "15000.50"},
		},
		Leases: []model.LeaseAgreement{
			{ID: "demo-lease-101", UserID: "demo-tenant-1", UnitID: "demo-101", StartDate: at(-95), EndDate: at(20), MonthlyRent: "25000"},
			{ID: "demo-lease-201", UserID: "demo-tenant-2", Unit: "demo-201", StartDate: at(-20), EndDate: at(345), MonthlyRent: "18000"},
		},
		Payments: []model.Payment{
			{ID: "demo-pay-1", UserID: "demo-tenant-1", LeaseID: "demo-lease-101", Amount: "25000", PaymentDate: now, Status: model.PaymentCompleted},
			{ID: "demo-pay-2", UserID: "demo-tenant-2", Lease: "demo-lease-201", Amount: "18000", PaymentDate: now, Status: model.PaymentCompleted},
			{ID: "demo-pay-3", UserID: "demo-tenant-1", LeaseID: "demo-lease-101", Amount: "25000", PaymentDate: now, Status: model.PaymentFailed},
		},
		ServiceRequests: []model.ServiceRequest{
			{ID: "demo-sr-1", UserID: "demo-tenant-1", UnitID: "demo-101", Title: "Leaking kitchen tap", Status: model.ServicePending, Priority: "high", RequestDate: at(-1)},
			{ID: "demo-sr-2", UserID: "demo-tenant-2", Unit: "demo-201", Title: "Replace water heater", Status: model.ServiceCompleted, Priority: "medium", RequestDate: at(-6), CompletedDate: &done, Cost: "4500"},
		},
		Applications: []model.RentalApplication{
			{ID: "demo-app-1", UnitID: "demo-102", Status: model.ApplicationPending},
			{ID: "demo-app-2", Unit: "demo-202", Status: model.ApplicationApproved},
		},
	}
}
