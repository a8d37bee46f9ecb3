package plan

import (
	"errors"
	"testing"
	"time"
)

func TestLookup(t *testing.T) {
	p, err := Lookup(" PRO ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.MonthlyPrice.String() != "97" {
		t.Fatalf("unexpected price %s", p.MonthlyPrice)
	}
	if p.AnnualPrice().StringFixed(2) != "970.00" {
		t.Fatalf("unexpected annual price %s", p.AnnualPrice().StringFixed(2))
	}

	if _, err := Lookup("enterprise"); !errors.Is(err, ErrUnknownPlan) {
		t.Fatalf("expected ErrUnknownPlan got %v", err)
	}
}

func TestCheck(t *testing.T) {
	free, _ := Lookup(CodeFree)
	agency, _ := Lookup(CodeAgency)

	tests := []struct {
		name     string
		plan     Plan
		resource Resource
		used     int
		blocked  bool
	}{
		{"abaixo do limite", free, ResourceClients, 9, false},
		{"no limite", free, ResourceClients, 10, true},
		{"acima do limite", free, ResourceDiagnoses, 7, true},
		{"ilimitado", agency, ResourceClients, 100000, false},
		{"agência diagnósticos", agency, ResourceDiagnoses, 300, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.plan.Check(tc.resource, tc.used)
			if tc.blocked != errors.Is(err, ErrLimitReached) {
				t.Fatalf("expected blocked=%v got %v", tc.blocked, err)
			}
		})
	}
}

func TestRemaining(t *testing.T) {
	free, _ := Lookup(CodeFree)
	got := free.Remaining(Usage{Clients: 4, Calculations: 25, Diagnoses: 1})
	if got[ResourceClients] != 6 || got[ResourceCalculations] != 0 || got[ResourceDiagnoses] != 2 {
		t.Fatalf("unexpected remaining %v", got)
	}

	agency, _ := Lookup(CodeAgency)
	if agency.Remaining(Usage{})[ResourceClients] != -1 {
		t.Fatal("expected unlimited clients")
	}
}

func TestPeriodStart(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	got := PeriodStart(time.Date(2026, 3, 31, 22, 30, 0, 0, loc))
	want := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %s got %s", want, got)
	}
}
