package econz

import (
	"testing"

	"github.com/talgya/citycore/internal/worldgrid"
)

func TestTaxIncomeScalesByZoneMultiplier(t *testing.T) {
	occ := ZoneOccupants{worldgrid.Office: 10}
	income := TaxIncome(occ, 0.10)
	want := 10 * BaseTaxRate * ZoneMultiplier(worldgrid.Office) * 0.10
	if income.OfficeTax != want {
		t.Fatalf("expected %f, got %f", want, income.OfficeTax)
	}
}

func TestApplyMonthlyTickDeficitTriggersDowngrade(t *testing.T) {
	b := NewBudget(0)
	b.TaxRate = 0
	for i := 0; i < DeficitDaysForDowngrade; i++ {
		b.ApplyMonthlyTick(nil, 100, 0, 0)
	}
	if b.Credit == CreditExcellent {
		t.Fatal("expected credit rating to degrade after sustained deficit")
	}
}

func TestTakeLoanCreditsTreasuryAndSchedulesPayments(t *testing.T) {
	b := NewBudget(1000)
	b.TakeLoan(1200, 12)
	if b.Treasury != 2200 {
		t.Fatalf("expected treasury 2200 after loan, got %d", b.Treasury)
	}
	if len(b.Loans) != 1 || b.Loans[0].MonthlyPayment != 100 {
		t.Fatalf("expected one loan with 100/month payment, got %+v", b.Loans)
	}
}

func TestPolicyToggleAppliesMultiplierImmediately(t *testing.T) {
	p := DefaultPolicies()
	base := p.CarTripMultiplier
	p.Toggle(FieldFreeParkingBan)
	if p.CarTripMultiplier == base {
		t.Fatal("expected toggling free parking ban to change car trip multiplier")
	}
	p.Toggle(FieldFreeParkingBan)
	if p.CarTripMultiplier-base > 1e-9 || base-p.CarTripMultiplier > 1e-9 {
		t.Fatalf("expected toggling twice to return to baseline, got %f vs %f", p.CarTripMultiplier, base)
	}
}
