// Package econz implements the city budget: per-zone tax income, service
// and maintenance expenses, loan payments, credit rating, and the policy
// multiplier set that scales other subsystems' outputs. See design doc
// Section 4.7.
package econz

import "github.com/talgya/citycore/internal/worldgrid"

// BaseTaxRate is the per-occupant crowns-per-month tax base before zone
// multipliers and the city's tax rate are applied.
const BaseTaxRate = 4.0

// ZoneMultiplier scales tax yield per zone type.
func ZoneMultiplier(z worldgrid.ZoneType) float64 {
	switch {
	case z.IsResidential():
		return 1.0
	case z.IsCommercial():
		return 1.4
	case z == worldgrid.Office:
		return 1.6
	case z == worldgrid.Industrial:
		return 1.2
	default:
		return 0
	}
}

// IncomeBreakdown and ExpenseBreakdown record per-category totals for the
// UI, assembled fresh every monthly tick.
type IncomeBreakdown struct {
	ResidentialTax float64
	CommercialTax  float64
	IndustrialTax  float64
	OfficeTax      float64
}

// Total sums every income category.
func (b IncomeBreakdown) Total() float64 {
	return b.ResidentialTax + b.CommercialTax + b.IndustrialTax + b.OfficeTax
}

type ExpenseBreakdown struct {
	Services        float64
	RoadMaintenance float64
	PolicyCosts     float64
	LoanPayments    float64
}

// Total sums every expense category.
func (e ExpenseBreakdown) Total() float64 {
	return e.Services + e.RoadMaintenance + e.PolicyCosts + e.LoanPayments
}

// ZoneOccupants is the input to TaxIncome: total occupants per zone type,
// summed by the caller from the entity store.
type ZoneOccupants map[worldgrid.ZoneType]uint32

// TaxIncome computes the income breakdown for one monthly tick from
// occupants per zone and the city's current tax rate.
func TaxIncome(occupants ZoneOccupants, taxRate float64) IncomeBreakdown {
	var b IncomeBreakdown
	for zone, count := range occupants {
		income := float64(count) * BaseTaxRate * ZoneMultiplier(zone) * taxRate
		switch {
		case zone.IsResidential():
			b.ResidentialTax += income
		case zone.IsCommercial():
			b.CommercialTax += income
		case zone == worldgrid.Industrial:
			b.IndustrialTax += income
		case zone == worldgrid.Office:
			b.OfficeTax += income
		}
	}
	return b
}

// Loan is a fixed monthly-payment obligation against the treasury.
type Loan struct {
	Principal      int64
	MonthlyPayment int64
	MonthsRemaining int
}

// CreditRating degrades after sustained treasury deficits.
type CreditRating uint8

const (
	CreditExcellent CreditRating = iota
	CreditGood
	CreditFair
	CreditPoor
)

// DeficitDaysForDowngrade is how many consecutive ApplyMonthlyTick calls
// ending with a negative treasury drop the credit rating by one notch.
const DeficitDaysForDowngrade = 14

// Budget is the city's running financial state.
type Budget struct {
	Treasury          int64
	TaxRate           float64
	Loans             []Loan
	Credit            CreditRating
	ConsecutiveDeficit int
	LastIncome        IncomeBreakdown
	LastExpense       ExpenseBreakdown
}

// NewBudget creates a budget with a starting treasury and a default tax
// rate of 10%.
func NewBudget(startingTreasury int64) *Budget {
	return &Budget{Treasury: startingTreasury, TaxRate: 0.10}
}

// ApplyMonthlyTick runs the monthly income/expense cycle: credits income,
// debits services/maintenance/policy costs and loan payments, updates the
// consecutive-deficit counter, and downgrades credit rating if the deficit
// streak crosses the threshold.
func (b *Budget) ApplyMonthlyTick(occupants ZoneOccupants, serviceCost, roadMaintenance, policyCost float64) {
	income := TaxIncome(occupants, b.TaxRate)

	var loanPayments int64
	remaining := b.Loans[:0]
	for _, l := range b.Loans {
		if l.MonthsRemaining <= 0 {
			continue
		}
		loanPayments += l.MonthlyPayment
		l.Principal -= l.MonthlyPayment
		l.MonthsRemaining--
		if l.MonthsRemaining > 0 {
			remaining = append(remaining, l)
		}
	}
	b.Loans = remaining

	expense := ExpenseBreakdown{
		Services:        serviceCost,
		RoadMaintenance: roadMaintenance,
		PolicyCosts:     policyCost,
		LoanPayments:    float64(loanPayments),
	}

	b.Treasury += int64(income.Total() - expense.Total())
	b.LastIncome = income
	b.LastExpense = expense

	if b.Treasury < 0 {
		b.ConsecutiveDeficit++
	} else {
		b.ConsecutiveDeficit = 0
	}
	if b.ConsecutiveDeficit > 0 && b.ConsecutiveDeficit%DeficitDaysForDowngrade == 0 && b.Credit < CreditPoor {
		b.Credit++
	}
}

// TakeLoan adds a new loan to the budget and credits the principal to the
// treasury immediately.
func (b *Budget) TakeLoan(principal int64, termMonths int) {
	if termMonths <= 0 {
		return
	}
	b.Loans = append(b.Loans, Loan{
		Principal:       principal,
		MonthlyPayment:  principal / int64(termMonths),
		MonthsRemaining: termMonths,
	})
	b.Treasury += principal
}
