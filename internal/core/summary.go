package core

import "strings"

// SummarySnapshot holds the server-computed figures. Clients display it as
// received and never recompute it.
type SummarySnapshot struct {
	BalanceAtPayday      int64 `json:"balance_at_payday"`
	AdhocIncomes         int64 `json:"adhoc_incomes"`
	SalaryIncomes        int64 `json:"salary_incomes"`
	CycleExpenses        int64 `json:"cycle_expenses"`
	TotalFixedExpenses   int64 `json:"total_fixed_expenses"`
	CurrentBalance       int64 `json:"current_balance"`
	ProjectedNextBalance int64 `json:"projected_next_balance"`
}

var salaryKeywords = []string{"給料", "給与", "月給", "salary"}

// IsSalary reports whether an income source names a salary payment.
func IsSalary(source string) bool {
	s := strings.ToLower(source)
	for _, kw := range salaryKeywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// ComputeSummary derives the snapshot for the cycle that started at
// payday.SetAt. Fixed expenses always count in full.
func ComputeSummary(payday Payday, expenses []ExpenseRecord, incomes []IncomeRecord, fixed []FixedExpenseRecord) SummarySnapshot {
	s := SummarySnapshot{BalanceAtPayday: payday.Balance}
	for _, e := range expenses {
		if payday.IsSet() && e.CreatedAt.Before(payday.SetAt) {
			continue
		}
		s.CycleExpenses += e.Price
	}
	for _, i := range incomes {
		if payday.IsSet() && i.CreatedAt.Before(payday.SetAt) {
			continue
		}
		if IsSalary(i.Source) {
			s.SalaryIncomes += i.Amount
		} else {
			s.AdhocIncomes += i.Amount
		}
	}
	for _, f := range fixed {
		s.TotalFixedExpenses += f.Amount
	}
	s.CurrentBalance = s.BalanceAtPayday + s.SalaryIncomes + s.AdhocIncomes - s.CycleExpenses
	s.ProjectedNextBalance = s.CurrentBalance - s.TotalFixedExpenses
	return s
}
