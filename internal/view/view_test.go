package view

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"moneylite/internal/core"
	"moneylite/internal/ledger"
)

func TestRenderEmptyState(t *testing.T) {
	out := New().Render(ledger.State{})
	assert.Contains(t, out, "no data")
	assert.Contains(t, out, "Not loaded yet")
	assert.Contains(t, out, "Expenses (0)")
	assert.NotContains(t, out, "Error:")
}

func TestRenderLoadedState(t *testing.T) {
	s := ledger.ApplySnapshot(ledger.State{}, ledger.Snapshot{
		Expenses: []core.ExpenseRecord{{
			ID: 1, Item: "パン", Category: "food", Price: 300,
			CreatedAt: time.Date(2025, 4, 25, 3, 0, 0, 0, time.UTC),
		}},
		Incomes:       []core.IncomeRecord{{ID: 2, Source: "給料", Amount: 250000}},
		FixedExpenses: []core.FixedExpenseRecord{{ID: 3, Name: "家賃", Amount: 80000}},
		Summary: core.SummarySnapshot{
			BalanceAtPayday: 1000, SalaryIncomes: 250000, CycleExpenses: 300,
			TotalFixedExpenses: 80000, CurrentBalance: 250700, ProjectedNextBalance: 170700,
		},
	})

	out := New().Render(s)
	for _, want := range []string{
		"300 円", "パン", "food", "給料", "250000 円", "家賃", "80000 円",
		"250700 円", "170700 円", "1000 円",
		"Expenses (1)", "Incomes (1)", "Fixed expenses (1)",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "Not loaded yet")
	assert.Equal(t, 7, strings.Count(sectionBefore(out, "Expenses ("), "円"), "summary shows seven figures")
}

func TestRenderTableAlignsFullWidthText(t *testing.T) {
	out := New().expensesView([]core.ExpenseRecord{
		{ID: 1, Item: "コンビニでパン", Category: "食費", Price: 300},
		{ID: 12, Item: "bus", Category: "transport", Price: 2500},
	})

	lines := strings.Split(out, "\n")
	assert.Equal(t, "Expenses (2)", lines[0])
	rows := lines[1:]
	assert.Len(t, rows, 6, "top border, header, separator, two rows, bottom border")
	for _, l := range rows {
		assert.Equal(t, lipgloss.Width(rows[0]), lipgloss.Width(l), "line %q", l)
	}
	assert.Contains(t, out, "Category")
	assert.Contains(t, out, "コンビニでパン")
}

func TestRenderErrorAndBusy(t *testing.T) {
	s := ledger.BeginSubmit(ledger.State{}, ledger.FormBalance)
	s = ledger.Fail(s, "server returned 500: internal error")

	out := New().Render(s)
	assert.Contains(t, out, "Submitting: balance")
	assert.Contains(t, out, "Error: server returned 500: internal error")
}

func sectionBefore(s, marker string) string {
	if i := strings.Index(s, marker); i >= 0 {
		return s[:i]
	}
	return s
}
