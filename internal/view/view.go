// Package view renders ledger state for a terminal.
package view

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"moneylite/internal/core"
	"moneylite/internal/ledger"
)

const dateLayout = "2006-01-02 15:04"

type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Income   lipgloss.Style
	Spent    lipgloss.Style
	Muted    lipgloss.Style
	Error    lipgloss.Style
	Busy     lipgloss.Style
	Summary  lipgloss.Style
	Negative lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#87CEEB")),
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#bbbbbb")),
		Income:   lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff00")),
		Spent:    lipgloss.NewStyle().Foreground(lipgloss.Color("#ff8700")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#828282")),
		Error:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff0000")),
		Busy:     lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#d29b1d")),
		Summary:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 2),
		Negative: lipgloss.NewStyle().Foreground(lipgloss.Color("#ff0000")),
	}
}

type Renderer struct {
	Styles Styles
}

func New() *Renderer {
	return &Renderer{Styles: DefaultStyles()}
}

// Render draws the whole screen for s.
func (r *Renderer) Render(s ledger.State) string {
	parts := []string{r.summaryView(s.Summary)}
	if !s.Loaded {
		parts = append(parts, r.Styles.Muted.Render("Not loaded yet. Type refresh to try again."))
	}
	parts = append(parts,
		r.expensesView(s.Expenses),
		r.incomesView(s.Incomes),
		r.fixedView(s.FixedExpenses),
	)
	if busy := r.busyView(s); busy != "" {
		parts = append(parts, busy)
	}
	if s.Err != "" {
		parts = append(parts, r.Styles.Error.Render("Error: "+s.Err))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (r *Renderer) amount(v int64) string {
	if v < 0 {
		return r.Styles.Negative.Render(core.FormatYen(v))
	}
	return core.FormatYen(v)
}

func (r *Renderer) summaryView(sum *core.SummarySnapshot) string {
	if sum == nil {
		return r.Styles.Summary.Render(r.Styles.Title.Render("Summary") + "\n" + r.Styles.Muted.Render("no data"))
	}
	rows := [][2]string{
		{"Balance at payday", r.amount(sum.BalanceAtPayday)},
		{"Salary", r.Styles.Income.Render(core.FormatYen(sum.SalaryIncomes))},
		{"Other income", r.Styles.Income.Render(core.FormatYen(sum.AdhocIncomes))},
		{"Spent this cycle", r.Styles.Spent.Render(core.FormatYen(sum.CycleExpenses))},
		{"Fixed expenses", r.Styles.Spent.Render(core.FormatYen(sum.TotalFixedExpenses))},
		{"Current balance", r.amount(sum.CurrentBalance)},
		{"Next payday", r.amount(sum.ProjectedNextBalance)},
	}
	label := lipgloss.NewStyle().Width(20)
	var b strings.Builder
	b.WriteString(r.Styles.Title.Render("Summary"))
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(label.Render(row[0]))
		b.WriteString(row[1])
	}
	return r.Styles.Summary.Render(b.String())
}

// table renders rows under a titled, bordered table. Column widths are
// measured in terminal cells so full-width text lines up.
func (r *Renderer) table(title string, header []string, rows [][]string) string {
	heading := r.Styles.Title.Render(fmt.Sprintf("%s (%d)", title, len(rows)))
	if len(rows) == 0 {
		return heading + "\n" + r.Styles.Muted.Render("  none")
	}
	cell := lipgloss.NewStyle().Padding(0, 1)
	last := len(header) - 1
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(r.Styles.Muted).
		Headers(header...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.Styles.Header.Padding(0, 1)
			}
			if col == last {
				return cell.Align(lipgloss.Right)
			}
			return cell
		})
	return heading + "\n" + t.String()
}

func (r *Renderer) expensesView(items []core.ExpenseRecord) string {
	rows := make([][]string, 0, len(items))
	for _, e := range items {
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			e.CreatedAt.Local().Format(dateLayout),
			e.Item,
			e.Category,
			core.FormatYen(e.Price),
		})
	}
	return r.table("Expenses", []string{"ID", "Date", "Item", "Category", "Price"}, rows)
}

func (r *Renderer) incomesView(items []core.IncomeRecord) string {
	rows := make([][]string, 0, len(items))
	for _, in := range items {
		rows = append(rows, []string{
			strconv.FormatInt(in.ID, 10),
			in.CreatedAt.Local().Format(dateLayout),
			in.Source,
			core.FormatYen(in.Amount),
		})
	}
	return r.table("Incomes", []string{"ID", "Date", "Source", "Amount"}, rows)
}

func (r *Renderer) fixedView(items []core.FixedExpenseRecord) string {
	rows := make([][]string, 0, len(items))
	for _, f := range items {
		rows = append(rows, []string{strconv.FormatInt(f.ID, 10), f.Name, core.FormatYen(f.Amount)})
	}
	return r.table("Fixed expenses", []string{"ID", "Name", "Amount"}, rows)
}

func (r *Renderer) busyView(s ledger.State) string {
	var busy []string
	for _, f := range []ledger.Form{ledger.FormExpense, ledger.FormIncome, ledger.FormFixedExpense, ledger.FormBalance, ledger.FormDelete} {
		if s.Busy(f) {
			busy = append(busy, f.String())
		}
	}
	if len(busy) == 0 {
		return ""
	}
	return r.Styles.Busy.Render("Submitting: " + strings.Join(busy, ", "))
}
