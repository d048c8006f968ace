package ledger

import "moneylite/internal/core"

// Form identifies one submit control. Each form has its own Idle or
// Submitting status.
type Form int

const (
	FormExpense Form = iota
	FormIncome
	FormFixedExpense
	FormBalance
	FormDelete
	numForms
)

func (f Form) String() string {
	switch f {
	case FormExpense:
		return "expense"
	case FormIncome:
		return "income"
	case FormFixedExpense:
		return "fixed_expense"
	case FormBalance:
		return "balance"
	case FormDelete:
		return "delete"
	}
	return "unknown"
}

// Inputs are the draft values of each form. A draft survives a failed
// submission and is cleared by a successful one.
type Inputs struct {
	ExpenseText string
	IncomeText  string
	FixedName   string
	FixedAmount string
	Balance     string
}

// State is an immutable snapshot of everything the view renders. Reducers
// return new values and never modify the slices they were given.
type State struct {
	Expenses      []core.ExpenseRecord
	Incomes       []core.IncomeRecord
	FixedExpenses []core.FixedExpenseRecord
	// Summary is nil until the first successful load.
	Summary    *core.SummarySnapshot
	Inputs     Inputs
	Submitting [numForms]bool
	// Err is the single user-visible error slot; empty means no error.
	Err    string
	Loaded bool
}

// Busy reports whether form is Submitting.
func (s State) Busy(f Form) bool {
	return s.Submitting[f]
}

// Snapshot is the combined result of the four loads.
type Snapshot struct {
	Expenses      []core.ExpenseRecord
	Incomes       []core.IncomeRecord
	FixedExpenses []core.FixedExpenseRecord
	Summary       core.SummarySnapshot
}

// ClearError empties the error slot.
func ClearError(s State) State {
	s.Err = ""
	return s
}

// Fail stores msg in the error slot, replacing any previous message.
func Fail(s State, msg string) State {
	s.Err = msg
	return s
}

// BeginSubmit marks f Submitting and clears the error slot.
func BeginSubmit(s State, f Form) State {
	s.Submitting[f] = true
	s.Err = ""
	return s
}

// EndSubmit returns f to Idle.
func EndSubmit(s State, f Form) State {
	s.Submitting[f] = false
	return s
}

// ApplySnapshot replaces all four data slots at once.
func ApplySnapshot(s State, snap Snapshot) State {
	summary := snap.Summary
	s.Expenses = snap.Expenses
	s.Incomes = snap.Incomes
	s.FixedExpenses = snap.FixedExpenses
	s.Summary = &summary
	s.Loaded = true
	return s
}

// SetDraft stores the draft of the inputs a form owns.
func SetDraft(s State, f Form, values ...string) State {
	switch f {
	case FormExpense:
		s.Inputs.ExpenseText = valueAt(values, 0)
	case FormIncome:
		s.Inputs.IncomeText = valueAt(values, 0)
	case FormFixedExpense:
		s.Inputs.FixedName = valueAt(values, 0)
		s.Inputs.FixedAmount = valueAt(values, 1)
	case FormBalance:
		s.Inputs.Balance = valueAt(values, 0)
	}
	return s
}

// ClearDraft empties the inputs of f.
func ClearDraft(s State, f Form) State {
	return SetDraft(s, f)
}

func valueAt(values []string, i int) string {
	if i < len(values) {
		return values[i]
	}
	return ""
}
