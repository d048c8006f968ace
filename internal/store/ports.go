// Package store declares the persistence ports the ledger service depends
// on. Implementations live in store/memory and storage.
package store

import (
	"context"

	"moneylite/internal/core"
)

type (
	ExpenseStore interface {
		CreateExpense(ctx context.Context, e core.NewExpense) (core.ExpenseRecord, error)
		// ListExpenses returns every expense, newest first.
		ListExpenses(ctx context.Context) ([]core.ExpenseRecord, error)
		// DeleteExpense returns core.ErrNotFound when no row matches.
		DeleteExpense(ctx context.Context, id int64) error
	}

	IncomeStore interface {
		CreateIncome(ctx context.Context, i core.NewIncome) (core.IncomeRecord, error)
		ListIncomes(ctx context.Context) ([]core.IncomeRecord, error)
		DeleteIncome(ctx context.Context, id int64) error
	}

	FixedExpenseStore interface {
		CreateFixedExpense(ctx context.Context, f core.NewFixedExpense) (core.FixedExpenseRecord, error)
		ListFixedExpenses(ctx context.Context) ([]core.FixedExpenseRecord, error)
		DeleteFixedExpense(ctx context.Context, id int64) error
	}

	// PaydayStore keeps the single payday balance. GetPayday returns the
	// zero Payday when none was ever set.
	PaydayStore interface {
		GetPayday(ctx context.Context) (core.Payday, error)
		SetPayday(ctx context.Context, p core.Payday) error
	}

	// Store is everything the ledger service needs.
	Store interface {
		ExpenseStore
		IncomeStore
		FixedExpenseStore
		PaydayStore
		Close() error
	}
)
