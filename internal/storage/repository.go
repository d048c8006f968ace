// Package storage is the SQLite-backed store. The schema is embedded and
// migrated on open.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"moneylite/internal/core"
	applog "moneylite/internal/log"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
	logger  *applog.Logger
}

func NewSQLiteRepository(dbPath string, logger *applog.Logger) (*SQLiteRepository, error) {
	if logger == nil {
		logger = applog.Discard()
	}
	logger = logger.WithComponent(applog.ComponentStorage)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite serialises writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("SQLite ledger ready", "path", dbPath, "schema_version", version)

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
		logger:  logger,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.NewExpense) (core.ExpenseRecord, error) {
	if err := e.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}
	row, err := r.queries.CreateExpense(ctx, e.Item, e.Category, e.Price, r.now())
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("create expense: %w", err)
	}
	rec, err := toExpense(row)
	if err != nil {
		return core.ExpenseRecord{}, err
	}

	r.logger.DebugContext(ctx, "Expense saved to SQLite",
		applog.FieldRecordID, rec.ID,
		applog.FieldCategory, rec.Category,
		applog.FieldAmount, rec.Price)
	return rec, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.ExpenseRecord, error) {
	rows, err := r.queries.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	out := make([]core.ExpenseRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := toExpense(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) CreateIncome(ctx context.Context, in core.NewIncome) (core.IncomeRecord, error) {
	if err := in.Validate(); err != nil {
		return core.IncomeRecord{}, err
	}
	row, err := r.queries.CreateIncome(ctx, in.Source, in.Amount, r.now())
	if err != nil {
		return core.IncomeRecord{}, fmt.Errorf("create income: %w", err)
	}
	rec, err := toIncome(row)
	if err != nil {
		return core.IncomeRecord{}, err
	}
	r.logger.DebugContext(ctx, "Income saved to SQLite",
		applog.FieldRecordID, rec.ID,
		applog.FieldAmount, rec.Amount)
	return rec, nil
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context) ([]core.IncomeRecord, error) {
	rows, err := r.queries.ListIncomes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	out := make([]core.IncomeRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := toIncome(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteIncome(ctx, id)
	if err != nil {
		return fmt.Errorf("delete income %d: %w", id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) CreateFixedExpense(ctx context.Context, f core.NewFixedExpense) (core.FixedExpenseRecord, error) {
	if err := f.Validate(); err != nil {
		return core.FixedExpenseRecord{}, err
	}
	row, err := r.queries.CreateFixedExpense(ctx, f.Name, f.Amount)
	if err != nil {
		return core.FixedExpenseRecord{}, fmt.Errorf("create fixed expense: %w", err)
	}
	return core.FixedExpenseRecord{ID: row.ID, Name: row.Name, Amount: row.Amount}, nil
}

func (r *SQLiteRepository) ListFixedExpenses(ctx context.Context) ([]core.FixedExpenseRecord, error) {
	rows, err := r.queries.ListFixedExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list fixed expenses: %w", err)
	}
	out := make([]core.FixedExpenseRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, core.FixedExpenseRecord{ID: row.ID, Name: row.Name, Amount: row.Amount})
	}
	return out, nil
}

func (r *SQLiteRepository) DeleteFixedExpense(ctx context.Context, id int64) error {
	n, err := r.queries.DeleteFixedExpense(ctx, id)
	if err != nil {
		return fmt.Errorf("delete fixed expense %d: %w", id, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetPayday(ctx context.Context) (core.Payday, error) {
	balance, setAt, err := r.queries.GetPayday(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Payday{}, nil
	}
	if err != nil {
		return core.Payday{}, fmt.Errorf("get payday: %w", err)
	}
	t, err := parseTime(setAt)
	if err != nil {
		return core.Payday{}, err
	}
	return core.Payday{Balance: balance, SetAt: t}, nil
}

func (r *SQLiteRepository) SetPayday(ctx context.Context, p core.Payday) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := r.queries.UpsertPayday(ctx, p.Balance, p.SetAt); err != nil {
		return fmt.Errorf("set payday: %w", err)
	}
	r.logger.InfoContext(ctx, "Payday balance stored", applog.FieldAmount, p.Balance)
	return nil
}

func toExpense(row expenseRow) (core.ExpenseRecord, error) {
	t, err := parseTime(row.CreatedAt)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	return core.ExpenseRecord{ID: row.ID, CreatedAt: t, Item: row.Item, Category: row.Category, Price: row.Price}, nil
}

func toIncome(row incomeRow) (core.IncomeRecord, error) {
	t, err := parseTime(row.CreatedAt)
	if err != nil {
		return core.IncomeRecord{}, err
	}
	return core.IncomeRecord{ID: row.ID, CreatedAt: t, Source: row.Source, Amount: row.Amount}, nil
}
