package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// timeLayout sorts lexicographically in the same order as the instants it
// encodes, so ORDER BY created_at works on the TEXT column.
const timeLayout = "2006-01-02 15:04:05.000000000"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type expenseRow struct {
	ID        int64
	Item      string
	Category  string
	Price     int64
	CreatedAt string
}

const createExpense = `INSERT INTO expenses (item, category, price, created_at)
VALUES (?, ?, ?, ?)
RETURNING id, item, category, price, created_at`

func (q *Queries) CreateExpense(ctx context.Context, item, category string, price int64, createdAt time.Time) (expenseRow, error) {
	var r expenseRow
	err := q.db.QueryRowContext(ctx, createExpense, item, category, price, formatTime(createdAt)).
		Scan(&r.ID, &r.Item, &r.Category, &r.Price, &r.CreatedAt)
	return r, err
}

const listExpenses = `SELECT id, item, category, price, created_at
FROM expenses
ORDER BY created_at DESC, id DESC`

func (q *Queries) ListExpenses(ctx context.Context) ([]expenseRow, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []expenseRow
	for rows.Next() {
		var r expenseRow
		if err := rows.Scan(&r.ID, &r.Item, &r.Category, &r.Price, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const deleteExpense = `DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpense, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type incomeRow struct {
	ID        int64
	Source    string
	Amount    int64
	CreatedAt string
}

const createIncome = `INSERT INTO incomes (source, amount, created_at)
VALUES (?, ?, ?)
RETURNING id, source, amount, created_at`

func (q *Queries) CreateIncome(ctx context.Context, source string, amount int64, createdAt time.Time) (incomeRow, error) {
	var r incomeRow
	err := q.db.QueryRowContext(ctx, createIncome, source, amount, formatTime(createdAt)).
		Scan(&r.ID, &r.Source, &r.Amount, &r.CreatedAt)
	return r, err
}

const listIncomes = `SELECT id, source, amount, created_at
FROM incomes
ORDER BY created_at DESC, id DESC`

func (q *Queries) ListIncomes(ctx context.Context) ([]incomeRow, error) {
	rows, err := q.db.QueryContext(ctx, listIncomes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []incomeRow
	for rows.Next() {
		var r incomeRow
		if err := rows.Scan(&r.ID, &r.Source, &r.Amount, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const deleteIncome = `DELETE FROM incomes WHERE id = ?`

func (q *Queries) DeleteIncome(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteIncome, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const createFixedExpense = `INSERT INTO fixed_expenses (name, amount)
VALUES (?, ?)
RETURNING id, name, amount`

type fixedRow struct {
	ID     int64
	Name   string
	Amount int64
}

func (q *Queries) CreateFixedExpense(ctx context.Context, name string, amount int64) (fixedRow, error) {
	var r fixedRow
	err := q.db.QueryRowContext(ctx, createFixedExpense, name, amount).Scan(&r.ID, &r.Name, &r.Amount)
	return r, err
}

const listFixedExpenses = `SELECT id, name, amount FROM fixed_expenses ORDER BY id`

func (q *Queries) ListFixedExpenses(ctx context.Context) ([]fixedRow, error) {
	rows, err := q.db.QueryContext(ctx, listFixedExpenses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []fixedRow
	for rows.Next() {
		var r fixedRow
		if err := rows.Scan(&r.ID, &r.Name, &r.Amount); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const deleteFixedExpense = `DELETE FROM fixed_expenses WHERE id = ?`

func (q *Queries) DeleteFixedExpense(ctx context.Context, id int64) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteFixedExpense, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const getPayday = `SELECT balance, set_at FROM payday WHERE id = 1`

func (q *Queries) GetPayday(ctx context.Context) (int64, string, error) {
	var balance int64
	var setAt string
	err := q.db.QueryRowContext(ctx, getPayday).Scan(&balance, &setAt)
	return balance, setAt, err
}

const upsertPayday = `INSERT INTO payday (id, balance, set_at) VALUES (1, ?, ?)
ON CONFLICT(id) DO UPDATE SET balance = excluded.balance, set_at = excluded.set_at`

func (q *Queries) UpsertPayday(ctx context.Context, balance int64, setAt time.Time) error {
	_, err := q.db.ExecContext(ctx, upsertPayday, balance, formatTime(setAt))
	return err
}
