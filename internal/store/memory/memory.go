// Package memory is an in-process store used by default and in tests.
// Nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"moneylite/internal/core"
)

type Store struct {
	mu       sync.Mutex
	now      func() time.Time
	nextID   int64
	expenses []core.ExpenseRecord
	incomes  []core.IncomeRecord
	fixed    []core.FixedExpenseRecord
	payday   core.Payday
}

// Option customises a Store.
type Option func(*Store)

// WithClock replaces time.Now for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) CreateExpense(_ context.Context, e core.NewExpense) (core.ExpenseRecord, error) {
	if err := e.Validate(); err != nil {
		return core.ExpenseRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := core.ExpenseRecord{
		ID:        s.id(),
		CreatedAt: s.now().UTC(),
		Item:      e.Item,
		Category:  e.Category,
		Price:     e.Price,
	}
	s.expenses = append(s.expenses, rec)
	return rec, nil
}

func (s *Store) ListExpenses(_ context.Context) ([]core.ExpenseRecord, error) {
	s.mu.Lock()
	out := append([]core.ExpenseRecord(nil), s.expenses...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) DeleteExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.expenses {
		if e.ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) CreateIncome(_ context.Context, in core.NewIncome) (core.IncomeRecord, error) {
	if err := in.Validate(); err != nil {
		return core.IncomeRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := core.IncomeRecord{
		ID:        s.id(),
		CreatedAt: s.now().UTC(),
		Source:    in.Source,
		Amount:    in.Amount,
	}
	s.incomes = append(s.incomes, rec)
	return rec, nil
}

func (s *Store) ListIncomes(_ context.Context) ([]core.IncomeRecord, error) {
	s.mu.Lock()
	out := append([]core.IncomeRecord(nil), s.incomes...)
	s.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) DeleteIncome(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, in := range s.incomes {
		if in.ID == id {
			s.incomes = append(s.incomes[:i], s.incomes[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) CreateFixedExpense(_ context.Context, f core.NewFixedExpense) (core.FixedExpenseRecord, error) {
	if err := f.Validate(); err != nil {
		return core.FixedExpenseRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := core.FixedExpenseRecord{ID: s.id(), Name: f.Name, Amount: f.Amount}
	s.fixed = append(s.fixed, rec)
	return rec, nil
}

// ListFixedExpenses returns fixed expenses in insertion order.
func (s *Store) ListFixedExpenses(_ context.Context) ([]core.FixedExpenseRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.FixedExpenseRecord(nil), s.fixed...), nil
}

func (s *Store) DeleteFixedExpense(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, f := range s.fixed {
		if f.ID == id {
			s.fixed = append(s.fixed[:i], s.fixed[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) GetPayday(_ context.Context) (core.Payday, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payday, nil
}

func (s *Store) SetPayday(_ context.Context, p core.Payday) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payday = p
	return nil
}

func (s *Store) Close() error { return nil }
