package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type (
	// ExpenseRecord is a persisted expense. Category is assigned by the server.
	ExpenseRecord struct {
		ID        int64     `json:"id"`
		CreatedAt time.Time `json:"created_at"`
		Item      string    `json:"item"`
		Category  string    `json:"category"`
		Price     int64     `json:"price"`
	}

	IncomeRecord struct {
		ID        int64     `json:"id"`
		CreatedAt time.Time `json:"created_at"`
		Source    string    `json:"source"`
		Amount    int64     `json:"amount"`
	}

	// FixedExpenseRecord recurs every month and is subtracted from the
	// projected balance.
	FixedExpenseRecord struct {
		ID     int64  `json:"id"`
		Name   string `json:"name"`
		Amount int64  `json:"amount"`
	}

	// Payday is the balance recorded when the user was last paid. Records
	// created at or after SetAt belong to the current cycle.
	Payday struct {
		Balance int64     `json:"balance"`
		SetAt   time.Time `json:"set_at"`
	}

	// NewExpense is the structured result of parsing free text, before the
	// store assigns an id.
	NewExpense struct {
		Item     string
		Category string
		Price    int64
	}

	NewIncome struct {
		Source string
		Amount int64
	}

	NewFixedExpense struct {
		Name   string
		Amount int64
	}
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrEmptyText       = errors.New("empty text")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNegativeBalance = errors.New("balance must not be negative")
	ErrTooLong         = errors.New("too long")
)

const maxTextLength = 200

func (e NewExpense) Validate() error {
	if strings.TrimSpace(e.Item) == "" {
		return ErrEmptyText
	}
	if len(e.Item) > maxTextLength {
		return fmt.Errorf("item %w (max %d bytes)", ErrTooLong, maxTextLength)
	}
	if e.Price < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (i NewIncome) Validate() error {
	if strings.TrimSpace(i.Source) == "" {
		return ErrEmptyText
	}
	if len(i.Source) > maxTextLength {
		return fmt.Errorf("source %w (max %d bytes)", ErrTooLong, maxTextLength)
	}
	if i.Amount < 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (f NewFixedExpense) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if len(f.Name) > maxTextLength {
		return fmt.Errorf("name %w (max %d bytes)", ErrTooLong, maxTextLength)
	}
	if f.Amount <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (p Payday) Validate() error {
	if p.Balance < 0 {
		return ErrNegativeBalance
	}
	return nil
}

// IsSet reports whether a payday balance has ever been stored.
func (p Payday) IsSet() bool {
	return !p.SetAt.IsZero()
}
