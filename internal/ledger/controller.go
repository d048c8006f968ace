// Package ledger is the client-side view model: an immutable State, pure
// reducers over it, and a Controller that runs the ledger operations
// against the REST API and swaps in new states.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"moneylite/internal/core"
	applog "moneylite/internal/log"
)

// API is the transport the controller needs. *apiclient.Client
// satisfies it.
type API interface {
	Request(ctx context.Context, method, path string, body any) (json.RawMessage, error)
}

type Controller struct {
	api     API
	confirm ConfirmationPort
	logger  *applog.Logger

	mu    sync.Mutex
	state State
}

func NewController(api API, confirm ConfirmationPort, logger *applog.Logger) *Controller {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Controller{
		api:     api,
		confirm: confirm,
		logger:  logger.WithComponent(applog.ComponentLedger),
	}
}

// State returns the current state value.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) update(fn func(State) State) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = fn(c.state)
	return c.state
}

// fail stores err's message in the error slot and returns err.
func (c *Controller) fail(err error) error {
	msg := userMessage(err)
	c.update(func(s State) State { return Fail(s, msg) })
	return err
}

// LoadAll fetches the four resources concurrently and applies them
// together. If any fetch fails nothing is replaced.
func (c *Controller) LoadAll(ctx context.Context) error {
	c.update(ClearError)
	snap, err := c.fetchAll(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "Load failed", applog.FieldError, err)
		return c.fail(err)
	}
	c.update(func(s State) State { return ApplySnapshot(s, snap) })
	return nil
}

func (c *Controller) fetchAll(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.get(gctx, "expenses", "/expenses", &snap.Expenses) })
	g.Go(func() error { return c.get(gctx, "incomes", "/incomes", &snap.Incomes) })
	g.Go(func() error { return c.get(gctx, "fixed expenses", "/fixed_expenses", &snap.FixedExpenses) })
	g.Go(func() error { return c.get(gctx, "summary", "/summary", &snap.Summary) })
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}
	return snap, nil
}

func (c *Controller) get(ctx context.Context, resource, path string, dst any) error {
	raw, err := c.api.Request(ctx, http.MethodGet, path, nil)
	if err != nil {
		return &FetchError{Resource: resource, Err: err}
	}
	if len(raw) == 0 {
		return &FetchError{Resource: resource, Err: errors.New("empty response")}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &FetchError{Resource: resource, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

// submit runs one mutating operation for form f: refuse while busy, mark
// Submitting, send, resync on success, return to Idle.
func (c *Controller) submit(ctx context.Context, f Form, drafts []string, send func(context.Context) error) error {
	busy := false
	c.update(func(s State) State {
		if s.Busy(f) {
			busy = true
			return s
		}
		if drafts != nil {
			s = SetDraft(s, f, drafts...)
		}
		return BeginSubmit(s, f)
	})
	if busy {
		return c.fail(ErrBusy)
	}
	defer c.update(func(s State) State { return EndSubmit(s, f) })

	if err := send(ctx); err != nil {
		c.logger.WarnContext(ctx, "Submission failed",
			applog.FieldOperation, f.String(),
			applog.FieldError, err)
		return c.fail(err)
	}
	c.update(func(s State) State { return ClearDraft(s, f) })
	return c.LoadAll(ctx)
}

func (c *Controller) post(path string, body any) func(context.Context) error {
	return func(ctx context.Context) error {
		_, err := c.api.Request(ctx, http.MethodPost, path, body)
		return err
	}
}

// RecordExpense submits free text for the server to parse.
func (c *Controller) RecordExpense(ctx context.Context, text string) error {
	return c.recordText(ctx, FormExpense, "/expenses", text)
}

// RecordIncome submits free text for the server to parse.
func (c *Controller) RecordIncome(ctx context.Context, text string) error {
	return c.recordText(ctx, FormIncome, "/incomes", text)
}

func (c *Controller) recordText(ctx context.Context, f Form, path, text string) error {
	if strings.TrimSpace(text) == "" {
		c.update(ClearError)
		return c.fail(&ValidationError{Field: "text", Message: "Please enter some text."})
	}
	return c.submit(ctx, f, []string{text}, c.post(path, map[string]string{"text": text}))
}

// SetPaydayBalance validates value locally and stores it as the payday
// balance.
func (c *Controller) SetPaydayBalance(ctx context.Context, value string) error {
	balance, err := core.ParseYen(value)
	if err != nil {
		c.update(func(s State) State { return ClearError(SetDraft(s, FormBalance, value)) })
		return c.fail(&ValidationError{Field: "balance", Message: "Balance must be a non-negative whole number."})
	}
	return c.submit(ctx, FormBalance, []string{value}, c.post("/balance", map[string]int64{"balance": balance}))
}

// AddFixedExpense validates name and amount locally and adds a fixed
// monthly expense.
func (c *Controller) AddFixedExpense(ctx context.Context, name, amount string) error {
	name = strings.TrimSpace(name)
	var verr *ValidationError
	n, err := core.ParseYen(amount)
	switch {
	case name == "":
		verr = &ValidationError{Field: "name", Message: "Please enter a name."}
	case err != nil || n <= 0:
		verr = &ValidationError{Field: "amount", Message: "Amount must be a positive whole number."}
	}
	if verr != nil {
		c.update(func(s State) State { return ClearError(SetDraft(s, FormFixedExpense, name, amount)) })
		return c.fail(verr)
	}
	body := map[string]any{"name": name, "amount": n}
	return c.submit(ctx, FormFixedExpense, []string{name, amount}, c.post("/fixed_expenses", body))
}

func (c *Controller) DeleteExpense(ctx context.Context, id int64) error {
	return c.deleteRecord(ctx, "expense", "/expenses", id)
}

func (c *Controller) DeleteIncome(ctx context.Context, id int64) error {
	return c.deleteRecord(ctx, "income", "/incomes", id)
}

func (c *Controller) DeleteFixedExpense(ctx context.Context, id int64) error {
	return c.deleteRecord(ctx, "fixed expense", "/fixed_expenses", id)
}

// deleteRecord asks for confirmation first. Declining is a silent no-op.
func (c *Controller) deleteRecord(ctx context.Context, kind, base string, id int64) error {
	if c.State().Busy(FormDelete) {
		return c.fail(ErrBusy)
	}
	ok, err := c.confirm.Confirm(ctx, fmt.Sprintf("Delete %s #%d?", kind, id))
	if err != nil {
		return c.fail(fmt.Errorf("confirmation: %w", err))
	}
	if !ok {
		return nil
	}
	path := fmt.Sprintf("%s/%d", base, id)
	return c.submit(ctx, FormDelete, nil, func(ctx context.Context) error {
		_, err := c.api.Request(ctx, http.MethodDelete, path, nil)
		return err
	})
}
