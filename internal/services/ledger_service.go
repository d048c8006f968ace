// Package services holds the ledger service the HTTP handlers call: it parses
// free text, persists through the store ports, announces mutations over
// AMQP and computes the summary snapshot.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"moneylite/internal/amqp"
	"moneylite/internal/core"
	applog "moneylite/internal/log"
	"moneylite/internal/parser"
	"moneylite/internal/store"
)

// Publisher announces record mutations. *amqp.Client satisfies it.
type Publisher interface {
	PublishRecordEvent(ctx context.Context, ev amqp.RecordEvent) error
}

const (
	// eventQueueSize bounds the events waiting for the broker. When it is
	// full new events are dropped.
	eventQueueSize = 256
	publishTimeout = 10 * time.Second
)

type LedgerService struct {
	store     store.Store
	parser    *parser.Parser
	publisher Publisher
	logger    *applog.Logger
	now       func() time.Time

	// Events are handed to a single goroutine so requests never wait on
	// the broker.
	eventsMu   sync.RWMutex
	events     chan amqp.RecordEvent
	eventsDone chan struct{}
	eventsShut bool
}

// Option customises a LedgerService.
type Option func(*LedgerService)

// WithPublisher enables record events. A nil publisher is ignored.
func WithPublisher(p Publisher) Option {
	return func(s *LedgerService) { s.publisher = p }
}

func WithLogger(l *applog.Logger) Option {
	return func(s *LedgerService) { s.logger = l }
}

// WithClock replaces time.Now for payday stamps.
func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.now = now }
}

func WithParser(p *parser.Parser) Option {
	return func(s *LedgerService) { s.parser = p }
}

func NewLedgerService(st store.Store, opts ...Option) *LedgerService {
	s := &LedgerService{
		store:  st,
		parser: parser.New(),
		logger: applog.Discard(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.WithComponent(applog.ComponentService)
	if s.publisher != nil {
		s.events = make(chan amqp.RecordEvent, eventQueueSize)
		s.eventsDone = make(chan struct{})
		go s.publishLoop()
	}
	return s
}

// RecordExpense parses free text into an expense and stores it.
func (s *LedgerService) RecordExpense(ctx context.Context, text string) (core.ExpenseRecord, error) {
	e, err := s.parser.ParseExpense(text)
	if err != nil {
		return core.ExpenseRecord{}, err
	}
	rec, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.ExpenseRecord{}, fmt.Errorf("save expense: %w", err)
	}
	s.logger.InfoContext(ctx, "Expense recorded",
		applog.FieldRecordID, rec.ID,
		applog.FieldCategory, rec.Category,
		applog.FieldAmount, rec.Price)
	s.publish(ctx, amqp.NewRecordEvent(amqp.KindExpense, amqp.ActionCreated, rec.ID, rec.Price))
	return rec, nil
}

func (s *LedgerService) ListExpenses(ctx context.Context) ([]core.ExpenseRecord, error) {
	return s.store.ListExpenses(ctx)
}

func (s *LedgerService) DeleteExpense(ctx context.Context, id int64) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewRecordEvent(amqp.KindExpense, amqp.ActionDeleted, id, 0))
	return nil
}

// RecordIncome parses free text into an income and stores it.
func (s *LedgerService) RecordIncome(ctx context.Context, text string) (core.IncomeRecord, error) {
	in, err := s.parser.ParseIncome(text)
	if err != nil {
		return core.IncomeRecord{}, err
	}
	rec, err := s.store.CreateIncome(ctx, in)
	if err != nil {
		return core.IncomeRecord{}, fmt.Errorf("save income: %w", err)
	}
	s.logger.InfoContext(ctx, "Income recorded",
		applog.FieldRecordID, rec.ID,
		applog.FieldAmount, rec.Amount)
	s.publish(ctx, amqp.NewRecordEvent(amqp.KindIncome, amqp.ActionCreated, rec.ID, rec.Amount))
	return rec, nil
}

func (s *LedgerService) ListIncomes(ctx context.Context) ([]core.IncomeRecord, error) {
	return s.store.ListIncomes(ctx)
}

func (s *LedgerService) DeleteIncome(ctx context.Context, id int64) error {
	if err := s.store.DeleteIncome(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewRecordEvent(amqp.KindIncome, amqp.ActionDeleted, id, 0))
	return nil
}

func (s *LedgerService) AddFixedExpense(ctx context.Context, name string, amount int64) (core.FixedExpenseRecord, error) {
	rec, err := s.store.CreateFixedExpense(ctx, core.NewFixedExpense{Name: name, Amount: amount})
	if err != nil {
		return core.FixedExpenseRecord{}, err
	}
	s.logger.InfoContext(ctx, "Fixed expense added",
		applog.FieldRecordID, rec.ID,
		applog.FieldAmount, rec.Amount)
	s.publish(ctx, amqp.NewRecordEvent(amqp.KindFixedExpense, amqp.ActionCreated, rec.ID, rec.Amount))
	return rec, nil
}

func (s *LedgerService) ListFixedExpenses(ctx context.Context) ([]core.FixedExpenseRecord, error) {
	return s.store.ListFixedExpenses(ctx)
}

func (s *LedgerService) DeleteFixedExpense(ctx context.Context, id int64) error {
	if err := s.store.DeleteFixedExpense(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.NewRecordEvent(amqp.KindFixedExpense, amqp.ActionDeleted, id, 0))
	return nil
}

// SetPaydayBalance records the balance on payday and starts a new cycle.
func (s *LedgerService) SetPaydayBalance(ctx context.Context, balance int64) (core.Payday, error) {
	p := core.Payday{Balance: balance, SetAt: s.now().UTC()}
	if err := s.store.SetPayday(ctx, p); err != nil {
		return core.Payday{}, err
	}
	s.logger.InfoContext(ctx, "Payday balance set", applog.FieldAmount, balance)
	s.publish(ctx, amqp.NewRecordEvent(amqp.KindPayday, amqp.ActionSet, 0, balance))
	return p, nil
}

// Summary reads everything the snapshot depends on concurrently.
func (s *LedgerService) Summary(ctx context.Context) (core.SummarySnapshot, error) {
	var (
		payday   core.Payday
		expenses []core.ExpenseRecord
		incomes  []core.IncomeRecord
		fixed    []core.FixedExpenseRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { payday, err = s.store.GetPayday(gctx); return })
	g.Go(func() (err error) { expenses, err = s.store.ListExpenses(gctx); return })
	g.Go(func() (err error) { incomes, err = s.store.ListIncomes(gctx); return })
	g.Go(func() (err error) { fixed, err = s.store.ListFixedExpenses(gctx); return })
	if err := g.Wait(); err != nil {
		return core.SummarySnapshot{}, fmt.Errorf("load summary inputs: %w", err)
	}
	return core.ComputeSummary(payday, expenses, incomes, fixed), nil
}

// IsValidation reports whether err is a caller mistake rather than a
// storage failure.
func IsValidation(err error) bool {
	return errors.Is(err, core.ErrEmptyText) ||
		errors.Is(err, core.ErrTooLong) ||
		errors.Is(err, core.ErrEmptyName) ||
		errors.Is(err, core.ErrInvalidAmount) ||
		errors.Is(err, core.ErrNegativeBalance)
}

// publish queues ev for the publisher goroutine and returns at once.
func (s *LedgerService) publish(ctx context.Context, ev amqp.RecordEvent) {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()
	if s.events == nil || s.eventsShut {
		return
	}
	select {
	case s.events <- ev:
	default:
		s.logger.WarnContext(ctx, "Record event queue full, dropping event",
			applog.FieldRecordKind, ev.Kind,
			applog.FieldRecordID, ev.ID)
	}
}

func (s *LedgerService) publishLoop() {
	defer close(s.eventsDone)
	for ev := range s.events {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		err := s.publisher.PublishRecordEvent(ctx, ev)
		cancel()
		if err != nil {
			s.logger.Error("Failed to publish record event",
				applog.FieldError, err,
				applog.FieldRecordKind, ev.Kind,
				applog.FieldRecordID, ev.ID)
		}
	}
}

// Close flushes queued record events, then releases the store.
func (s *LedgerService) Close() error {
	s.eventsMu.Lock()
	if s.events != nil && !s.eventsShut {
		s.eventsShut = true
		close(s.events)
	}
	s.eventsMu.Unlock()
	if s.eventsDone != nil {
		<-s.eventsDone
	}
	return s.store.Close()
}
