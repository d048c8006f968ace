// Package worker consumes ledger record events and keeps running activity
// tallies for the report the worker binary logs.
package worker

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"moneylite/internal/amqp"
	applog "moneylite/internal/log"
)

// KindTally counts events for one record kind.
type KindTally struct {
	Created      int
	Deleted      int
	CreatedTotal int64
}

// Report is a point-in-time copy of the worker's tallies.
type Report struct {
	Kinds         map[string]KindTally
	PaydayBalance int64
	PaydaySet     bool
	Events        int
}

// SortedKinds returns the tallied kinds in a stable order.
func (r Report) SortedKinds() []string {
	out := make([]string, 0, len(r.Kinds))
	for k := range r.Kinds {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type ActivityWorker struct {
	mu     sync.Mutex
	report Report
	logger *applog.Logger
}

func NewActivityWorker(logger *applog.Logger) *ActivityWorker {
	if logger == nil {
		logger = applog.Discard()
	}
	return &ActivityWorker{
		report: Report{Kinds: map[string]KindTally{}},
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleRecordEvent is an amqp.Handler.
func (w *ActivityWorker) HandleRecordEvent(ctx context.Context, ev amqp.RecordEvent) error {
	switch ev.Kind {
	case amqp.KindExpense, amqp.KindIncome, amqp.KindFixedExpense, amqp.KindPayday:
	default:
		// Unknown kinds are acked so they do not cycle through the queue.
		w.logger.WarnContext(ctx, "Ignoring record event of unknown kind",
			applog.FieldRecordKind, ev.Kind)
		return nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if ev.Kind == amqp.KindPayday {
		if ev.Action != amqp.ActionSet {
			return fmt.Errorf("unexpected payday action %q", ev.Action)
		}
		w.report.PaydayBalance = ev.Amount
		w.report.PaydaySet = true
	} else {
		t := w.report.Kinds[ev.Kind]
		switch ev.Action {
		case amqp.ActionCreated:
			t.Created++
			t.CreatedTotal += ev.Amount
		case amqp.ActionDeleted:
			t.Deleted++
		default:
			return fmt.Errorf("unexpected %s action %q", ev.Kind, ev.Action)
		}
		w.report.Kinds[ev.Kind] = t
	}
	w.report.Events++

	w.logger.InfoContext(ctx, "Record event",
		applog.FieldRecordKind, ev.Kind,
		applog.FieldRecordID, ev.ID,
		applog.FieldAmount, ev.Amount,
		"action", ev.Action)
	return nil
}

// Snapshot returns a copy of the tallies.
func (w *ActivityWorker) Snapshot() Report {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := w.report
	out.Kinds = make(map[string]KindTally, len(w.report.Kinds))
	for k, v := range w.report.Kinds {
		out.Kinds[k] = v
	}
	return out
}

// LogReport writes the current tallies at info level.
func (w *ActivityWorker) LogReport(ctx context.Context) {
	r := w.Snapshot()
	args := []any{"events", r.Events}
	for _, k := range r.SortedKinds() {
		t := r.Kinds[k]
		args = append(args, k+"_created", t.Created, k+"_deleted", t.Deleted, k+"_total", t.CreatedTotal)
	}
	if r.PaydaySet {
		args = append(args, "payday_balance", r.PaydayBalance)
	}
	w.logger.InfoContext(ctx, "Activity report", args...)
}
