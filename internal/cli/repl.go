package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"moneylite/internal/ledger"
	applog "moneylite/internal/log"
	"moneylite/internal/view"
)

const helpText = `Commands:
  expense <text>          record an expense, e.g. "expense コンビニでパン 300円"
  income <text>           record an income, e.g. "income 給料 250000"
  fixed <name> <amount>   add a fixed monthly expense
  balance <value>         set the balance at payday
  rm expense|income|fixed <id>
                          delete a record after confirmation
  refresh                 reload everything from the server
  help                    show this text
  quit                    exit`

var errQuit = errors.New("quit")

// Controller is the part of *ledger.Controller the loop drives.
type Controller interface {
	State() ledger.State
	LoadAll(ctx context.Context) error
	RecordExpense(ctx context.Context, text string) error
	RecordIncome(ctx context.Context, text string) error
	AddFixedExpense(ctx context.Context, name, amount string) error
	SetPaydayBalance(ctx context.Context, value string) error
	DeleteExpense(ctx context.Context, id int64) error
	DeleteIncome(ctx context.Context, id int64) error
	DeleteFixedExpense(ctx context.Context, id int64) error
}

// REPL reads commands line by line and re-renders the state after each.
// The reader is shared with the delete confirmation prompt.
type REPL struct {
	ctrl     Controller
	renderer *view.Renderer
	in       *bufio.Reader
	out      io.Writer
	logger   *applog.Logger
}

func NewREPL(ctrl Controller, renderer *view.Renderer, in *bufio.Reader, out io.Writer, logger *applog.Logger) *REPL {
	if logger == nil {
		logger = applog.Discard()
	}
	return &REPL{
		ctrl:     ctrl,
		renderer: renderer,
		in:       in,
		out:      out,
		logger:   logger.WithComponent(applog.ComponentCLI),
	}
}

// Run loads the ledger, then processes commands until quit, EOF or ctx is
// cancelled.
func (r *REPL) Run(ctx context.Context) error {
	// A failed first load is shown in the error slot; the user can refresh.
	_ = r.ctrl.LoadAll(ctx)
	r.render()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		fmt.Fprint(r.out, "> ")
		line, err := r.in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if strings.TrimSpace(line) != "" {
			if cerr := r.Execute(ctx, line); errors.Is(cerr, errQuit) {
				return nil
			}
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out)
			return nil
		}
	}
}

// Execute runs one command line. Operation failures land in the ledger
// error slot and are rendered, so only usage problems and quit are
// returned.
func (r *REPL) Execute(ctx context.Context, line string) error {
	cmd, rest := splitWord(strings.TrimSpace(line))
	var opErr error
	switch strings.ToLower(cmd) {
	case "expense", "e":
		opErr = r.ctrl.RecordExpense(ctx, rest)
	case "income", "i":
		opErr = r.ctrl.RecordIncome(ctx, rest)
	case "fixed", "f":
		name, amount := splitLastWord(rest)
		opErr = r.ctrl.AddFixedExpense(ctx, name, amount)
	case "balance", "b":
		opErr = r.ctrl.SetPaydayBalance(ctx, rest)
	case "rm", "delete":
		if err := r.delete(ctx, rest); err != nil {
			fmt.Fprintln(r.out, err)
			return err
		}
	case "refresh", "r":
		opErr = r.ctrl.LoadAll(ctx)
	case "help", "?":
		fmt.Fprintln(r.out, helpText)
		return nil
	case "quit", "exit", "q":
		return errQuit
	default:
		err := fmt.Errorf("unknown command %q, type help for a list", cmd)
		fmt.Fprintln(r.out, err)
		return err
	}
	if opErr != nil {
		r.logger.DebugContext(ctx, "Command failed", applog.FieldOperation, cmd, applog.FieldError, opErr)
	}
	r.render()
	return nil
}

func (r *REPL) delete(ctx context.Context, args string) error {
	kind, idText := splitWord(args)
	id, err := strconv.ParseInt(strings.TrimSpace(idText), 10, 64)
	if err != nil || id <= 0 {
		return fmt.Errorf("usage: rm expense|income|fixed <id>")
	}
	switch strings.ToLower(kind) {
	case "expense":
		_ = r.ctrl.DeleteExpense(ctx, id)
	case "income":
		_ = r.ctrl.DeleteIncome(ctx, id)
	case "fixed":
		_ = r.ctrl.DeleteFixedExpense(ctx, id)
	default:
		return fmt.Errorf("usage: rm expense|income|fixed <id>")
	}
	return nil
}

func (r *REPL) render() {
	fmt.Fprintln(r.out, r.renderer.Render(r.ctrl.State()))
}

func splitWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], strings.TrimSpace(s[i+1:])
	}
	return s, ""
}

// splitLastWord splits off the final word, so names may contain spaces.
func splitLastWord(s string) (string, string) {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexAny(s, " \t"); i >= 0 {
		return strings.TrimSpace(s[:i]), s[i+1:]
	}
	return "", s
}
