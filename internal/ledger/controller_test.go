package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneylite/internal/apiclient"
	"moneylite/internal/core"
	apphttp "moneylite/internal/http"
	"moneylite/internal/services"
	"moneylite/internal/store/memory"
)

type call struct {
	Method string
	Path   string
	Body   any
}

// fakeAPI answers GETs from canned JSON and records every call.
type fakeAPI struct {
	mu    sync.Mutex
	calls []call
	get   map[string]string
	fail  map[string]error
	block chan struct{}
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		get: map[string]string{
			"/expenses":       `[]`,
			"/incomes":        `[]`,
			"/fixed_expenses": `[]`,
			"/summary":        `{"balance_at_payday":0,"adhoc_incomes":0,"salary_incomes":0,"cycle_expenses":0,"total_fixed_expenses":0,"current_balance":0,"projected_next_balance":0}`,
		},
		fail: map[string]error{},
	}
}

func (f *fakeAPI) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, call{method, path, body})
	block := f.block
	err := f.fail[method+" "+path]
	resp := f.get[path]
	f.mu.Unlock()

	if block != nil && method != http.MethodGet {
		<-block
	}
	if err != nil {
		return nil, err
	}
	if method != http.MethodGet {
		return nil, nil
	}
	return json.RawMessage(resp), nil
}

func (f *fakeAPI) set(path, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.get[path] = body
}

func (f *fakeAPI) failOn(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[key] = err
}

func (f *fakeAPI) mutations() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.Method != http.MethodGet {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func yes() ConfirmationPort {
	return ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })
}

func no() ConfirmationPort {
	return ConfirmFunc(func(context.Context, string) (bool, error) { return false, nil })
}

func TestLoadAllReplacesEverything(t *testing.T) {
	api := newFakeAPI()
	api.set("/expenses", `[{"id":2,"created_at":"2025-04-25T10:00:00Z","item":"パン","category":"食費","price":300}]`)
	api.set("/incomes", `[{"id":3,"created_at":"2025-04-25T09:00:00Z","source":"給料","amount":200000}]`)
	api.set("/fixed_expenses", `[{"id":4,"name":"家賃","amount":80000}]`)
	api.set("/summary", `{"balance_at_payday":1000,"adhoc_incomes":0,"salary_incomes":200000,"cycle_expenses":300,"total_fixed_expenses":80000,"current_balance":200700,"projected_next_balance":120700}`)

	c := NewController(api, yes(), nil)
	assert.Nil(t, c.State().Summary)

	require.NoError(t, c.LoadAll(context.Background()))
	s := c.State()
	assert.True(t, s.Loaded)
	require.Len(t, s.Expenses, 1)
	assert.Equal(t, "パン", s.Expenses[0].Item)
	require.Len(t, s.Incomes, 1)
	require.Len(t, s.FixedExpenses, 1)
	require.NotNil(t, s.Summary)
	assert.Equal(t, int64(120700), s.Summary.ProjectedNextBalance)
	assert.Empty(t, s.Err)
}

func TestLoadAllIsAllOrNone(t *testing.T) {
	for _, path := range []string{"/expenses", "/incomes", "/fixed_expenses", "/summary"} {
		t.Run(path, func(t *testing.T) {
			api := newFakeAPI()
			api.set("/expenses", `[{"id":1,"item":"a","category":"その他","price":1}]`)
			c := NewController(api, yes(), nil)
			require.NoError(t, c.LoadAll(context.Background()))
			before := c.State()

			api.set("/expenses", `[]`)
			api.set("/incomes", `[{"id":9,"source":"x","amount":5}]`)
			api.failOn("GET "+path, &apiclient.HTTPError{Method: "GET", Path: path, StatusCode: 500})

			err := c.LoadAll(context.Background())
			var fe *FetchError
			require.ErrorAs(t, err, &fe)

			after := c.State()
			assert.Equal(t, before.Expenses, after.Expenses)
			assert.Equal(t, before.Incomes, after.Incomes)
			assert.Equal(t, before.FixedExpenses, after.FixedExpenses)
			assert.Equal(t, before.Summary, after.Summary)
			assert.NotEmpty(t, after.Err)
		})
	}
}

func TestLoadAllDecodeFailureIsFetchError(t *testing.T) {
	api := newFakeAPI()
	api.set("/summary", `not json`)
	c := NewController(api, yes(), nil)

	err := c.LoadAll(context.Background())
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "summary", fe.Resource)
	assert.False(t, c.State().Loaded)
	assert.Nil(t, c.State().Summary)
}

func TestLoadAllIdempotent(t *testing.T) {
	api := newFakeAPI()
	api.set("/expenses", `[{"id":1,"item":"a","category":"その他","price":1}]`)
	c := NewController(api, yes(), nil)

	require.NoError(t, c.LoadAll(context.Background()))
	first := c.State()
	require.NoError(t, c.LoadAll(context.Background()))
	assert.Equal(t, first, c.State())
}

func TestRecordExpenseRejectsBlankLocally(t *testing.T) {
	api := newFakeAPI()
	c := NewController(api, yes(), nil)

	for _, text := range []string{"", "   ", "\t\n"} {
		err := c.RecordExpense(context.Background(), text)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.NotEmpty(t, c.State().Err)
	}
	assert.Zero(t, api.count(), "no request may be sent for blank text")
}

func TestRecordIncomeResyncsAndClearsDraft(t *testing.T) {
	api := newFakeAPI()
	c := NewController(api, yes(), nil)

	require.NoError(t, c.RecordIncome(context.Background(), "給料 250000"))
	muts := api.mutations()
	require.Len(t, muts, 1)
	assert.Equal(t, call{http.MethodPost, "/incomes", map[string]string{"text": "給料 250000"}}, muts[0])
	assert.Equal(t, 5, api.count(), "one POST then four GETs")

	s := c.State()
	assert.True(t, s.Loaded)
	assert.Empty(t, s.Inputs.IncomeText)
	assert.False(t, s.Busy(FormIncome))
}

func TestFailedSubmissionKeepsDraftAndReportsError(t *testing.T) {
	api := newFakeAPI()
	api.failOn("POST /expenses", &apiclient.HTTPError{Method: "POST", Path: "/expenses", StatusCode: 422, Body: "empty text"})
	c := NewController(api, yes(), nil)

	err := c.RecordExpense(context.Background(), "300円")
	var he *apiclient.HTTPError
	require.ErrorAs(t, err, &he)

	s := c.State()
	assert.Equal(t, "300円", s.Inputs.ExpenseText)
	assert.Contains(t, s.Err, "empty text")
	assert.False(t, s.Busy(FormExpense))
	assert.Equal(t, 1, api.count(), "no resync after a failed mutation")
}

func TestErrorSlotHoldsOnlyLatestMessage(t *testing.T) {
	api := newFakeAPI()
	c := NewController(api, yes(), nil)

	_ = c.SetPaydayBalance(context.Background(), "abc")
	firstMsg := c.State().Err
	require.NotEmpty(t, firstMsg)

	_ = c.AddFixedExpense(context.Background(), "", "100")
	assert.NotEqual(t, firstMsg, c.State().Err)

	require.NoError(t, c.LoadAll(context.Background()))
	assert.Empty(t, c.State().Err, "a new operation clears the slot")
}

func TestSetPaydayBalanceValidation(t *testing.T) {
	tests := []struct {
		value   string
		want    int64
		wantErr bool
	}{
		{"12000", 12000, false},
		{"12,000", 12000, false},
		{"１２０００", 12000, false},
		{"0", 0, false},
		{"-5", 0, true},
		{"abc", 0, true},
		{"", 0, true},
		{"12.5", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			api := newFakeAPI()
			c := NewController(api, yes(), nil)
			err := c.SetPaydayBalance(context.Background(), tt.value)
			if tt.wantErr {
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Zero(t, api.count(), "invalid balance must not reach the network")
				assert.Equal(t, tt.value, c.State().Inputs.Balance)
				return
			}
			require.NoError(t, err)
			muts := api.mutations()
			require.Len(t, muts, 1)
			assert.Equal(t, map[string]int64{"balance": tt.want}, muts[0].Body)
			assert.Empty(t, c.State().Inputs.Balance)
		})
	}
}

func TestAddFixedExpenseValidation(t *testing.T) {
	tests := []struct {
		name, item, amount string
		field              string
	}{
		{"empty name", " ", "1000", "name"},
		{"zero amount", "家賃", "0", "amount"},
		{"negative amount", "家賃", "-1", "amount"},
		{"text amount", "家賃", "たくさん", "amount"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			c := NewController(api, yes(), nil)
			err := c.AddFixedExpense(context.Background(), tt.item, tt.amount)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Zero(t, api.count())
		})
	}

	api := newFakeAPI()
	c := NewController(api, yes(), nil)
	require.NoError(t, c.AddFixedExpense(context.Background(), " 家賃 ", "80,000"))
	muts := api.mutations()
	require.Len(t, muts, 1)
	assert.Equal(t, map[string]any{"name": "家賃", "amount": int64(80000)}, muts[0].Body)
	assert.Equal(t, Inputs{}, c.State().Inputs)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	api := newFakeAPI()
	c := NewController(api, no(), nil)

	require.NoError(t, c.DeleteExpense(context.Background(), 7))
	assert.Zero(t, api.count(), "declined confirmation sends nothing")
	assert.Empty(t, c.State().Err)

	var prompt string
	c = NewController(api, ConfirmFunc(func(_ context.Context, p string) (bool, error) {
		prompt = p
		return true, nil
	}), nil)
	require.NoError(t, c.DeleteFixedExpense(context.Background(), 7))
	assert.Contains(t, prompt, "#7")
	muts := api.mutations()
	require.Len(t, muts, 1)
	assert.Equal(t, http.MethodDelete, muts[0].Method)
	assert.Equal(t, "/fixed_expenses/7", muts[0].Path)
	assert.Equal(t, 5, api.count())
}

func TestDeleteConfirmationError(t *testing.T) {
	api := newFakeAPI()
	c := NewController(api, ConfirmFunc(func(context.Context, string) (bool, error) {
		return false, errors.New("tty closed")
	}), nil)

	require.Error(t, c.DeleteIncome(context.Background(), 1))
	assert.Zero(t, api.count())
	assert.Contains(t, c.State().Err, "tty closed")
}

func TestBusyFormRefusesSecondSubmission(t *testing.T) {
	api := newFakeAPI()
	api.block = make(chan struct{})
	c := NewController(api, yes(), nil)

	done := make(chan error, 1)
	go func() { done <- c.RecordExpense(context.Background(), "パン 300円") }()

	require.Eventually(t, func() bool { return c.State().Busy(FormExpense) }, time.Second, time.Millisecond)

	err := c.RecordExpense(context.Background(), "牛乳 200円")
	require.ErrorIs(t, err, ErrBusy)

	// Other forms are independent.
	assert.False(t, c.State().Busy(FormIncome))

	close(api.block)
	require.NoError(t, <-done)
	assert.False(t, c.State().Busy(FormExpense))
	assert.Len(t, api.mutations(), 1)
}

// mockBackend serves a fixed expense list that grows on POST, the way the
// real server does, so the whole client stack can be exercised.
func mockBackend(t *testing.T) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	var expenses []map[string]any
	mux := http.NewServeMux()
	mux.HandleFunc("GET /expenses", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		out := expenses
		if out == nil {
			out = []map[string]any{}
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("POST /expenses", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		rec := map[string]any{"id": 1, "item": "パン", "category": "food", "price": 300, "created_at": "2025-04-25T12:00:00Z"}
		expenses = append(expenses, rec)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(rec)
	})
	for _, p := range []string{"/incomes", "/fixed_expenses"} {
		mux.HandleFunc("GET "+p, func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`[]`)) })
	}
	mux.HandleFunc("GET /summary", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		_ = json.NewEncoder(w).Encode(core.SummarySnapshot{CycleExpenses: int64(300 * len(expenses)), CurrentBalance: int64(-300 * len(expenses))})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestScenarioConvenienceStoreBread(t *testing.T) {
	srv := mockBackend(t)
	api := apiclient.New(apiclient.Config{BaseURL: srv.URL, Timeout: time.Second})
	c := NewController(api, yes(), nil)

	require.NoError(t, c.LoadAll(context.Background()))
	require.NoError(t, c.RecordExpense(context.Background(), "コンビニでパン 300円"))

	s := c.State()
	require.Len(t, s.Expenses, 1)
	assert.Equal(t, "300 円", core.FormatYen(s.Expenses[0].Price))
	assert.Equal(t, "food", s.Expenses[0].Category)
}

func TestAgainstRealServer(t *testing.T) {
	ctx := context.Background()
	handler := apphttp.NewServer(":0", services.NewLedgerService(memory.New()), apphttp.Options{}).Handler
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api := apiclient.New(apiclient.Config{BaseURL: srv.URL, Timeout: time.Second, MaxRetries: 1})
	c := NewController(api, yes(), nil)
	require.NoError(t, c.LoadAll(ctx))

	require.NoError(t, c.SetPaydayBalance(ctx, "100,000"))
	before := c.State()

	// Each recorded expense adds exactly one row and lowers the balance by its price.
	for i, text := range []string{"パン 300円", "電車 220", "参考書 3000円"} {
		require.NoError(t, c.RecordExpense(ctx, text), "expense %d", i)
		after := c.State()
		require.Len(t, after.Expenses, len(before.Expenses)+1)
		price := after.Expenses[0].Price
		assert.Equal(t, before.Summary.CurrentBalance-price, after.Summary.CurrentBalance)
		before = after
	}

	// Deleting removes exactly that record.
	target := before.Expenses[1]
	require.NoError(t, c.DeleteExpense(ctx, target.ID))
	after := c.State()
	require.Len(t, after.Expenses, 2)
	for _, e := range after.Expenses {
		assert.NotEqual(t, target.ID, e.ID)
	}
	assert.Equal(t, before.Summary.CurrentBalance+target.Price, after.Summary.CurrentBalance)

	require.NoError(t, c.AddFixedExpense(ctx, "家賃", "80000"))
	s := c.State()
	assert.Equal(t, s.Summary.CurrentBalance-80000, s.Summary.ProjectedNextBalance)

	err := c.DeleteIncome(ctx, 999)
	var he *apiclient.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusNotFound, he.StatusCode)
	assert.Equal(t, fmt.Sprintf("server returned 404: %s", core.ErrNotFound), c.State().Err)
}
