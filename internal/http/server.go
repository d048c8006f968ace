// Package http serves the ledger as a JSON REST API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"moneylite/internal/cache"
	"moneylite/internal/core"
	applog "moneylite/internal/log"
	"moneylite/internal/middleware/ratelimit"
	"moneylite/internal/middleware/security"
	"moneylite/internal/middleware/trace"
)

// Ledger is the service the handlers drive. *services.LedgerService
// satisfies it.
type Ledger interface {
	RecordExpense(ctx context.Context, text string) (core.ExpenseRecord, error)
	ListExpenses(ctx context.Context) ([]core.ExpenseRecord, error)
	DeleteExpense(ctx context.Context, id int64) error
	RecordIncome(ctx context.Context, text string) (core.IncomeRecord, error)
	ListIncomes(ctx context.Context) ([]core.IncomeRecord, error)
	DeleteIncome(ctx context.Context, id int64) error
	AddFixedExpense(ctx context.Context, name string, amount int64) (core.FixedExpenseRecord, error)
	ListFixedExpenses(ctx context.Context) ([]core.FixedExpenseRecord, error)
	DeleteFixedExpense(ctx context.Context, id int64) error
	SetPaydayBalance(ctx context.Context, balance int64) (core.Payday, error)
	Summary(ctx context.Context) (core.SummarySnapshot, error)
}

// Options tunes a Server. A zero RequestsPerMinute means 60; a zero
// SummaryCacheTTL disables the summary cache.
type Options struct {
	CORSOrigins       []string
	SummaryCacheTTL   time.Duration
	RequestsPerMinute int
	Logger            *applog.Logger
}

const summaryKey = "summary"

type Server struct {
	http.Server
	ledger Ledger
	logger *applog.Logger

	limiter      *ratelimit.Limiter
	tracer       *trace.Middleware
	summaryCache *cache.LRUCache[core.SummarySnapshot]
	cacheManager *cache.Manager

	// mutations serialises writes against summary cache refills so a
	// stale snapshot is never stored after an invalidation.
	mutations    sync.RWMutex
	shutdownOnce sync.Once
}

func NewServer(addr string, ledger Ledger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}

	s := &Server{
		ledger:       ledger,
		logger:       logger.WithComponent(applog.ComponentHTTP),
		limiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RequestsPerMinute}),
		tracer:       trace.NewMiddleware(logger, security.ExtractClientIP),
		summaryCache: cache.NewLRUCache[core.SummarySnapshot](1, opts.SummaryCacheTTL),
		cacheManager: cache.NewManager(logger),
	}
	s.cacheManager.Register(s.summaryCache)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("GET /expenses", s.handleListExpenses)
	mux.HandleFunc("POST /expenses", s.handleCreateExpense)
	mux.HandleFunc("DELETE /expenses/{id}", s.handleDeleteExpense)

	mux.HandleFunc("GET /incomes", s.handleListIncomes)
	mux.HandleFunc("POST /incomes", s.handleCreateIncome)
	mux.HandleFunc("DELETE /incomes/{id}", s.handleDeleteIncome)

	mux.HandleFunc("GET /fixed_expenses", s.handleListFixedExpenses)
	mux.HandleFunc("POST /fixed_expenses", s.handleCreateFixedExpense)
	mux.HandleFunc("DELETE /fixed_expenses/{id}", s.handleDeleteFixedExpense)

	mux.HandleFunc("GET /summary", s.handleSummary)
	mux.HandleFunc("POST /balance", s.handleSetBalance)

	onLimit := func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			applog.FieldClientIP, security.ExtractClientIP(r),
			applog.FieldPath, r.URL.Path)
		writeError(w, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
	}

	// Outermost first: trace, CORS, headers, rate limit.
	var h http.Handler = mux
	h = s.limiter.Middleware(security.ExtractClientIP, onLimit, http.MethodPost)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = security.NewCORS(opts.CORSOrigins).Middleware(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// StartBackground starts the cache sweeper. The HTTP listener itself is
// started by the caller with ListenAndServe.
func (s *Server) StartBackground(ctx context.Context) {
	s.cacheManager.Start(ctx, time.Minute)
}

// Stats are the request, rate limit and summary cache counters since
// start.
type Stats struct {
	Requests       int64
	ServerErrors   int64
	RateLimited    int64
	TrackedClients int64
	SummaryCache   cache.Stats
}

func (s *Server) Stats() Stats {
	tm := s.tracer.GetMetrics()
	lm := s.limiter.GetMetrics()
	return Stats{
		Requests:       tm.TotalRequests,
		ServerErrors:   tm.ServerErrors,
		RateLimited:    lm.TotalHits,
		TrackedClients: lm.ClientCount,
		SummaryCache:   s.summaryCache.Stats(),
	}
}

// Shutdown stops background work and then the HTTP server, logging the
// final counters once.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		st := s.Stats()
		s.logger.InfoContext(ctx, "HTTP server stats",
			"requests", st.Requests,
			"server_errors", st.ServerErrors,
			"rate_limited", st.RateLimited,
			"tracked_clients", st.TrackedClients,
			"summary_cache_hits", st.SummaryCache.Hits,
			"summary_cache_misses", st.SummaryCache.Misses)
		s.limiter.Stop()
		s.cacheManager.Stop()
	})
	return s.Server.Shutdown(ctx)
}

// invalidate drops the cached summary; call with s.mutations held.
func (s *Server) invalidate() {
	s.summaryCache.Purge()
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
