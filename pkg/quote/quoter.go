package quote

import (
	"context"
	"sync"
	"time"

	"ove-swap/pkg/metrics"

	"github.com/rs/zerolog"
)

const DefaultDebounce = 500 * time.Millisecond

// Quoter rate-limits recomputation with a trailing debounce and applies
// only the result of the most recently issued request. Older results are
// dropped even when they complete last.
type Quoter struct {
	engine   *Engine
	debounce time.Duration
	log      zerolog.Logger
	metrics  *metrics.Metrics

	mu       sync.Mutex
	seq      uint64
	resolved uint64
	timer    *time.Timer
	current  Quote
	onUpdate []func(Quote)

	wg sync.WaitGroup
}

func NewQuoter(engine *Engine, debounce time.Duration, log zerolog.Logger, m *metrics.Metrics) *Quoter {
	if debounce < 0 {
		debounce = 0
	}
	return &Quoter{
		engine:   engine,
		debounce: debounce,
		log:      log.With().Str("component", "quoter").Logger(),
		metrics:  m,
	}
}

// OnUpdate registers fn to run whenever the current quote changes.
func (q *Quoter) OnUpdate(fn func(Quote)) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onUpdate = append(q.onUpdate, fn)
}

// Request schedules a recomputation and returns its sequence number. Empty
// input resolves to the empty quote immediately with no chain call. ctx is
// used for the pricing call once the debounce window elapses.
func (q *Quoter) Request(ctx context.Context, in Inputs) uint64 {
	q.mu.Lock()
	q.seq++
	seq := q.seq
	q.stopTimerLocked()

	if IsEmptyInput(in.Amount) {
		empty := emptyQuote(in)
		hooks := q.applyLocked(seq, empty)
		q.mu.Unlock()
		notify(hooks, empty)
		return seq
	}

	q.wg.Add(1)
	if q.debounce == 0 {
		q.mu.Unlock()
		go q.run(ctx, seq, in)
		return seq
	}
	q.timer = time.AfterFunc(q.debounce, func() {
		q.run(ctx, seq, in)
	})
	q.mu.Unlock()
	return seq
}

// Invalidate drops any pending or in-flight request and resets the current
// quote to the empty quote.
func (q *Quoter) Invalidate() {
	q.mu.Lock()
	q.seq++
	q.stopTimerLocked()
	hooks := q.applyLocked(q.seq, Quote{})
	q.mu.Unlock()
	notify(hooks, Quote{})
}

// Current returns the last applied quote.
func (q *Quoter) Current() Quote {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.current
}

// Busy reports whether the latest request has not resolved yet.
func (q *Quoter) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.resolved != q.seq
}

// Wait blocks until every scheduled and in-flight request has finished.
func (q *Quoter) Wait() {
	q.wg.Wait()
}

func (q *Quoter) run(ctx context.Context, seq uint64, in Inputs) {
	defer q.wg.Done()

	q.metrics.QuoteIssued()
	result := q.engine.Compute(ctx, in)

	q.mu.Lock()
	if seq != q.seq {
		latest := q.seq
		q.mu.Unlock()
		q.metrics.QuoteDropped()
		q.log.Debug().Uint64("seq", seq).Uint64("latest", latest).Msg("discarding superseded quote")
		return
	}
	hooks := q.applyLocked(seq, result)
	q.mu.Unlock()
	notify(hooks, result)
}

func (q *Quoter) applyLocked(seq uint64, result Quote) []func(Quote) {
	q.current = result
	q.resolved = seq
	return append([]func(Quote){}, q.onUpdate...)
}

func (q *Quoter) stopTimerLocked() {
	if q.timer != nil && q.timer.Stop() {
		// The callback never ran, so it never reached wg.Done.
		q.wg.Done()
	}
	q.timer = nil
}

func notify(hooks []func(Quote), result Quote) {
	for _, h := range hooks {
		h(result)
	}
}
