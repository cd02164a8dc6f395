// Package lookup implements the lookup-then-quote flow: a free-text symbol is
// resolved to a provider identifier, the latest quote for that identifier is
// fetched, and every transition is published as a State.
package lookup

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/seenimoa/cryptodetails/pkg/models"
)

// Source is the market-data backend the flow talks to.
type Source interface {
	// ResolveIdentifier returns the assets matching a lowercased symbol in
	// provider response order.
	ResolveIdentifier(ctx context.Context, symbol string) ([]models.CryptoAsset, error)
	// FetchQuote returns the latest quote for a provider identifier.
	FetchQuote(ctx context.Context, id int) (*models.CryptoQuote, error)
}

// Recorder receives one observation per finished lookup.
type Recorder interface {
	ObserveLookup(outcome string, elapsed time.Duration, stale bool)
}

// Option configures a Flow.
type Option func(*Flow)

// WithLogger sets the logger used for flow events.
func WithLogger(l zerolog.Logger) Option {
	return func(f *Flow) { f.log = l }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(f *Flow) { f.rec = r }
}

type subscriber struct {
	id int
	fn func(State)
}

// Flow owns the published State. It is safe for concurrent use.
//
// Every Submit takes a new monotonically increasing token. Only the holder of
// the latest token may publish, so a slow response from an older submission
// can never overwrite the state of a newer one.
type Flow struct {
	source Source
	log    zerolog.Logger
	rec    Recorder

	mu       sync.Mutex
	seq      uint64
	state    State
	subs     []subscriber
	nextSub  int
	pending  []State
	draining bool
}

// NewFlow creates an idle flow backed by source.
func NewFlow(source Source, opts ...Option) *Flow {
	f := &Flow{
		source: source,
		log:    zerolog.Nop(),
		state:  idleState(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// State returns the current published state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Subscribe registers fn to receive every published state in publish order.
// fn runs outside the flow's lock and may call State or Submit.
func (f *Flow) Subscribe(fn func(State)) (unsubscribe func()) {
	f.mu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs = append(f.subs, subscriber{id: id, fn: fn})
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			for i, s := range f.subs {
				if s.id == id {
					f.subs = append(f.subs[:i:i], f.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// Submit runs one lookup for query and blocks until both round trips finish.
//
// A blank query returns a *Error of KindInvalidInput without touching the
// network or the published state. Every other outcome, including provider
// failures, is reported through the returned State with a nil error. If a
// newer Submit started while this one was in flight, the returned State has
// Stale set and was not published.
func (f *Flow) Submit(ctx context.Context, query string) (State, error) {
	symbol := strings.TrimSpace(query)
	if symbol == "" {
		f.log.Debug().Str("query", query).Msg("rejected blank query")
		return f.State(), &Error{Kind: KindInvalidInput}
	}

	start := time.Now()
	seq := f.begin(symbol)
	f.log.Debug().Uint64("seq", seq).Str("symbol", symbol).Msg("lookup started")

	final := f.run(ctx, seq, symbol)
	published := f.commit(seq, final)
	if !published {
		final.stale = true
	}

	elapsed := time.Since(start)
	outcome := string(PhaseLoaded)
	if final.err != nil {
		outcome = final.err.Kind.String()
	}
	if f.rec != nil {
		f.rec.ObserveLookup(outcome, elapsed, final.stale)
	}

	ev := f.log.Info()
	if final.err != nil {
		ev = f.log.Warn().Err(final.err.Err)
	}
	if final.stale {
		ev = f.log.Debug()
	}
	ev.Uint64("seq", seq).
		Str("symbol", symbol).
		Str("outcome", outcome).
		Bool("stale", final.stale).
		Dur("elapsed", elapsed).
		Msg("lookup finished")

	return final, nil
}

// run performs the two sequential calls and returns the terminal state.
// The map endpoint receives the lowercased symbol; only the first match is used.
func (f *Flow) run(ctx context.Context, seq uint64, symbol string) State {
	assets, err := f.source.ResolveIdentifier(ctx, strings.ToLower(symbol))
	if err != nil {
		return failedState(seq, symbol, classify(symbol, err))
	}
	if len(assets) == 0 {
		return failedState(seq, symbol, &Error{Kind: KindNotFound, Symbol: symbol})
	}

	id := assets[0].ID
	quote, err := f.source.FetchQuote(ctx, id)
	if err != nil {
		return failedState(seq, symbol, classify(symbol, err))
	}
	if quote == nil {
		return failedState(seq, symbol, &Error{Kind: KindMalformedResponse, Symbol: symbol})
	}
	return loadedState(seq, symbol, quote)
}

// begin allocates a token and publishes Loading for it.
func (f *Flow) begin(symbol string) uint64 {
	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.setLocked(loadingState(seq, symbol))
	f.flushLocked()
	return seq
}

// commit publishes s if seq is still the latest token.
func (f *Flow) commit(seq uint64, s State) bool {
	f.mu.Lock()
	if seq != f.seq {
		f.mu.Unlock()
		return false
	}
	f.setLocked(s)
	f.flushLocked()
	return true
}

func (f *Flow) setLocked(s State) {
	f.state = s
	f.pending = append(f.pending, s)
}

// flushLocked delivers pending states to subscribers and releases f.mu.
// A single goroutine drains at a time so subscribers see states in publish
// order; concurrent publishers hand their states to the active drainer.
func (f *Flow) flushLocked() {
	if f.draining {
		f.mu.Unlock()
		return
	}
	f.draining = true
	for len(f.pending) > 0 {
		batch := f.pending
		f.pending = nil
		subs := make([]subscriber, len(f.subs))
		copy(subs, f.subs)
		f.mu.Unlock()

		for _, s := range batch {
			for _, sub := range subs {
				sub.fn(s)
			}
		}

		f.mu.Lock()
	}
	f.draining = false
	f.mu.Unlock()
}
