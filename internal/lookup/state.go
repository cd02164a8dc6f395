package lookup

import (
	"encoding/json"

	"github.com/seenimoa/cryptodetails/pkg/models"
)

// Phase tags which variant a State holds.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseFailed  Phase = "failed"
)

// State is the published UI state: exactly one of Idle, Loading, Loaded(quote)
// or Failed(message). Fields are only reachable through accessors, and the
// constructors below set the payload that belongs to each phase and nothing
// else. The zero value is Idle.
type State struct {
	phase  Phase
	seq    uint64
	symbol string
	quote  *models.CryptoQuote
	err    *Error
	stale  bool
}

func idleState() State { return State{phase: PhaseIdle} }

func loadingState(seq uint64, symbol string) State {
	return State{phase: PhaseLoading, seq: seq, symbol: symbol}
}

func loadedState(seq uint64, symbol string, q *models.CryptoQuote) State {
	cp := *q
	return State{phase: PhaseLoaded, seq: seq, symbol: symbol, quote: &cp}
}

func failedState(seq uint64, symbol string, err *Error) State {
	return State{phase: PhaseFailed, seq: seq, symbol: symbol, err: err}
}

// Phase returns the state's variant.
func (s State) Phase() Phase {
	if s.phase == "" {
		return PhaseIdle
	}
	return s.phase
}

// Seq returns the request token that produced this state (0 for Idle).
func (s State) Seq() uint64 { return s.seq }

// Symbol returns the trimmed query the state belongs to.
func (s State) Symbol() string { return s.symbol }

// Loading reports whether a lookup is in flight.
func (s State) Loading() bool { return s.phase == PhaseLoading }

// Quote returns a copy of the loaded quote. ok is false in every other phase.
func (s State) Quote() (q models.CryptoQuote, ok bool) {
	if s.phase != PhaseLoaded || s.quote == nil {
		return models.CryptoQuote{}, false
	}
	return *s.quote, true
}

// Err returns the failure for Failed states and nil otherwise.
func (s State) Err() error {
	if s.phase != PhaseFailed || s.err == nil {
		return nil
	}
	return s.err
}

// Message returns the user-facing failure message, or "" outside Failed.
func (s State) Message() string {
	if s.phase != PhaseFailed || s.err == nil {
		return ""
	}
	return s.err.Message()
}

// Stale reports that this terminal state was superseded by a newer
// submission and was never published.
func (s State) Stale() bool { return s.stale }

// StateView is the wire form of a State.
type StateView struct {
	Phase   Phase               `json:"phase"`
	Seq     uint64              `json:"seq"`
	Symbol  string              `json:"symbol,omitempty"`
	Loading bool                `json:"loading"`
	Quote   *models.CryptoQuote `json:"quote,omitempty"`
	Error   string              `json:"error,omitempty"`
	Kind    string              `json:"kind,omitempty"`
	Stale   bool                `json:"stale,omitempty"`
}

// View flattens the state for serialization.
func (s State) View() StateView {
	v := StateView{
		Phase:   s.Phase(),
		Seq:     s.seq,
		Symbol:  s.symbol,
		Loading: s.Loading(),
		Stale:   s.stale,
	}
	if q, ok := s.Quote(); ok {
		v.Quote = &q
	}
	if s.phase == PhaseFailed && s.err != nil {
		v.Error = s.err.Message()
		v.Kind = s.err.Kind.String()
	}
	return v
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.View())
}
