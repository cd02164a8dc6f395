package lookup

import (
	"errors"
	"fmt"

	"github.com/seenimoa/cryptodetails/internal/provider"
)

// Kind classifies why a lookup did not produce a quote.
type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindNotFound
	KindProviderUnreachable
	KindMalformedResponse
)

// User-facing messages. Unreachable and malformed share one message.
const (
	MsgInvalidInput = "please enter a valid asset name"
	MsgNotFound     = "asset not found"
	MsgUnreachable  = "could not reach the data provider; verify the asset name"
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindNotFound:
		return "not_found"
	case KindProviderUnreachable:
		return "unreachable"
	case KindMalformedResponse:
		return "malformed"
	default:
		return "unknown"
	}
}

// Message returns the text shown to the user for this kind.
func (k Kind) Message() string {
	switch k {
	case KindInvalidInput:
		return MsgInvalidInput
	case KindNotFound:
		return MsgNotFound
	default:
		return MsgUnreachable
	}
}

// Error is a classified lookup failure. Err holds the underlying cause, if any.
type Error struct {
	Kind   Kind
	Symbol string
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("lookup %q: %s: %v", e.Symbol, e.Kind, e.Err)
	case e.Symbol != "":
		return fmt.Sprintf("lookup %q: %s", e.Symbol, e.Kind)
	default:
		return "lookup: " + e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Message returns the user-facing message.
func (e *Error) Message() string { return e.Kind.Message() }

// IsKind reports whether err is a *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var le *Error
	return errors.As(err, &le) && le.Kind == kind
}

// classify maps a source failure onto the taxonomy. Anything that is not a
// decoding problem is treated as the provider being unreachable.
func classify(symbol string, err error) *Error {
	var malformed *provider.ErrMalformedResponse
	if errors.As(err, &malformed) {
		return &Error{Kind: KindMalformedResponse, Symbol: symbol, Err: err}
	}
	return &Error{Kind: KindProviderUnreachable, Symbol: symbol, Err: err}
}
