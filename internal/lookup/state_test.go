package lookup

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestZeroStateIsIdle(t *testing.T) {
	var s State
	if s.Phase() != PhaseIdle {
		t.Errorf("zero State phase: got %s", s.Phase())
	}
	if s.Err() != nil || s.Message() != "" {
		t.Error("zero State should carry no error")
	}
}

func TestStateJSON(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  map[string]any
	}{
		{
			name:  "loading",
			state: loadingState(3, "ETH"),
			want:  map[string]any{"phase": "loading", "seq": float64(3), "symbol": "ETH", "loading": true},
		},
		{
			name:  "failed",
			state: failedState(4, "XYZ", &Error{Kind: KindNotFound, Symbol: "XYZ"}),
			want:  map[string]any{"phase": "failed", "seq": float64(4), "symbol": "XYZ", "loading": false, "error": MsgNotFound, "kind": "not_found"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := json.Marshal(tt.state)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			var got map[string]any
			if err := json.Unmarshal(b, &got); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Errorf("keys: got %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s: got %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestLoadedViewCarriesQuote(t *testing.T) {
	v := loadedState(1, "BTC", btcQuote()).View()
	if v.Quote == nil || v.Quote.Price != 65000 {
		t.Fatalf("quote: got %+v", v.Quote)
	}
	if v.Error != "" || v.Kind != "" {
		t.Errorf("loaded view should have no error, got %q/%q", v.Error, v.Kind)
	}
}

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err  *Error
		want string
	}{
		{&Error{Kind: KindInvalidInput}, "lookup: invalid_input"},
		{&Error{Kind: KindNotFound, Symbol: "abc"}, `lookup "abc": not_found`},
		{&Error{Kind: KindProviderUnreachable, Symbol: "btc", Err: cause}, `lookup "btc": unreachable: boom`},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error(): got %q, want %q", got, tt.want)
		}
	}
}

func TestKindMessages(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindInvalidInput, MsgInvalidInput},
		{KindNotFound, MsgNotFound},
		{KindProviderUnreachable, MsgUnreachable},
		{KindMalformedResponse, MsgUnreachable},
	}
	for _, tt := range tests {
		if got := tt.kind.Message(); got != tt.want {
			t.Errorf("%s.Message(): got %q, want %q", tt.kind, got, tt.want)
		}
	}
}
