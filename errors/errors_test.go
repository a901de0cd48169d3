package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Kind:   KindPlan,
				Op:     "query",
				Path:   []string{"nums", "score"},
				Detail: "column not found",
			},
			contains: []string{"[plan]", "query", "nums.score", "column not found"},
		},
		{
			name:     "minimal error",
			err:      &Error{Kind: KindParse},
			contains: []string{"[parse]"},
		},
		{
			name: "error with cause",
			err: &Error{
				Kind:   KindIO,
				Op:     "query",
				Detail: "source read failed",
				Cause:  stderrors.New("connection refused"),
			},
			contains: []string{"[io]", "source read failed", "caused by", "connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := Wrap(KindIO, "query", cause, "read failed")

	if !stderrors.Is(err, cause) {
		t.Error("errors.Is did not find cause through Unwrap")
	}
}

func TestError_Is_MatchesByKind(t *testing.T) {
	err := Plan("query", "table %q not found", "missing")

	if !stderrors.Is(err, &Error{Kind: KindPlan}) {
		t.Error("expected match against plan sentinel")
	}
	if stderrors.Is(err, &Error{Kind: KindParse}) {
		t.Error("unexpected match against parse sentinel")
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"direct", Parse("query", "bad token"), KindParse},
		{"wrapped in fmt", fmt.Errorf("outer: %w", Disposed("query")), KindDisposed},
		{"plain error", stderrors.New("mystery"), KindInternal},
		{"io with cause", IO("query", stderrors.New("eof")), KindIO},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBuilder(t *testing.T) {
	cause := stderrors.New("tcp timeout")
	err := New(KindIO).
		Op("query").
		Path("events").
		Detail("fetching %s", "https://example.com/events.csv").
		Cause(cause).
		Build()

	if err.Kind != KindIO {
		t.Errorf("Kind = %q, want %q", err.Kind, KindIO)
	}
	if err.Op != "query" {
		t.Errorf("Op = %q", err.Op)
	}
	if err.Detail != "fetching https://example.com/events.csv" {
		t.Errorf("Detail = %q", err.Detail)
	}
	if !stderrors.Is(err, cause) {
		t.Error("cause not wrapped")
	}
}

func TestIsKind(t *testing.T) {
	if !IsKind(Disposed("query"), KindDisposed) {
		t.Error("IsKind(disposed) = false")
	}
	if IsKind(nil, KindDisposed) {
		t.Error("IsKind(nil) = true")
	}
}
