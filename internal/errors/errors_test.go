package errors

import (
	"bytes"
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(EUsage, "test message")

	if err.Error() != "E_USAGE: test message" {
		t.Errorf("Error() = %q, want %q", err.Error(), "E_USAGE: test message")
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying")
	err := Wrap(EReadFailed, "wrapped message", cause)

	if err.Error() != "E_READ_FAILED: wrapped message" {
		t.Errorf("Error() = %q, want %q", err.Error(), "E_READ_FAILED: wrapped message")
	}

	var te *TraceError
	if !errors.As(err, &te) {
		t.Fatal("errors.As failed")
	}
	if te.Cause != cause {
		t.Error("Unwrap did not return cause")
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is should see the cause")
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil error", nil, ""},
		{"trace error", New(EUsage, "x"), EUsage},
		{"wrapped trace error", Wrap(ESectionsMissing, "y", errors.New("z")), ESectionsMissing},
		{"fmt wrapped", fmt.Errorf("log a: %w", New(EPIDMismatch, "pid")), EPIDMismatch},
		{"non-trace error", errors.New("plain"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetCode(tt.err)
			if got != tt.want {
				t.Errorf("GetCode() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"E_USAGE", New(EUsage, "x"), 2},
		{"E_SECTIONS_MISSING", New(ESectionsMissing, "x"), 1},
		{"non-trace error", errors.New("x"), 1},
		{"explicit exit code", WithExitCode(New(EUsage, "x"), 3), 3},
		{"wrapped explicit exit code", fmt.Errorf("outer: %w", WithExitCode(errors.New("x"), 4)), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExitCode(tt.err)
			if got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPrint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"E_USAGE", New(EUsage, "bad args"), "error_code: E_USAGE\nbad args\n"},
		{"E_NO_TRACE_DATA", New(ENoTraceData, "no TRACE: marker"), "error_code: E_NO_TRACE_DATA\nno TRACE: marker\n"},
		{"plain", errors.New("plain"), "plain\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Print(&buf, tt.err)
			got := buf.String()
			if got != tt.want {
				t.Errorf("Print() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewWithDetails(t *testing.T) {
	details := map[string]string{"subject": "app"}
	err := NewWithDetails(ENoRelevantEvents, "no events", details)

	var te *TraceError
	if !errors.As(err, &te) {
		t.Fatal("errors.As failed")
	}
	if te.Code != ENoRelevantEvents {
		t.Errorf("Code = %q, want %q", te.Code, ENoRelevantEvents)
	}
	if te.Details["subject"] != "app" {
		t.Errorf("Details[subject] = %q, want %q", te.Details["subject"], "app")
	}
}

func TestNewWithDetails_NilDetails(t *testing.T) {
	err := NewWithDetails(EUsage, "test", nil)

	te, ok := AsTraceError(err)
	if !ok {
		t.Fatal("AsTraceError failed")
	}
	if te.Details != nil {
		t.Errorf("Details should be nil, got %v", te.Details)
	}
}

func TestNewWithDetails_Copied(t *testing.T) {
	details := map[string]string{"key": "value"}
	err := NewWithDetails(EUsage, "test", details)

	details["key"] = "modified"

	te, _ := AsTraceError(err)
	if te.Details["key"] != "value" {
		t.Errorf("Details should be copied")
	}
}

func TestWrapWithDetails(t *testing.T) {
	cause := errors.New("underlying")
	err := WrapWithDetails(EInvalidProfile, "wrapped", cause, map[string]string{"profile": "p.yaml"})

	te, ok := AsTraceError(err)
	if !ok {
		t.Fatal("AsTraceError failed")
	}
	if te.Cause != cause {
		t.Error("Cause not set")
	}
	if te.Details["profile"] != "p.yaml" {
		t.Errorf("Details[profile] = %q, want %q", te.Details["profile"], "p.yaml")
	}
}

func TestAsTraceError(t *testing.T) {
	t.Run("direct", func(t *testing.T) {
		te, ok := AsTraceError(New(EUsage, "test"))
		if !ok || te.Code != EUsage {
			t.Errorf("AsTraceError() = (%v, %v)", te, ok)
		}
	})

	t.Run("non trace error", func(t *testing.T) {
		te, ok := AsTraceError(errors.New("regular error"))
		if ok || te != nil {
			t.Error("should return (nil, false) for non-TraceError")
		}
	})

	t.Run("nil error", func(t *testing.T) {
		te, ok := AsTraceError(nil)
		if ok || te != nil {
			t.Error("should return (nil, false) for nil")
		}
	})
}

func TestVerificationCodesStable(t *testing.T) {
	want := map[Code]string{
		ENoRelevantEvents:  "E_NO_RELEVANT_EVENTS",
		ESectionsMissing:   "E_SECTIONS_MISSING",
		EPIDMismatch:       "E_PID_MISMATCH",
		EInvalidEvent:      "E_INVALID_EVENT",
		ENoTraceData:       "E_NO_TRACE_DATA",
		EUnexpectedOutput:  "E_UNEXPECTED_OUTPUT",
		ECategoriesMissing: "E_CATEGORIES_MISSING",
	}
	for code, s := range want {
		if string(code) != s {
			t.Errorf("code = %q, want %q", code, s)
		}
	}
}
