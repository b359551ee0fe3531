package erruser

import (
	"errors"
	"fmt"
	"testing"
)

func TestNewWithoutCause(t *testing.T) {
	t.Parallel()

	err := New("Something went wrong.", nil)
	if err.Error() != "Something went wrong." {
		t.Errorf("Error() = %q, want user message", err.Error())
	}
	if errors.Unwrap(err) != nil {
		t.Errorf("Unwrap() = %v, want nil for cause-less error", errors.Unwrap(err))
	}
}

func TestNewWithCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("dial tcp: connection refused")
	err := New("Could not reach the completion service.", cause)

	if err.Error() != "Could not reach the completion service." {
		t.Errorf("Error() = %q, cause must not appear in the message", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestWrappedCauseMatchesAs(t *testing.T) {
	t.Parallel()

	type fakeErr struct{ error }
	inner := &fakeErr{errors.New("inner")}
	err := fmt.Errorf("outer: %w", New("User message.", inner))

	var got *fakeErr
	if !errors.As(err, &got) {
		t.Error("errors.As failed to find wrapped cause through erruser")
	}
}

func TestNilReceiver(t *testing.T) {
	t.Parallel()

	var e *Err
	if e.Error() != "" {
		t.Errorf("nil receiver Error() = %q, want empty", e.Error())
	}
	if e.Unwrap() != nil {
		t.Error("nil receiver Unwrap() != nil")
	}
}
