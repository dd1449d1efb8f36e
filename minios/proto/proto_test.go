package proto

import (
	"errors"
	"testing"
)

func TestCallValid(t *testing.T) {
	if !CallCreateProcess.Valid() || !CallCloseMutex.Valid() {
		t.Fatal("expected table entries to be valid")
	}
	for _, c := range []Call{-1, NumCalls, 99} {
		if c.Valid() {
			t.Fatalf("Call(%d).Valid() = true, want false", c)
		}
		if c.String() != "unknown" {
			t.Fatalf("Call(%d).String() = %q, want unknown", c, c.String())
		}
	}
}

func TestResult(t *testing.T) {
	if v, err := Result(3); v != 3 || err != nil {
		t.Fatalf("Result(3) = %d, %v", v, err)
	}
	_, err := Result(int64(ErrAlreadyLocked))
	if !errors.Is(err, ErrAlreadyLocked) {
		t.Fatalf("Result() error = %v, want %v", err, ErrAlreadyLocked)
	}
	if err.Error() != "minios: already_locked" {
		t.Fatalf("Error() = %q", err.Error())
	}
}
