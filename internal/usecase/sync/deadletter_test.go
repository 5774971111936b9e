package sync

import "testing"

func TestDeadLetter_ExhaustsAfterMaxAttempts(t *testing.T) {
	d := newDeadLetter(2)

	if d.Exhausted("a", 1) {
		t.Error("untracked document must not be exhausted")
	}
	if got := d.RecordFailure("a", 1); got != 1 {
		t.Errorf("attempts = %d, want 1", got)
	}
	if d.Exhausted("a", 1) {
		t.Error("one attempt of two must not exhaust")
	}
	if got := d.RecordFailure("a", 1); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
	if !d.Exhausted("a", 1) {
		t.Error("two attempts of two must exhaust")
	}
}

func TestDeadLetter_SeqChangeResets(t *testing.T) {
	d := newDeadLetter(1)
	d.RecordFailure("a", 1)
	if !d.Exhausted("a", 1) {
		t.Fatal("expected exhausted at seq 1")
	}

	if d.Exhausted("a", 2) {
		t.Error("a new seq must get a fresh budget")
	}
	if got := d.RecordFailure("a", 2); got != 1 {
		t.Errorf("attempts after seq change = %d, want 1", got)
	}
}

func TestDeadLetter_ResolveClears(t *testing.T) {
	d := newDeadLetter(1)
	d.RecordFailure("a", 1)
	d.Resolve("a")

	if d.Exhausted("a", 1) {
		t.Error("resolved document must not stay exhausted")
	}
	if d.Len() != 0 {
		t.Errorf("len = %d, want 0", d.Len())
	}
}

func TestDeadLetter_DefaultMaxAttempts(t *testing.T) {
	d := newDeadLetter(0)
	if d.maxAttempts != DefaultMaxAttempts {
		t.Errorf("maxAttempts = %d, want %d", d.maxAttempts, DefaultMaxAttempts)
	}
}
