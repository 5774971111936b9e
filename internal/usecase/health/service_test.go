package health

import (
	"context"
	"errors"
	"testing"
	"time"
)

type mockPinger struct {
	pingFn func(ctx context.Context) error
}

func (m *mockPinger) Ping(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

func TestCheck_AllHealthy(t *testing.T) {
	gate := NewGate(time.Minute)
	s := New(&mockPinger{}, &mockPinger{}, gate)

	report := s.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("status = %v, want healthy", report.Status)
	}
	if report.Checks["index"] != CheckOK || report.Checks["database"] != CheckOK {
		t.Errorf("unexpected checks: %v", report.Checks)
	}
}

func TestCheck_IndexFailureDegradesAndOpensGate(t *testing.T) {
	gate := NewGate(time.Minute)
	idx := &mockPinger{pingFn: func(context.Context) error { return errors.New("down") }}
	s := New(idx, &mockPinger{}, gate)

	report := s.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("status = %v, want degraded", report.Status)
	}
	if report.Checks["index"] != CheckError {
		t.Errorf("unexpected checks: %v", report.Checks)
	}
	if gate.IsHealthy() {
		t.Error("failed index probe must open the gate")
	}
}

func TestCheck_IndexRecoveryClosesGate(t *testing.T) {
	gate := NewGate(time.Hour)
	gate.ReportFailure()

	s := New(&mockPinger{}, nil, gate)
	report := s.Check(context.Background())
	if report.Status != Healthy {
		t.Errorf("status = %v, want healthy", report.Status)
	}
	if !gate.IsHealthy() {
		t.Error("successful index probe must close the gate")
	}
}

func TestCheck_DBFailureDoesNotTouchGate(t *testing.T) {
	gate := NewGate(time.Minute)
	dead := &mockPinger{pingFn: func(context.Context) error { return errors.New("down") }}
	s := New(&mockPinger{}, dead, gate)

	report := s.Check(context.Background())
	if report.Status != Degraded {
		t.Errorf("status = %v, want degraded", report.Status)
	}
	if !gate.IsHealthy() {
		t.Error("database failures must not open the index gate")
	}
}
