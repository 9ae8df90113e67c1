package domain

import "testing"

func TestJobSignal_None(t *testing.T) {
	if !SignalNone.IsNone() {
		t.Fatal("expected SignalNone.IsNone() to be true")
	}
	if SignalNone.IsPaused() {
		t.Fatal("expected SignalNone.IsPaused() to be false")
	}
	if _, ok := SignalNone.IsEarlyFinish(); ok {
		t.Fatal("expected SignalNone.IsEarlyFinish() to be false")
	}
}

func TestJobSignal_EarlyFinish(t *testing.T) {
	s := SignalEarlyFinish("no files found")
	reason, ok := s.IsEarlyFinish()
	if !ok {
		t.Fatal("expected IsEarlyFinish to be true")
	}
	if reason != "no files found" {
		t.Fatalf("expected reason %q, got %q", "no files found", reason)
	}
	if s.IsNone() || s.IsPaused() {
		t.Fatal("expected EarlyFinish signal to not also be None or Paused")
	}
}

func TestJobSignal_Paused(t *testing.T) {
	if !SignalPaused.IsPaused() {
		t.Fatal("expected SignalPaused.IsPaused() to be true")
	}
	if SignalPaused.IsNone() {
		t.Fatal("expected SignalPaused.IsNone() to be false")
	}
}
