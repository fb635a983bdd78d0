package cli

import (
	"context"
	"io"
	"testing"
	"time"
)

func quietSpinner(t *testing.T) {
	t.Helper()
	old := spinnerOut
	spinnerOut = io.Discard
	t.Cleanup(func() { spinnerOut = old })
}

func TestSpinnerStop(t *testing.T) {
	quietSpinner(t)

	s := newSpinnerWithContext(context.Background(), "Testing...")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.Stop()
	s.Stop()

	if s.Cancelled() {
		t.Error("Cancelled() = true after a plain Stop()")
	}
}

func TestSpinnerStopBeforeStart(t *testing.T) {
	quietSpinner(t)

	done := make(chan struct{})
	go func() {
		newSpinnerWithContext(context.Background(), "never started").Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() before Start() blocked")
	}
}

func TestSpinnerContext(t *testing.T) {
	quietSpinner(t)

	tests := []struct {
		name string
		ctx  func() (context.Context, context.CancelFunc)
	}{
		{"cancel", func() (context.Context, context.CancelFunc) { return context.WithCancel(context.Background()) }},
		{"timeout", func() (context.Context, context.CancelFunc) {
			return context.WithTimeout(context.Background(), 20*time.Millisecond)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := tt.ctx()
			s := newSpinnerWithContext(ctx, "working")
			s.Start()
			cancel()
			time.Sleep(50 * time.Millisecond)
			if !s.Cancelled() {
				t.Error("Cancelled() = false after context ended")
			}
			s.Stop()
		})
	}
}
