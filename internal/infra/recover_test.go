package infra

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestGoRecoverableRestartsAfterPanic(t *testing.T) {
	t.Parallel()

	done := make(chan struct{})
	var runs int32
	GoRecoverable(2, "flaky", func() {
		if atomic.AddInt32(&runs, 1) < 3 {
			panic("boom")
		}
		close(done)
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("job was not restarted, runs=%d", atomic.LoadInt32(&runs))
	}
	if got := atomic.LoadInt32(&runs); got != 3 {
		t.Fatalf("unexpected run count: %d", got)
	}
}
