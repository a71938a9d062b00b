package kafka

import (
	"errors"
	"testing"
	"time"
)

func TestReportErrDoesNotBlockWhenFull(t *testing.T) {
	errs := make(chan error, 2)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			reportErr(errs, errors.New("commit failed"))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reportErr blocked on full channel")
	}

	if len(errs) != 2 {
		t.Errorf("buffered errors = %d, want 2", len(errs))
	}
}
