package usecase

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestBackgroundRunner_RunsSubmittedTasks(t *testing.T) {
	runner, err := NewBackgroundRunner(2, nil)
	if err != nil {
		t.Fatalf("create runner: %v", err)
	}
	defer runner.Close()

	var ran atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		runner.Submit("count", func() error {
			defer wg.Done()
			ran.Add(1)
			return nil
		})
	}
	wg.Wait()

	if got := ran.Load(); got != 8 {
		t.Fatalf("expected 8 tasks to run, got %d", got)
	}
}

func TestBackgroundRunner_FailureDoesNotStopLaterTasks(t *testing.T) {
	runner, err := NewBackgroundRunner(1, nil)
	if err != nil {
		t.Fatalf("create runner: %v", err)
	}

	var wg sync.WaitGroup
	wg.Add(2)
	runner.Submit("failing refresh", func() error {
		defer wg.Done()
		return errors.New("upstream down")
	})

	var ran atomic.Bool
	runner.Submit("follow-up", func() error {
		defer wg.Done()
		ran.Store(true)
		return nil
	})
	wg.Wait()

	// Close drains the error channel; it must return even after a failure.
	runner.Close()
	runner.Close()

	if !ran.Load() {
		t.Fatal("expected the task after a failure to still run")
	}
}
