package usecase

import (
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/hoopsight/prospect-calendar/internal/platform/logging"
)

const defaultBackgroundWorkers = 4

// BackgroundRunner executes detached cache-refresh and enrichment tasks on
// a bounded pool. Task failures land on an error channel and are logged,
// never surfaced to the request that scheduled them.
type BackgroundRunner struct {
	pool   *ants.Pool
	errs   chan error
	logger *logging.Logger

	closeOnce sync.Once
	drained   sync.WaitGroup
}

func NewBackgroundRunner(workers int, logger *logging.Logger) (*BackgroundRunner, error) {
	if workers <= 0 {
		workers = defaultBackgroundWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}

	pool, err := ants.NewPool(workers, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create background pool: %w", err)
	}

	r := &BackgroundRunner{
		pool:   pool,
		errs:   make(chan error, workers*4),
		logger: logger,
	}
	r.drained.Add(1)
	go r.drainErrors()
	return r, nil
}

// Submit schedules one task. A saturated pool drops the task with a warn
// log; entries are idempotently recomputable, so a dropped refresh only
// delays convergence until the next trigger.
func (r *BackgroundRunner) Submit(name string, task func() error) {
	err := r.pool.Submit(func() {
		if taskErr := task(); taskErr != nil {
			select {
			case r.errs <- fmt.Errorf("%s: %w", name, taskErr):
			default:
				r.logger.Warn("background error channel full, dropping", "task", name, "error", taskErr.Error())
			}
		}
	})
	if err != nil {
		r.logger.Warn("background task rejected", "task", name, "error", err.Error())
	}
}

func (r *BackgroundRunner) drainErrors() {
	defer r.drained.Done()
	for err := range r.errs {
		r.logger.Error("background task failed", "error", err.Error())
	}
}

// Close stops accepting tasks and drains the error channel. Safe to call
// more than once.
func (r *BackgroundRunner) Close() {
	r.closeOnce.Do(func() {
		r.pool.Release()
		close(r.errs)
		r.drained.Wait()
	})
}
