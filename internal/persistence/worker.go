package persistence

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"gasmap/internal/domain"
)

// Observer is told about every finished job.
type Observer interface {
	JobFinished(kind string, d time.Duration, err error)
}

// Worker runs at most one export and one import at a time, each on its own
// goroutine. Jobs cannot be cancelled once started.
type Worker struct {
	store    Store
	exports  *semaphore.Weighted
	imports  *semaphore.Weighted
	observer Observer
	wg       sync.WaitGroup
}

// WorkerOption configures a Worker.
type WorkerOption func(*Worker)

// WithObserver reports job outcomes to o.
func WithObserver(o Observer) WorkerOption {
	return func(w *Worker) {
		w.observer = o
	}
}

// NewWorker creates a worker over store.
func NewWorker(store Store, opts ...WorkerOption) *Worker {
	w := &Worker{
		store:   store,
		exports: semaphore.NewWeighted(1),
		imports: semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Export writes doc to location. doc must not be shared with the caller
// afterwards. done runs on the worker goroutine.
func (w *Worker) Export(doc *domain.Document, location string, done func(error)) error {
	if !w.exports.TryAcquire(1) {
		return domain.ErrJobInFlight
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		start := time.Now()
		err := w.store.Save(context.Background(), location, doc)
		w.finish("export", location, start, err)
		w.exports.Release(1)
		done(err)
	}()
	return nil
}

// Import reads the document at location. done runs on the worker goroutine
// and must hand the document back to the registry owner.
func (w *Worker) Import(location string, done func(*domain.Document, error)) error {
	if !w.imports.TryAcquire(1) {
		return domain.ErrJobInFlight
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		start := time.Now()
		doc, err := w.store.Load(context.Background(), location)
		w.finish("import", location, start, err)
		w.imports.Release(1)
		done(doc, err)
	}()
	return nil
}

func (w *Worker) finish(kind, location string, start time.Time, err error) {
	d := time.Since(start)
	if err != nil {
		log.Printf("%s %s failed after %v: %v", kind, location, d, err)
	} else {
		log.Printf("%s %s finished in %v", kind, location, d)
	}
	if w.observer != nil {
		w.observer.JobFinished(kind, d, err)
	}
}

// Wait blocks until every started job has called its done function.
func (w *Worker) Wait() {
	w.wg.Wait()
}
