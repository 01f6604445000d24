package worker

import (
	"runtime"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/pmove/oerror"
)

var workerQueue = make(chan func(), runtime.NumCPU())

func init() {
	for i := 0; i < runtime.NumCPU(); i++ {
		go worker()
	}
}

func worker() {
	defer sentry.Recover()

	for {
		f, ok := <-workerQueue
		if !ok {
			return
		}

		f()
	}
}

// To be used by a function that may be CPU intensive.
func Submit(f func()) {
	workerQueue <- f
}

// Go runs f on the pool. The returned channel receives the error of f once it
// finished. A panic inside f is reported and returned as an error instead of
// taking the worker down.
func Go(f func() error) <-chan error {
	res := make(chan error, 1)
	Submit(func() {
		res <- run(f)
	})
	return res
}

func run(f func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			hub := sentry.CurrentHub().Clone()
			hub.Recover(r)
			hub.Flush(time.Second * 5)
			err = oerror.New("worker: job panicked: %v", r)
		}
	}()
	return f()
}

// Group runs jobs on the pool and collects their errors.
type Group struct {
	wg   sync.WaitGroup
	mu   sync.Mutex
	errs []error
}

// Go submits f. It may block until a worker frees up.
func (g *Group) Go(f func() error) {
	g.wg.Add(1)
	Submit(func() {
		defer g.wg.Done()
		if err := run(f); err != nil {
			g.mu.Lock()
			g.errs = append(g.errs, err)
			g.mu.Unlock()
		}
	})
}

// Wait blocks until every submitted job finished and returns their errors.
func (g *Group) Wait() []error {
	g.wg.Wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.errs
}
