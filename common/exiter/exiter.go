// Package exiter broadcasts one shutdown signal to every long running loop
// of the node and waits for them to finish.
package exiter

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/hacash/node/log"
)

const pollInterval = 333 * time.Millisecond

// Exiter owns the shutdown signal and counts the workers still running.
type Exiter struct {
	quit chan struct{}
	once sync.Once
	jobs atomic.Int64
}

// New creates an exiter with no workers.
func New() *Exiter {
	return &Exiter{quit: make(chan struct{})}
}

// Worker registers a new running job.
func (e *Exiter) Worker() *Worker {
	e.jobs.Add(1)
	return &Worker{exiter: e}
}

// Exit broadcasts the shutdown signal. Later calls do nothing.
func (e *Exiter) Exit() {
	e.once.Do(func() { close(e.quit) })
}

// Exiting reports whether Exit was called.
func (e *Exiter) Exiting() bool {
	select {
	case <-e.quit:
		return true
	default:
		return false
	}
}

// Jobs is the number of workers that did not end yet.
func (e *Exiter) Jobs() int64 { return e.jobs.Load() }

// Wait blocks until every worker ended.
func (e *Exiter) Wait() {
	for e.jobs.Load() > 0 {
		time.Sleep(pollInterval)
	}
}

// ListenSignal calls Exit on SIGINT or SIGTERM.
func (e *Exiter) ListenSignal(logger *log.Logger) {
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigc)
		select {
		case sig := <-sigc:
			logger.WithField("signal", sig.String()).Info("Got interrupt, shutting down...")
			e.Exit()
		case <-e.quit:
		}
	}()
}

// Worker is the token of one running job.
type Worker struct {
	exiter *Exiter
	ended  atomic.Bool
}

// Fork registers another job on the same exiter.
func (w *Worker) Fork() *Worker {
	if w.ended.Load() {
		panic("cannot fork ended worker")
	}
	return w.exiter.Worker()
}

// Wait is closed once the shutdown signal is sent.
func (w *Worker) Wait() <-chan struct{} { return w.exiter.quit }

// Quit reports whether the job should stop, and ends it if so.
func (w *Worker) Quit() bool {
	if w.exiter.Exiting() {
		w.End()
		return true
	}
	return false
}

// End marks the job finished. It is safe to call more than once.
func (w *Worker) End() {
	if !w.ended.Swap(true) {
		w.exiter.jobs.Add(-1)
	}
}
