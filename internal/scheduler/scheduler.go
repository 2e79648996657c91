// Package scheduler runs background work one task at a time, off the
// request path of the language server.
package scheduler

import (
	"context"
	"errors"
	"sync"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("luau-lsp.scheduler")

var ErrStopped = errors.New("scheduler: stopped")

type Task struct {
	Name    string
	Execute func(ctx context.Context) error
}

// Scheduler executes queued tasks serially in submission order.
type Scheduler struct {
	taskQueue chan Task
	ctx       context.Context
	cancel    context.CancelFunc

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
	done    chan struct{}
}

// NewScheduler creates a Scheduler with the given queue size.
func NewScheduler(queueSize int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		taskQueue: make(chan Task, queueSize),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// RunScheduler starts the worker loop.
func (s *Scheduler) RunScheduler() {
	go func() {
		defer close(s.done)
		for task := range s.taskQueue {
			s.execute(task)
		}
	}()
}

func (s *Scheduler) execute(task Task) {
	defer s.wg.Done()
	log.Debugf("executing %s", task.Name)
	if err := task.Execute(s.ctx); err != nil {
		log.Errorf("task %s: %v", task.Name, err)
	}
}

// Schedule queues a task. It blocks while the queue is full.
func (s *Scheduler) Schedule(task Task) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		return ErrStopped
	}
	s.wg.Add(1)
	s.taskQueue <- task
	return nil
}

// Wait blocks until every task scheduled so far has run.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

// StopScheduler cancels the context handed to tasks, refuses new tasks and
// waits for the queue to drain.
func (s *Scheduler) StopScheduler() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	log.Infof("stopping scheduler")
	s.stopped = true
	s.cancel()
	close(s.taskQueue)
	s.mu.Unlock()

	s.wg.Wait()
	log.Infof("scheduler stopped")
}
