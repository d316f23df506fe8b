package scheduler

import (
	"context"
	"errors"
	"sync"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("lsp-translations.scheduler")

type Task struct {
	Name    string
	Execute func(ctx context.Context) error
}

// Scheduler runs one task at a time. Scheduling a task while another is
// running cancels the running one, and only the most recently scheduled
// pending task is kept.
type Scheduler struct {
	mu      sync.Mutex
	idle    *sync.Cond
	pending *Task
	running bool
	cancel  context.CancelFunc

	wake     chan struct{}
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a Scheduler. Call RunScheduler to start it.
func NewScheduler() *Scheduler {
	s := &Scheduler{
		wake:     make(chan struct{}, 1),
		stopChan: make(chan struct{}),
	}
	s.idle = sync.NewCond(&s.mu)
	return s
}

// RunScheduler starts the scheduler loop
func (s *Scheduler) RunScheduler() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.wake:
				s.drain()
			case <-s.stopChan:
				return
			}
		}
	}()
}

func (s *Scheduler) drain() {
	for {
		s.mu.Lock()
		task := s.pending
		s.pending = nil
		if task == nil {
			s.running = false
			s.idle.Broadcast()
			s.mu.Unlock()
			return
		}
		select {
		case <-s.stopChan:
			s.running = false
			s.idle.Broadcast()
			s.mu.Unlock()
			return
		default:
		}
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel
		s.running = true
		s.mu.Unlock()

		log.Debugf("executing %s task", task.Name)
		err := task.Execute(ctx)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			log.Debugf("%s task was superseded", task.Name)
		default:
			log.Errorf("%s task failed: %v", task.Name, err)
		}

		s.mu.Lock()
		s.cancel = nil
		s.mu.Unlock()
		cancel()
	}
}

// Schedule queues task, replacing any task that has not started yet and
// cancelling the one that is running.
func (s *Scheduler) Schedule(task Task) {
	s.mu.Lock()
	select {
	case <-s.stopChan:
		s.mu.Unlock()
		log.Warningf("scheduler stopped, dropping %s task", task.Name)
		return
	default:
	}
	s.pending = &task
	s.running = true
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Wait blocks until no task is pending or running.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for s.running {
		s.idle.Wait()
	}
}

// StopScheduler cancels the running task and waits for the loop to exit.
// Pending tasks are dropped.
func (s *Scheduler) StopScheduler() {
	log.Info("stopping scheduler")
	s.mu.Lock()
	select {
	case <-s.stopChan:
		s.mu.Unlock()
		return
	default:
	}
	close(s.stopChan)
	s.pending = nil
	if s.cancel != nil {
		s.cancel()
	}
	s.mu.Unlock()

	s.wg.Wait()

	s.mu.Lock()
	s.running = false
	s.idle.Broadcast()
	s.mu.Unlock()
}
