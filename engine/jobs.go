package engine

import (
	"sync"

	jsruntime "github.com/wippyai/js-runtime"
)

// Job is a unit of deferred work executed by the engine's job-draining loop,
// with the exclusivity lock held.
type Job func(*Ctx)

type jobQueue struct {
	mu    sync.Mutex
	queue []Job
	waker jsruntime.Waker
}

func (q *jobQueue) push(j Job) jsruntime.Waker {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue = append(q.queue, j)
	return q.waker
}

func (q *jobQueue) pop() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.queue) == 0 {
		return nil, false
	}
	j := q.queue[0]
	q.queue = q.queue[1:]
	return j, true
}

func (q *jobQueue) setWaker(w jsruntime.Waker) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.waker = w
	return len(q.queue) > 0
}

func (q *jobQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

func (q *jobQueue) clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue = nil
	q.waker = nil
}

// EnqueueJob appends a job to the engine job queue. It never blocks and may
// be called from any goroutine, including from inside a running job. The
// registered drain waker, if any, is notified.
func (e *Engine) EnqueueJob(j Job) {
	if w := e.jobs.push(j); w != nil {
		w.Wake()
	}
}

// SetJobWaker registers the waker to notify whenever a job is enqueued.
// If jobs are already pending the waker fires immediately, closing the gap
// between a drain pass and waker registration.
func (e *Engine) SetJobWaker(w jsruntime.Waker) {
	if e.jobs.setWaker(w) && w != nil {
		w.Wake()
	}
}

// PendingJobs returns the number of queued jobs.
func (e *Engine) PendingJobs() int {
	return e.jobs.len()
}

// DrainJobs runs queued jobs in FIFO order until the queue is empty,
// including jobs enqueued by the jobs themselves. It returns the number of
// jobs executed. This is the entry point for the external job-drain driver;
// the bridge adapters only ever enqueue.
func (c *Ctx) DrainJobs() int {
	n := 0
	for {
		j, ok := c.eng.jobs.pop()
		if !ok {
			return n
		}
		j(c)
		n++
	}
}
