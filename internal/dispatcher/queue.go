package dispatcher

import "sync"

// jobQueue is an unbounded in-memory FIFO shared by all workers. Jobs
// are lost on process crash; that is an accepted trade-off here.
type jobQueue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []Job
	closed bool
}

func newJobQueue() *jobQueue {
	q := &jobQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// enqueue appends a job and returns the queue depth at the moment of
// insertion, so callers can report a position to the user.
func (q *jobQueue) enqueue(job Job) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, job)
	depth := len(q.items)
	q.cond.Signal()
	return depth
}

// dequeue blocks until a job is available or the queue is closed and
// empty. A closed queue still hands out remaining jobs so a draining
// shutdown can finish them.
func (q *jobQueue) dequeue() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.cond.Wait()
	}
	if len(q.items) == 0 {
		return Job{}, false
	}

	job := q.items[0]
	q.items = q.items[1:]
	return job, true
}

// close wakes every blocked worker. No further jobs are accepted.
func (q *jobQueue) close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

func (q *jobQueue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
