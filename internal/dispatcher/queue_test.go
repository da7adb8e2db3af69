package dispatcher

import (
	"sync"
	"testing"
	"time"
)

func TestQueueDepthAtInsertion(t *testing.T) {
	q := newJobQueue()
	for want := 1; want <= 5; want++ {
		if got := q.enqueue(Job{ID: "j"}); got != want {
			t.Errorf("enqueue #%d returned depth %d, want %d", want, got, want)
		}
	}
	if got := q.depth(); got != 5 {
		t.Errorf("depth() = %d, want 5", got)
	}
}

func TestQueueDequeueBlocksUntilEnqueue(t *testing.T) {
	q := newJobQueue()
	got := make(chan Job, 1)
	go func() {
		job, ok := q.dequeue()
		if !ok {
			t.Error("dequeue returned closed on an open queue")
		}
		got <- job
	}()

	time.Sleep(10 * time.Millisecond)
	q.enqueue(Job{ID: "waited"})

	select {
	case job := <-got:
		if job.ID != "waited" {
			t.Errorf("dequeued %q, want %q", job.ID, "waited")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("dequeue never woke up after enqueue")
	}
}

func TestQueueDrainsRemainingAfterClose(t *testing.T) {
	q := newJobQueue()
	q.enqueue(Job{ID: "a"})
	q.enqueue(Job{ID: "b"})
	q.close()

	for _, want := range []string{"a", "b"} {
		job, ok := q.dequeue()
		if !ok {
			t.Fatalf("closed queue refused to hand out remaining job %q", want)
		}
		if job.ID != want {
			t.Errorf("dequeued %q, want %q", job.ID, want)
		}
	}

	if _, ok := q.dequeue(); ok {
		t.Error("dequeue on a closed empty queue must report closed")
	}
}

func TestQueueCloseWakesAllWaiters(t *testing.T) {
	q := newJobQueue()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.dequeue()
		}()
	}

	time.Sleep(10 * time.Millisecond)
	q.close()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("close did not wake every blocked waiter")
	}
}
