package dispatcher

import "context"

// Enqueue adds a job to the shared queue and returns its position.
func (d *implDispatcher) Enqueue(job Job) int {
	depth := d.queue.enqueue(job)
	d.logger.Info(context.Background(), "Enqueued job %s (%s) at position %d", job.ID, job.FileName, depth)
	return depth
}

// QueueDepth returns the number of jobs currently waiting.
func (d *implDispatcher) QueueDepth() int {
	return d.queue.depth()
}

// Start launches the worker pool.
func (d *implDispatcher) Start(ctx context.Context) {
	ctx, d.cancel = context.WithCancel(ctx)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
	d.logger.Info(ctx, "Started %d queue workers (shutdown policy: %s)", d.workers, d.shutdown)
}

// Stop shuts the pool down. With the "drain" policy workers finish the
// queued and in-flight jobs first; with "cancel" everything in flight
// is abandoned immediately.
func (d *implDispatcher) Stop() {
	if d.shutdown == "drain" {
		d.queue.close()
		d.wg.Wait()
		d.cancel()
	} else {
		d.cancel()
		d.queue.close()
		d.wg.Wait()
	}
	d.logger.Info(context.Background(), "Stopped all queue workers")
}

func (d *implDispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	d.logger.Info(ctx, "Worker %d started", id)

	for {
		job, ok := d.queue.dequeue()
		if !ok {
			return
		}
		if ctx.Err() != nil {
			return
		}
		d.runJob(ctx, job)
	}
}
