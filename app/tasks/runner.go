package tasks

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// Runner executes a fixed batch of tasks over a bounded pool of workers and
// returns when every task has finished. Task failures are isolated: one
// source's failure never aborts the rest of the batch.
type Runner struct {
	workerCount int
	taskTimeout time.Duration
}

func NewRunner(workerCount int, taskTimeout time.Duration) *Runner {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Runner{
		workerCount: workerCount,
		taskTimeout: taskTimeout,
	}
}

// Run drains the task list and returns the number of failed tasks.
func (r *Runner) Run(ctx context.Context, batch []TaskInterface) int {
	queue := make(chan TaskInterface)

	var failed atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < r.workerCount; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for task := range queue {
				if err := r.executeTask(ctx, task); err != nil {
					failed.Add(1)
					slog.Error("Worker task execution failed",
						"worker_id", workerID,
						"type", string(task.GetType()),
						"id", task.GetID(),
						"source", task.GetSourceURL(),
						"error", err)
				}
			}
		}(w)
	}

	for _, task := range batch {
		queue <- task
	}
	close(queue)
	wg.Wait()

	return int(failed.Load())
}

func (r *Runner) executeTask(ctx context.Context, task TaskInterface) error {
	task.Start()

	taskCtx, cancel := context.WithTimeout(ctx, r.taskTimeout)
	defer cancel()

	return task.Execute(taskCtx)
}
