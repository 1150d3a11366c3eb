// Package executor runs independent load tasks on a bounded pool of workers.
package executor

import (
	"context"
	"sync"

	"github.com/specialistvlad/modfactory/internal/ctxlog"
)

// Task is one unit of work, typically the loading of a manifest entry.
type Task struct {
	ID  string
	Run func(ctx context.Context) (any, error)
}

// Result is the outcome of a Task.
type Result struct {
	ID    string
	Value any
	Err   error
}

// Executor is responsible for running tasks concurrently. It holds no state
// between calls and is safe for concurrent use.
type Executor struct {
	workers int
}

// New creates an executor with the given number of workers. Values below one
// select a single worker.
func New(workers int) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{workers: workers}
}

// Execute runs every task and returns their results in task order. A task
// failing does not stop the others; tasks still queued when ctx is done
// fail with the context's error.
func (e *Executor) Execute(ctx context.Context, tasks []Task) []Result {
	logger := ctxlog.FromContext(ctx)
	results := make([]Result, len(tasks))
	if len(tasks) == 0 {
		return results
	}

	workers := min(e.workers, len(tasks))
	logger.Debug("Executor starting run.", "tasks", len(tasks), "workers", workers)

	readyChan := make(chan int)
	var wg sync.WaitGroup
	for id := 1; id <= workers; id++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.worker(ctx, tasks, results, readyChan, id)
		}()
	}

	for i := range tasks {
		readyChan <- i
	}
	close(readyChan)
	wg.Wait()

	logger.Debug("Executor finished run.", "tasks", len(tasks))
	return results
}

// worker is the core processing loop for a single concurrent worker. Each
// index is received by exactly one worker, so results needs no locking.
func (e *Executor) worker(ctx context.Context, tasks []Task, results []Result, readyChan <-chan int, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Log(ctx, ctxlog.LevelTrace, "Worker started.", "workerID", workerID)

	for i := range readyChan {
		t := tasks[i]
		workerLogger := logger.With("workerID", workerID, "taskID", t.ID)
		results[i].ID = t.ID

		if err := ctx.Err(); err != nil {
			workerLogger.Debug("Skipping task, context is done.", "error", err)
			results[i].Err = err
			continue
		}

		workerLogger.Debug("Worker picked up task.")
		results[i].Value, results[i].Err = runTask(ctx, t)
		if results[i].Err != nil {
			workerLogger.Debug("Task failed.", "error", results[i].Err)
			continue
		}
		workerLogger.Debug("Task succeeded.")
	}
	logger.Log(ctx, ctxlog.LevelTrace, "Worker finished.", "workerID", workerID)
}

func runTask(ctx context.Context, t Task) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{TaskID: t.ID, Value: r}
		}
	}()
	return t.Run(ctx)
}
