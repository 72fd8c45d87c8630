package pipeline

import (
	"context"
	"sync"

	"github.com/velotrace/velotrace-backend-go/internal/models"
)

// Job is one unit of per-trip work, self-contained and safe to run
// concurrently with any other job.
type Job func() models.TripResult

// RunJobs processes independent trips with a fixed number of workers.
// Trips share no state, so no ordering guarantee is required between them;
// results are returned in submission order regardless. Cancelling the
// context stops dispatching further jobs without unwinding in-flight work,
// since each trip completes in bounded time. Jobs never dispatched are
// absent from the result.
func RunJobs(ctx context.Context, workers int, jobs []Job) []models.TripResult {
	if workers < 1 {
		workers = 1
	}

	type indexed struct {
		idx int
		job Job
	}

	jobCh := make(chan indexed)
	results := make([]models.TripResult, len(jobs))
	ran := make([]bool, len(jobs))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobCh {
				results[j.idx] = j.job()
				ran[j.idx] = true
			}
		}()
	}

dispatch:
	for i, job := range jobs {
		select {
		case <-ctx.Done():
			break dispatch
		case jobCh <- indexed{idx: i, job: job}:
		}
	}
	close(jobCh)
	wg.Wait()

	out := make([]models.TripResult, 0, len(jobs))
	for i := range jobs {
		if ran[i] {
			out = append(out, results[i])
		}
	}
	return out
}
