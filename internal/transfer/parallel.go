package transfer

import (
	"runtime"
	"sync"
)

// WorkItem holds a domain job ready for transfer.
type WorkItem struct {
	Seq   int
	Job   Job
	Extra any // caller-specific data (e.g. the alignment path)
}

// WorkResult holds the transfer output for a single domain.
type WorkResult struct {
	Seq    int
	Domain string
	Result *Result
	Err    error
	Extra  any
}

// ParallelTransfer runs jobs on a pool of workers. Each job gets its own
// Session, so nothing is shared between workers.
// Results are sent in arrival order; use OrderedCollect to consume them in
// sequence order. If workers is 0, runtime.NumCPU() is used.
func (t *Transferer) ParallelTransfer(items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		go func() {
			defer wg.Done()
			for item := range items {
				res, err := t.Transfer(item.Job)
				results <- WorkResult{
					Seq:    item.Seq,
					Domain: item.Job.Domain,
					Result: res,
					Err:    err,
					Extra:  item.Extra,
				}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// Out-of-order results are buffered until the next expected one arrives.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
