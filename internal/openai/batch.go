package openai

import (
	"context"
	"sync"
)

// BatchResult pairs one request's outcome with the index of the request
// that produced it. Results arrive in completion order, so Index is the
// only reliable link back to the originating prompt.
type BatchResult struct {
	Index      int
	Completion *Completion
	Err        error
}

// CompleteBatch dispatches every request concurrently and collects results
// in arrival order. A failed slot carries its error without aborting the
// requests still in flight; callers decide what a partial batch means.
// The slice always has len(reqs) entries.
func (c *Client) CompleteBatch(ctx context.Context, reqs []CompletionRequest) []BatchResult {
	if len(reqs) == 0 {
		return nil
	}

	resultCh := make(chan BatchResult, len(reqs))
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func(idx int, r CompletionRequest) {
			defer wg.Done()
			completion, err := c.Complete(ctx, r)
			resultCh <- BatchResult{Index: idx, Completion: completion, Err: err}
		}(i, req)
	}
	wg.Wait()
	close(resultCh)

	results := make([]BatchResult, 0, len(reqs))
	for res := range resultCh {
		results = append(results, res)
	}
	return results
}
