package enrich

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// BulkOptions bound a batch run.
type BulkOptions struct {
	Workers     int
	ItemTimeout time.Duration

	// RateLimitRPS is a global limit across all workers. Set to <=0 to disable.
	RateLimitRPS float64
}

func (o BulkOptions) withDefaults() BulkOptions {
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.ItemTimeout <= 0 {
		o.ItemTimeout = 2 * time.Minute
	}
	return o
}

// BulkResult pairs an input with its record.
type BulkResult struct {
	Input  string `json:"input"`
	Record Record `json:"record"`
}

// RecordEnricher enriches a single request.
type RecordEnricher interface {
	Enrich(ctx context.Context, req Request) Record
}

// EnrichAll enriches every request with a bounded worker pool. Results keep the input
// order; items skipped because ctx ended carry an empty record.
func EnrichAll(ctx context.Context, reqs []Request, enricher RecordEnricher, opts BulkOptions) []BulkResult {
	opts = opts.withDefaults()

	var limiter *rate.Limiter
	if opts.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimitRPS), 1)
	}

	out := make([]BulkResult, len(reqs))
	for i, req := range reqs {
		out[i].Input = req.Company
	}

	type job struct {
		idx int
		req Request
	}
	jobs := make(chan job)

	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for j := range jobs {
			if ctx.Err() != nil {
				continue
			}
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					continue
				}
			}
			itemCtx, cancel := context.WithTimeout(ctx, opts.ItemTimeout)
			out[j.idx].Record = enricher.Enrich(itemCtx, j.req)
			cancel()
		}
	}

	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go worker()
	}

feed:
	for i, req := range reqs {
		select {
		case jobs <- job{idx: i, req: req}:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	return out
}
