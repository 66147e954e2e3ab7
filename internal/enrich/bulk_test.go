package enrich

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type echoEnricher struct {
	active  int32
	maxSeen int32
}

func (e *echoEnricher) Enrich(ctx context.Context, req Request) Record {
	n := atomic.AddInt32(&e.active, 1)
	defer atomic.AddInt32(&e.active, -1)
	for {
		seen := atomic.LoadInt32(&e.maxSeen)
		if n <= seen || atomic.CompareAndSwapInt32(&e.maxSeen, seen, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return Record{CompanyName: req.Company}
}

func TestEnrichAll_PreservesOrder(t *testing.T) {
	reqs := []Request{{Company: "a"}, {Company: "b"}, {Company: "c"}, {Company: "d"}}
	enricher := &echoEnricher{}

	out := EnrichAll(context.Background(), reqs, enricher, BulkOptions{Workers: 2})
	if len(out) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(out))
	}
	for i, res := range out {
		if res.Input != reqs[i].Company || res.Record.CompanyName != reqs[i].Company {
			t.Fatalf("result %d out of order: %+v", i, res)
		}
	}
	if atomic.LoadInt32(&enricher.maxSeen) > 2 {
		t.Fatalf("expected at most 2 concurrent items, saw %d", enricher.maxSeen)
	}
}

func TestEnrichAll_DefaultsToOneWorker(t *testing.T) {
	enricher := &echoEnricher{}
	EnrichAll(context.Background(), []Request{{Company: "a"}, {Company: "b"}, {Company: "c"}}, enricher, BulkOptions{})
	if enricher.maxSeen != 1 {
		t.Fatalf("expected sequential processing, saw %d", enricher.maxSeen)
	}
}

func TestEnrichAll_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	out := EnrichAll(ctx, []Request{{Company: "a"}, {Company: "b"}}, &echoEnricher{}, BulkOptions{})
	for _, res := range out {
		if res.Record.CompanyName != "" {
			t.Fatalf("expected no work after cancellation, got %+v", res)
		}
	}
	if out[1].Input != "b" {
		t.Fatalf("expected inputs to be echoed, got %+v", out)
	}
}
