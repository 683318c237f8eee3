package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(503, 30*time.Millisecond)
	c.Record(429, 2*time.Millisecond)
	c.IncShiftSubmitted()
	c.IncShiftDecided("APPROVED")
	c.IncShiftDecided("REJECTED")
	c.IncShiftDecided("SUBMITTED")

	snap := c.Snapshot()
	if snap["requestsTotal"] != uint64(3) {
		t.Fatalf("expected 3 requests, got %v", snap["requestsTotal"])
	}
	if snap["errorsTotal"] != uint64(1) || snap["rateLimitedTotal"] != uint64(1) {
		t.Fatalf("unexpected error counters: %v", snap)
	}
	if snap["avgDurationMs"] != float64(14) {
		t.Fatalf("expected avg 14ms, got %v", snap["avgDurationMs"])
	}
	if snap["shiftsApprovedTotal"] != uint64(1) || snap["shiftsRejectedTotal"] != uint64(1) || snap["shiftsSubmittedTotal"] != uint64(1) {
		t.Fatalf("unexpected shift counters: %v", snap)
	}
}

func TestCollectorConcurrentRecord(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Record(200, time.Millisecond)
		}()
	}
	wg.Wait()
	if got := c.Snapshot()["requestsTotal"]; got != uint64(50) {
		t.Fatalf("expected 50 requests, got %v", got)
	}
}
