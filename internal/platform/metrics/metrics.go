package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	rateLimited     uint64
	totalDurationMs uint64

	shiftsSubmitted uint64
	shiftsApproved  uint64
	shiftsRejected  uint64
}

func New() *Collector {
	return &Collector{}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

func (c *Collector) IncShiftSubmitted() {
	atomic.AddUint64(&c.shiftsSubmitted, 1)
}

// IncShiftDecided counts a committed decision by resulting status.
func (c *Collector) IncShiftDecided(status string) {
	switch status {
	case "APPROVED":
		atomic.AddUint64(&c.shiftsApproved, 1)
	case "REJECTED":
		atomic.AddUint64(&c.shiftsRejected, 1)
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	return map[string]any{
		"requestsTotal":        total,
		"errorsTotal":          errs,
		"rateLimitedTotal":     limited,
		"avgDurationMs":        avg,
		"totalDurationMs":      totalMs,
		"shiftsSubmittedTotal": atomic.LoadUint64(&c.shiftsSubmitted),
		"shiftsApprovedTotal":  atomic.LoadUint64(&c.shiftsApproved),
		"shiftsRejectedTotal":  atomic.LoadUint64(&c.shiftsRejected),
	}
}
