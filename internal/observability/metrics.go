package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	requestCount map[string]int64
	errorCount   map[string]int64
	batches      map[string]BatchTotals
}

// BatchTotals accumulates quick action outcomes for one action.
type BatchTotals struct {
	Runs      int64
	Succeeded int64
	Skipped   int64
	Failed    int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		batches:      make(map[string]BatchTotals),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, _ time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := path + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// RecordBatch adds the outcome of one quick action run.
func (m *Metrics) RecordBatch(action string, succeeded, skipped, failed int) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.batches[action]
	t.Runs++
	t.Succeeded += int64(succeeded)
	t.Skipped += int64(skipped)
	t.Failed += int64(failed)
	m.batches[action] = t
}

// Batch returns the accumulated totals for an action.
func (m *Metrics) Batch(action string) BatchTotals {
	if m == nil {
		return BatchTotals{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.batches[action]
}

// Requests returns the request count for a path, method and status.
func (m *Metrics) Requests(path, method string, status int) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requestCount[pathKey(path, method, status)]
}

func pathKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
