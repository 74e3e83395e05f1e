package completion

import (
	"sync"
	"time"
)

type recordedCompletion struct {
	provider string
	outcome  string
}

type fakeMetrics struct {
	mu      sync.Mutex
	records []recordedCompletion
}

func (f *fakeMetrics) RecordCompletion(provider, outcome string, _ time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, recordedCompletion{provider: provider, outcome: outcome})
}

func (f *fakeMetrics) outcomes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.records))
	for _, r := range f.records {
		out = append(out, r.outcome)
	}
	return out
}
