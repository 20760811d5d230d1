package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	mu       sync.Mutex
	counters map[string]float64
	labels   []Labels
	hists    []float64
	flushes  int
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counters == nil {
		f.counters = make(map[string]float64)
	}
	f.counters[name] += delta
	f.labels = append(f.labels, labels)
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hists = append(f.hists, value)
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	return nil
}

func withFake(t *testing.T) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	SetBackend(fb)
	t.Cleanup(Reset)
	return fb
}

func TestRecordStep(t *testing.T) {
	fb := withFake(t)

	RecordStep("users", "validate", nil, 2*time.Second)
	RecordStep("users", "read", errors.New("boom"), time.Second)

	assert.Equal(t, 2.0, fb.counters[StepTotal])
	require.Len(t, fb.labels, 2)
	assert.Equal(t, "success", fb.labels[0]["status"])
	assert.Equal(t, "failure", fb.labels[1]["status"])
	assert.Equal(t, []float64{2, 1}, fb.hists)
}

func TestRecordRowsAndFailures(t *testing.T) {
	fb := withFake(t)

	RecordRows("users", 10)
	RecordRows("users", 0)
	RecordFailures("users", "not_null", 3)
	RecordFailures("users", "not_null", -1)
	RecordBatches("users", 2)

	assert.Equal(t, 10.0, fb.counters[RowsTotal])
	assert.Equal(t, 3.0, fb.counters[FailuresTotal])
	assert.Equal(t, 2.0, fb.counters[BatchesTotal])
	assert.Len(t, fb.labels, 3)
}

func TestSetBackendNilKeepsCurrent(t *testing.T) {
	fb := withFake(t)
	SetBackend(nil)
	require.NoError(t, Flush())
	assert.Equal(t, 1, fb.flushes)
}

func TestDefaultBackendIsNop(t *testing.T) {
	Reset()
	RecordRows("users", 5)
	assert.NoError(t, Flush())
}
