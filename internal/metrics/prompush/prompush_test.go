package prompush

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taitai9847/prechecker/internal/metrics"
)

func TestNewBackend(t *testing.T) {
	_, err := NewBackend("job", "")
	assert.Error(t, err)

	b, err := NewBackend("", "http://pushgateway:9091")
	require.NoError(t, err)
	assert.Equal(t, "prechecker", b.jobName)

	b, err = NewBackend("nightly", "http://pushgateway:9091")
	require.NoError(t, err)
	assert.Equal(t, "nightly", b.jobName)
}

func TestBackend_Counters(t *testing.T) {
	b, err := NewBackend("", "http://pushgateway:9091")
	require.NoError(t, err)

	b.IncCounter(metrics.RowsTotal, 10, metrics.Labels{"table": "users"})
	b.IncCounter(metrics.RowsTotal, 5, metrics.Labels{"table": "users"})
	b.IncCounter(metrics.FailuresTotal, 3, metrics.Labels{"table": "users", "reason": "not_null"})
	b.IncCounter(metrics.StepTotal, 1, metrics.Labels{"table": "users", "step": "validate", "status": "success"})
	b.IncCounter("unknown_metric", 1, nil)
	b.ObserveHistogram(metrics.StepDuration, 0.25, metrics.Labels{"table": "users", "step": "validate", "status": "success"})

	assert.Equal(t, 15.0, testutil.ToFloat64(b.rowCounter.WithLabelValues("users")))
	assert.Equal(t, 3.0, testutil.ToFloat64(b.failureCounter.WithLabelValues("users", "not_null")))
	assert.Equal(t, 1.0, testutil.ToFloat64(b.stepCounter.WithLabelValues("users", "validate", "success")))
	assert.Equal(t, 1, testutil.CollectAndCount(b.stepDuration))
}

func TestBackend_Flush(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		mu.Lock()
		method, path, body = r.Method, r.URL.Path, string(data)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b, err := NewBackend("prechecker", srv.URL)
	require.NoError(t, err)
	b.IncCounter(metrics.RowsTotal, 1, metrics.Labels{"table": "users"})
	require.NoError(t, b.Flush())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.True(t, strings.HasPrefix(path, "/metrics/job/prechecker"), path)
	assert.NotEmpty(t, body)
}
