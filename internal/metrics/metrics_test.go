package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordTenant(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.RecordTenant("acme", "success", "dedup_append", 3)
	m.RecordTenant("acme", "success", "dedup_append", 2)
	m.RecordTenant("globex", "failed", "", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.TenantRunsTotal.WithLabelValues("acme", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TenantRunsTotal.WithLabelValues("globex", "failed")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.RowsWritten.WithLabelValues("acme", "dedup_append")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.RowsWritten))
}

func TestRecordPass(t *testing.T) {
	m := New(prometheus.NewRegistry())
	finished := time.Date(2024, 5, 3, 12, 0, 0, 0, time.UTC)

	m.RecordPass(true, 2*time.Second, finished)
	m.RecordPass(false, time.Second, finished)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PassesTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PassesTotal.WithLabelValues("failure")))
	assert.Equal(t, float64(finished.Unix()), testutil.ToFloat64(m.LastPass))
	assert.Equal(t, 1, testutil.CollectAndCount(m.PassDuration))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordTenant("acme", "success", "full_rewrite", 1)
		m.RecordPass(true, time.Second, time.Now())
	})
}

func TestDoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}

func TestServerHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordTenant("acme", "success", "full_rewrite", 4)

	srv := httptest.NewServer(NewServer(":0", reg, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), `ordersync_rows_written_total{strategy="full_rewrite",tenant="acme"} 4`)

	resp, err = http.Get(srv.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
