package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insteon-alert/internal/metrics"
)

func TestRegistry_ObserveCall(t *testing.T) {
	r := metrics.NewRegistry()

	r.ObserveCall(true, 10*time.Millisecond)
	r.ObserveCall(true, 20*time.Millisecond)
	r.ObserveCall(false, 5*time.Second)
	r.IncDevicesDispatched()

	count, err := testutil.GatherAndCount(r.Gatherer(), "insteon_alert_calls_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per result label")

	count, err = testutil.GatherAndCount(r.Gatherer(), "insteon_alert_devices_dispatched_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRegistry_IndependentInstances(t *testing.T) {
	a := metrics.NewRegistry()
	b := metrics.NewRegistry()

	a.IncValidationFailures()

	const header = `
# HELP insteon_alert_validation_failures_total Total number of alert runs rejected before dispatch
# TYPE insteon_alert_validation_failures_total counter
`
	assert.NoError(t, testutil.GatherAndCompare(a.Gatherer(),
		strings.NewReader(header+"insteon_alert_validation_failures_total 1\n"),
		"insteon_alert_validation_failures_total"))
	assert.NoError(t, testutil.GatherAndCompare(b.Gatherer(),
		strings.NewReader(header+"insteon_alert_validation_failures_total 0\n"),
		"insteon_alert_validation_failures_total"))
}

func TestRegistry_WriteTextfile(t *testing.T) {
	r := metrics.NewRegistry()
	r.ObserveCall(true, time.Millisecond)
	r.SetLastRun(time.Unix(1700000000, 0))

	path := filepath.Join(t.TempDir(), "insteon_alert.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `insteon_alert_calls_total{result="success"} 1`)
	assert.Contains(t, string(data), "insteon_alert_last_run_timestamp_seconds ")
}
