package progress

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsReport(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.Report(Event{Kind: KindRunStarted, Total: 3})
	m.Report(Event{Kind: KindTrackerAdded, JobID: "a"})
	m.Report(Event{Kind: KindJobProgress, JobID: "a", Bytes: 8192})
	m.Report(Event{Kind: KindJobProgress, JobID: "a", Bytes: 100})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.active))

	m.Report(Event{Kind: KindJobSucceeded, JobID: "a"})
	m.Report(Event{Kind: KindTrackerRemoved, JobID: "a"})
	m.Report(Event{Kind: KindJobSkipped, JobID: "b"})
	m.Report(Event{Kind: KindOverallAdvanced, Done: 2})

	assert.Equal(t, 0.0, testutil.ToFloat64(m.active))
	assert.Equal(t, 8292.0, testutil.ToFloat64(m.bytes))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobs.WithLabelValues("succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobs.WithLabelValues("skipped")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.done))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.total))
}

func TestMetricsOverallNeverGoesBackwards(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.Report(Event{Kind: KindRunStarted, Total: 3})
	m.Report(Event{Kind: KindOverallAdvanced, Done: 2, Total: 3})
	m.Report(Event{Kind: KindOverallAdvanced, Done: 1, Total: 3})
	assert.Equal(t, 2.0, testutil.ToFloat64(m.done))

	m.Report(Event{Kind: KindOverallAdvanced, Done: 3, Total: 3})
	assert.Equal(t, 3.0, testutil.ToFloat64(m.done))

	// A new run starts from zero again
	m.Report(Event{Kind: KindRunStarted, Total: 1})
	m.Report(Event{Kind: KindOverallAdvanced, Done: 1, Total: 1})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.done))
}
