package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPrometheusCounters(t *testing.T) {
	p := NewPrometheus()
	p.ObserveRun("pjp", "success", 20*time.Millisecond)
	p.ObserveRun("pjp", "success", 10*time.Millisecond)
	p.ObserveRun("lookup", "parse_failure", time.Millisecond)
	p.AddRows("pjp", "out", 31)

	assert.Equal(t, 2.0, testutil.ToFloat64(p.runs.WithLabelValues("pjp", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(p.runs.WithLabelValues("lookup", "parse_failure")))
	assert.Equal(t, 31.0, testutil.ToFloat64(p.rows.WithLabelValues("pjp", "out")))
}

func TestPrometheusHandler(t *testing.T) {
	p := NewPrometheus()
	p.ObserveRun("concat", "success", time.Second)

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), `storeplan_tool_runs_total{status="success",tool="concat"} 1`)
}
