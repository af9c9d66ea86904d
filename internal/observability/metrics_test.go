package observability

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ObserveTreeMutation("Move", "busy", time.Second)
	m.IncProcessorCall("x", true)
	m.IncFormEntry()
	require.NoError(t, m.WritePrometheus(&strings.Builder{}))
}

func TestWritePrometheus(t *testing.T) {
	m := newMetrics()
	m.ObserveAPI("GET", "/api/pages/:id", "200", 20*time.Millisecond)
	m.ObserveTreeMutation("Move", "busy", 2*time.Second)
	m.IncProcessorCall("form.handle", false)

	var b strings.Builder
	require.NoError(t, m.WritePrometheus(&b))
	out := b.String()
	require.Contains(t, out, `pagetree_http_requests_total{method="GET",route="/api/pages/:id",status="200"} 1.000000`)
	require.Contains(t, out, `pagetree_tree_mutations_total{op="Move",outcome="busy"} 1.000000`)
	require.Contains(t, out, "pagetree_tree_busy_total 1.000000")
	require.Contains(t, out, `pagetree_http_request_duration_seconds_bucket{method="GET",route="/api/pages/:id",le="0.025"} 1`)
	require.Contains(t, out, `pagetree_processor_calls_total{processor="form.handle",outcome="ok"} 1.000000`)
}

func TestParseHeaders(t *testing.T) {
	require.Equal(t, map[string]string{"a": "1", "b": "x=y"}, parseHeaders(" a=1, broken, =2, b=x=y"))
	require.Nil(t, parseHeaders(""))
}
