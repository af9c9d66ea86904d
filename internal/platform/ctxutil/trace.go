package ctxutil

import (
	"context"
	"sync"
)

type traceDataKey struct{}

// TraceData follows one request. The page fields are filled in once the
// request path resolves to a node.
type TraceData struct {
	TraceID   string
	RequestID string

	mu      sync.Mutex
	nodeID  string
	variant string
}

func WithTraceData(ctx context.Context, td *TraceData) context.Context {
	return context.WithValue(ctx, traceDataKey{}, td)
}

func GetTraceData(ctx context.Context) *TraceData {
	if td, ok := ctx.Value(traceDataKey{}).(*TraceData); ok {
		return td
	}
	return nil
}

// SetPage records the node serving the request. No-op without trace data.
func SetPage(ctx context.Context, nodeID, variant string) {
	td := GetTraceData(ctx)
	if td == nil {
		return
	}
	td.mu.Lock()
	td.nodeID, td.variant = nodeID, variant
	td.mu.Unlock()
}

// Page returns what SetPage recorded; both are empty for API routes and
// unresolved paths.
func (td *TraceData) Page() (nodeID, variant string) {
	if td == nil {
		return "", ""
	}
	td.mu.Lock()
	defer td.mu.Unlock()
	return td.nodeID, td.variant
}

// LogFields returns trace_id/request_id pairs for logger.With, plus the
// page once known.
func LogFields(ctx context.Context) []interface{} {
	td := GetTraceData(ctx)
	if td == nil {
		return nil
	}
	fields := []interface{}{"trace_id", td.TraceID, "request_id", td.RequestID}
	if nodeID, variant := td.Page(); nodeID != "" {
		fields = append(fields, "node_id", nodeID, "variant", variant)
	}
	return fields
}
