package processors

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/yungbote/pagetree/internal/observability"
)

var tracer = otel.Tracer("github.com/yungbote/pagetree/processors")

type DispatchResult struct {
	Context  map[string]any
	Response *Terminal
	Invoked  []string
}

// Terminal records which processor ended dispatch.
type Terminal struct {
	Processor string
	Result
}

// Dispatch runs every matching processor in order. Context results merge
// with later keys winning; the first terminal result stops dispatch.
func (r *Registry) Dispatch(ctx context.Context, req *Request, target Target) (*DispatchResult, error) {
	out := &DispatchResult{Context: map[string]any{}}
	if target.Node == nil {
		return out, nil
	}
	path := target.Path
	if path == "" && req != nil {
		path = req.Path
	}
	for _, e := range r.matching(target.Node.VariantType, path) {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		res, err := invoke(ctx, e, req, target)
		out.Invoked = append(out.Invoked, e.processor.Name)
		observability.Current().IncProcessorCall(e.processor.Name, err != nil)
		if err != nil {
			return out, &HandlerError{Processor: e.processor.Name, Selector: e.selector, Err: err}
		}
		if res.Terminal() {
			out.Response = &Terminal{Processor: e.processor.Name, Result: res}
			return out, nil
		}
		for k, v := range res.Context {
			out.Context[k] = v
		}
	}
	return out, nil
}

func invoke(ctx context.Context, e entry, req *Request, target Target) (res Result, err error) {
	ctx, span := tracer.Start(ctx, "processor "+e.processor.Name)
	span.SetAttributes(
		attribute.String("pagetree.processor", e.processor.Name),
		attribute.String("pagetree.selector", e.selector),
		attribute.String("pagetree.node_id", target.Node.ID.String()),
	)
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	return e.processor.Handle(ctx, req, target)
}
