// Package processors lets code attach per-request handlers to pages by
// variant type or by exact path.
package processors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/yungbote/pagetree/internal/domain/pages"
)

var ErrFrozen = errors.New("processor registry is frozen")

// Request is the per-request input handed to processors. HTTP is nil
// when rendering outside an HTTP server.
type Request struct {
	HTTP      *http.Request
	Principal pages.Principal
	Path      string
}

// Target is the page being rendered.
type Target struct {
	Node    *pages.Node
	Payload pages.Payload
	Path    string
}

type HandlerFunc func(ctx context.Context, req *Request, target Target) (Result, error)

type Processor struct {
	Name   string
	Handle HandlerFunc
}

func New(name string, fn HandlerFunc) *Processor {
	return &Processor{Name: name, Handle: fn}
}

// Result is either a mapping to merge into the render context or a
// terminal response. A non-nil Response wins.
type Result struct {
	Context  map[string]any
	Response http.Handler
}

func Merge(m map[string]any) Result { return Result{Context: m} }
func Respond(h http.Handler) Result { return Result{Response: h} }
func (r Result) Terminal() bool     { return r.Response != nil }

// HandlerError identifies the processor that failed.
type HandlerError struct {
	Processor string
	Selector  string
	Err       error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("processor %q (%s): %v", e.Processor, e.Selector, e.Err)
}

// Unwrap exposes both the handler's own error and ErrProcessorFailed so
// callers can match either.
func (e *HandlerError) Unwrap() []error { return []error{pages.ErrProcessorFailed, e.Err} }

type entry struct {
	seq       int
	selector  string
	processor *Processor
}

type Registry struct {
	mu     sync.RWMutex
	byType map[string][]entry
	byPath map[string][]entry
	seq    int
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{byType: map[string][]entry{}, byPath: map[string][]entry{}}
}

// NormalizePath drops empty segments and surrounding slashes, so
// "/about/", "about" and "//about" all become "about".
func NormalizePath(p string) string {
	segs := strings.Split(p, "/")
	out := segs[:0]
	for _, seg := range segs {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return strings.Join(out, "/")
}

func (r *Registry) add(table map[string][]entry, key, selector string, p *Processor) error {
	if p == nil || p.Handle == nil {
		return errors.New("processor handle is required")
	}
	if p.Name == "" {
		return errors.New("processor name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.frozen {
		return ErrFrozen
	}
	r.seq++
	table[key] = append(table[key], entry{seq: r.seq, selector: selector, processor: p})
	return nil
}

// RegisterForType attaches p to every node whose variant tag is
// variantType. Registrations accumulate.
func (r *Registry) RegisterForType(variantType string, p *Processor) error {
	variantType = strings.TrimSpace(variantType)
	if variantType == "" {
		return errors.New("variant type is required")
	}
	return r.add(r.byType, variantType, "type:"+variantType, p)
}

// RegisterForPath attaches p to the node at exactly path.
func (r *Registry) RegisterForPath(path string, p *Processor) error {
	key := NormalizePath(path)
	return r.add(r.byPath, key, "path:/"+key, p)
}

func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Matching returns the processors that apply to a node of variantType at
// path, in registration order across both selectors, each at most once.
func (r *Registry) Matching(variantType, path string) []*Processor {
	es := r.matching(variantType, path)
	out := make([]*Processor, len(es))
	for i, e := range es {
		out[i] = e.processor
	}
	return out
}

func (r *Registry) matching(variantType, path string) []entry {
	r.mu.RLock()
	byType := r.byType[variantType]
	byPath := r.byPath[NormalizePath(path)]
	r.mu.RUnlock()

	merged := make([]entry, 0, len(byType)+len(byPath))
	i, j := 0, 0
	for i < len(byType) || j < len(byPath) {
		switch {
		case j >= len(byPath) || (i < len(byType) && byType[i].seq < byPath[j].seq):
			merged = append(merged, byType[i])
			i++
		default:
			merged = append(merged, byPath[j])
			j++
		}
	}

	seen := make(map[*Processor]struct{}, len(merged))
	out := merged[:0]
	for _, e := range merged {
		if _, dup := seen[e.processor]; dup {
			continue
		}
		seen[e.processor] = struct{}{}
		out = append(out, e)
	}
	return out
}
