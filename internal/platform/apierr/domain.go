package apierr

import (
	"net/http"

	"github.com/yungbote/pagetree/internal/domain/pages"
)

// BusyRetryAfter is the Retry-After hint, in seconds, sent with 503 busy.
const BusyRetryAfter = 1

// domainMappings is checked in order. A cycle is also an invalid
// placement and keeps its own code; other placement failures wrap their
// cause (a missing parent, an unknown variant) and stay invalid_placement.
var domainMappings = []Mapping{
	{Target: pages.ErrCycleDetected, Status: http.StatusConflict, Code: "cycle_detected"},
	{Target: pages.ErrInvalidInput, Status: http.StatusBadRequest, Code: "invalid_input"},
	{Target: pages.ErrInvalidPlacement, Status: http.StatusUnprocessableEntity, Code: "invalid_placement"},
	{Target: pages.ErrNotFound, Status: http.StatusNotFound, Code: "not_found"},
	{Target: pages.ErrPermissionDenied, Status: http.StatusForbidden, Code: "permission_denied"},
	{Target: pages.ErrLoginRequired, Status: http.StatusUnauthorized, Code: "login_required"},
	{Target: pages.ErrBusy, Status: http.StatusServiceUnavailable, Code: "busy", RetryAfter: BusyRetryAfter},
	{Target: pages.ErrProcessorFailed, Status: http.StatusInternalServerError, Code: "processor_failed"},
	{Target: pages.ErrOrphanedNode, Status: http.StatusInternalServerError, Code: "orphaned_node"},
	{Target: pages.ErrUnknownVariant, Status: http.StatusInternalServerError, Code: "unknown_variant"},
}

// FromDomain classifies page errors for HTTP.
func FromDomain(err error) *Error {
	return Classify(err, domainMappings...)
}
