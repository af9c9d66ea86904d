package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/pagetree/internal/domain/pages"
)

var errGone = errors.New("gone")

func TestClassify(t *testing.T) {
	maps := []Mapping{{Target: errGone, Status: http.StatusNotFound, Code: "not_found"}}

	got := Classify(fmt.Errorf("lookup: %w", errGone), maps...)
	require.Equal(t, http.StatusNotFound, got.Status)
	require.Equal(t, "not_found", got.Code)
	require.ErrorIs(t, got, errGone)

	pre := New(http.StatusTeapot, "teapot", errors.New("short and stout"))
	require.Same(t, pre, Classify(fmt.Errorf("wrapped: %w", pre), maps...))

	other := Classify(errors.New("boom"), maps...)
	require.Equal(t, http.StatusInternalServerError, other.Status)
	require.Nil(t, Classify(nil, maps...))
}

func TestFromDomain(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: %w: a under b", pages.ErrInvalidPlacement, pages.ErrCycleDetected), http.StatusConflict, "cycle_detected"},
		{fmt.Errorf("%w: parent %w", pages.ErrInvalidPlacement, pages.ErrNotFound), http.StatusUnprocessableEntity, "invalid_placement"},
		{fmt.Errorf("%w: chain loops", pages.ErrCycleDetected), http.StatusConflict, "cycle_detected"},
		{fmt.Errorf("%w: x", pages.ErrNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("%w: %w", pages.ErrInvalidInput, pages.ErrUnknownVariant), http.StatusBadRequest, "invalid_input"},
		{pages.ErrPermissionDenied, http.StatusForbidden, "permission_denied"},
		{pages.ErrLoginRequired, http.StatusUnauthorized, "login_required"},
		{pages.ErrOrphanedNode, http.StatusInternalServerError, "orphaned_node"},
		{pages.ErrUnknownVariant, http.StatusInternalServerError, "unknown_variant"},
		{errors.Join(pages.ErrProcessorFailed, errGone), http.StatusInternalServerError, "processor_failed"},
	}
	for _, tc := range cases {
		got := FromDomain(tc.err)
		require.Equal(t, tc.status, got.Status, tc.err.Error())
		require.Equal(t, tc.code, got.Code, tc.err.Error())
	}

	busy := FromDomain(fmt.Errorf("%w: waited 5s", pages.ErrBusy))
	require.Equal(t, http.StatusServiceUnavailable, busy.Status)
	require.Equal(t, BusyRetryAfter, busy.RetryAfter)
}
