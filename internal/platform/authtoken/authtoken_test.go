package authtoken

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pagetree/internal/domain/pages"
)

func TestIssueAndParse(t *testing.T) {
	s, err := NewSigner("dev-secret", "pagetree")
	require.NoError(t, err)

	in := pages.Principal{UserID: uuid.New(), Staff: true, Permissions: []string{"pages.change_node"}}
	tok, err := s.Issue(in, time.Hour)
	require.NoError(t, err)

	got, err := s.Parse(tok)
	require.NoError(t, err)
	require.True(t, got.Authenticated)
	require.Equal(t, in.UserID, got.UserID)
	require.True(t, got.Staff)
	require.False(t, got.Superuser)
	require.Equal(t, in.Permissions, got.Permissions)
}

func TestParseRejects(t *testing.T) {
	s, err := NewSigner("dev-secret", "pagetree")
	require.NoError(t, err)
	other, err := NewSigner("other-secret", "pagetree")
	require.NoError(t, err)
	p := pages.Principal{UserID: uuid.New()}

	forged, err := other.Issue(p, time.Hour)
	require.NoError(t, err)
	_, err = s.Parse(forged)
	require.ErrorIs(t, err, ErrInvalidToken)

	expired, err := s.Issue(p, -time.Minute)
	require.NoError(t, err)
	_, err = s.Parse(expired)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.Parse("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewSigner(" ", "")
	require.Error(t, err)
}
