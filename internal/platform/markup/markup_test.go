package markup

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderSanitises(t *testing.T) {
	out, err := New().Render("# Hello\n\n<script>alert(1)</script>\n\n[site](https://example.com)")
	require.NoError(t, err)
	s := string(out)
	require.Contains(t, s, `<h1 id="hello">Hello</h1>`)
	require.NotContains(t, s, "<script>")
	require.Contains(t, s, `rel="nofollow"`)
}
