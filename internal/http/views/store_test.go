package views

import (
	"html/template"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/pagetree/internal/domain/pages"
)

func TestRenderFallsBackThroughCandidates(t *testing.T) {
	s, err := NewStore("")
	require.NoError(t, err)

	body, name, err := s.Render(
		[]string{"pages/about.html", "pages/richtextpage.html", "pages/page.html"},
		map[string]any{
			"page":         &pages.Node{Title: "About"},
			"content_html": template.HTML("<p>Hi <em>there</em></p>"),
		},
	)
	require.NoError(t, err)
	require.Equal(t, "pages/page.html", name)
	require.Contains(t, string(body), "<h1>About</h1>")
	require.Contains(t, string(body), "<em>there</em>")

	_, _, err = s.Render([]string{"pages/nope.html"}, nil)
	require.ErrorIs(t, err, ErrNoTemplate)
}

func TestFormTemplateShowsErrors(t *testing.T) {
	s, err := NewStore("")
	require.NoError(t, err)

	body, _, err := s.Render([]string{"pages/form.html"}, map[string]any{
		"page":        &pages.Node{Title: "Contact"},
		"form":        &pages.FormPage{ButtonText: "Go"},
		"form_fields": []pages.FormField{{Name: "email", Label: "Email", Kind: pages.FieldEmail, Required: true}},
		"form_errors": map[string]string{"email": "Enter a valid email address."},
		"form_values": map[string]any{"email": "nope<"},
	})
	require.NoError(t, err)
	out := string(body)
	require.Contains(t, out, `type="email"`)
	require.Contains(t, out, "Enter a valid email address.")
	require.Contains(t, out, `value="nope&lt;"`)
	require.Contains(t, out, ">Go</button>")
}

func TestStoreFromDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "pages"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "layout.html"), []byte(`{{define "layout"}}[{{block "content" .}}{{end}}]{{end}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pages", "home.html"), []byte(`{{template "layout" .}}{{define "content"}}{{.page.Slug}}{{end}}`), 0o644))

	s, err := NewStore(dir)
	require.NoError(t, err)
	body, _, err := s.Render([]string{"pages/home.html"}, map[string]any{"page": &pages.Node{Slug: "home"}})
	require.NoError(t, err)
	require.Equal(t, "[home]", string(body))

	_, err = NewStore(t.TempDir())
	require.Error(t, err)
}
