package builtin_test

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/modules/pages/pagestest"
	"github.com/yungbote/pagetree/internal/modules/pages/processors"
	"github.com/yungbote/pagetree/internal/modules/pages/tree"
	"github.com/yungbote/pagetree/internal/modules/pages/variants"
	"github.com/yungbote/pagetree/internal/platform/dbctx"
)

func contactForm(t *testing.T) *pages.FormPage {
	t.Helper()
	f := &pages.FormPage{Intro: "Say hi", Response: "Thanks!", ButtonText: "Send"}
	require.NoError(t, f.SetFields([]pages.FormField{
		{Name: "name", Label: "Name", Kind: pages.FieldText, Required: true},
		{Name: "email", Label: "Email", Kind: pages.FieldEmail, Required: true},
		{Name: "subscribe", Label: "Subscribe", Kind: pages.FieldCheckbox},
	}))
	return f
}

func dispatch(t *testing.T, s *pagestest.Site, n *pages.Node, r *http.Request) *processors.DispatchResult {
	t.Helper()
	ctx := context.Background()
	payload, err := s.Variants.Resolve(dbctx.Context{Ctx: ctx}, n)
	require.NoError(t, err)
	path, err := s.Tree.PathOf(ctx, n)
	require.NoError(t, err)
	res, err := s.Processors.Dispatch(ctx, &processors.Request{HTTP: r, Path: path}, processors.Target{Node: n, Payload: payload, Path: path})
	require.NoError(t, err)
	return res
}

func postForm(values url.Values) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(values.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return r
}

func TestVariantsChildPolicies(t *testing.T) {
	s := pagestest.New(t, nil)
	require.Equal(t, []string{pages.VariantRichText, pages.VariantLink, pages.VariantForm}, s.Variants.Types())
	require.Equal(t, variants.ChildrenAny, s.Variants.PermittedChildTypes(&pages.Node{VariantType: pages.VariantRichText}).Policy)
	require.Equal(t, variants.ChildrenNone, s.Variants.PermittedChildTypes(&pages.Node{VariantType: pages.VariantLink}).Policy)
	require.Equal(t, variants.ChildrenNone, s.Variants.PermittedChildTypes(&pages.Node{VariantType: pages.VariantForm}).Policy)
}

func TestFormSubmissionStoresEntry(t *testing.T) {
	s := pagestest.New(t, nil)
	n := s.Add(t, nil, "Contact", contactForm(t))

	res := dispatch(t, s, n, postForm(url.Values{"name": {"Ada"}, "email": {"ada@example.com"}, "subscribe": {"on"}}))
	require.NotNil(t, res.Response)
	require.Equal(t, "form.handle", res.Response.Processor)

	rec := httptest.NewRecorder()
	res.Response.Result.Response.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/contact", nil))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/contact?sent=1", rec.Header().Get("Location"))

	entries, err := s.Entries.ListByNode(dbctx.Context{Ctx: context.Background()}, n.ID, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	var got map[string]any
	require.NoError(t, json.Unmarshal(entries[0].Values, &got))
	require.Equal(t, "Ada", got["name"])
	require.Equal(t, true, got["subscribe"])
}

func TestFormValidationErrors(t *testing.T) {
	s := pagestest.New(t, nil)
	n := s.Add(t, nil, "Contact", contactForm(t))

	res := dispatch(t, s, n, postForm(url.Values{"email": {"not-an-email"}}))
	require.Nil(t, res.Response)
	problems := res.Context["form_errors"].(map[string]string)
	require.Contains(t, problems, "name")
	require.Contains(t, problems, "email")
	require.NotContains(t, problems, "subscribe")
	require.Equal(t, "not-an-email", res.Context["form_values"].(map[string]any)["email"])

	entries, err := s.Entries.ListByNode(dbctx.Context{Ctx: context.Background()}, n.ID, 0)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestFormGetAfterSubmit(t *testing.T) {
	s := pagestest.New(t, nil)
	n := s.Add(t, nil, "Contact", contactForm(t))

	res := dispatch(t, s, n, httptest.NewRequest(http.MethodGet, "/contact?sent=1", nil))
	require.Nil(t, res.Response)
	require.Equal(t, true, res.Context["form_sent"])
	require.Equal(t, "Thanks!", res.Context["form_response"])
	require.Len(t, res.Context["form_fields"], 3)
}

func TestDeletingFormDropsEntries(t *testing.T) {
	s := pagestest.New(t, nil)
	ctx := context.Background()
	n := s.Add(t, nil, "Contact", contactForm(t))
	dispatch(t, s, n, postForm(url.Values{"name": {"Ada"}, "email": {"ada@example.com"}}))

	require.NoError(t, s.Tree.Delete(ctx, n.ID, tree.DeleteCascade))
	entries, err := s.Entries.ListByNode(dbctx.Context{Ctx: ctx}, n.ID, 0)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestLinkRedirects(t *testing.T) {
	s := pagestest.New(t, nil)
	n := s.Add(t, nil, "Elsewhere", &pages.LinkPage{URL: "https://example.org/x"})

	res := dispatch(t, s, n, httptest.NewRequest(http.MethodGet, "/elsewhere", nil))
	require.NotNil(t, res.Response)
	rec := httptest.NewRecorder()
	res.Response.Result.Response.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/elsewhere", nil))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "https://example.org/x", rec.Header().Get("Location"))
}

func TestRichTextRendersSanitizedHTML(t *testing.T) {
	s := pagestest.New(t, nil)
	n := s.Add(t, nil, "Doc", &pages.RichTextPage{Content: "**bold** <script>alert(1)</script>"})

	res := dispatch(t, s, n, nil)
	html := string(res.Context["content_html"].(template.HTML))
	require.Contains(t, html, "<strong>bold</strong>")
	require.NotContains(t, html, "<script>")
}
