// Package builtin registers the page variants every site starts with.
package builtin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/pagetree/internal/data/repos"
	"github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/modules/pages/processors"
	"github.com/yungbote/pagetree/internal/modules/pages/tree"
	"github.com/yungbote/pagetree/internal/modules/pages/variants"
	"github.com/yungbote/pagetree/internal/observability"
	"github.com/yungbote/pagetree/internal/platform/dbctx"
	"github.com/yungbote/pagetree/internal/platform/logger"
	"github.com/yungbote/pagetree/internal/platform/markup"
)

type Deps struct {
	Tree    *tree.Tree
	Entries repos.FormEntryRepo
	Markup  *markup.Renderer
	Log     *logger.Logger
}

// Variants returns the built-in descriptors in registration order.
func Variants() []variants.Descriptor {
	none := variants.NoChildren()
	return []variants.Descriptor{
		{
			Type: pages.VariantRichText,
			Name: "Rich text page",
			New:  func() pages.Payload { return &pages.RichTextPage{} },
		},
		{
			Type:     pages.VariantLink,
			Name:     "Link",
			New:      func() pages.Payload { return &pages.LinkPage{} },
			Children: &none,
		},
		{
			Type:     pages.VariantForm,
			Name:     "Form",
			New:      func() pages.Payload { return &pages.FormPage{} },
			Children: &none,
		},
	}
}

func Register(vr *variants.Registry, pr *processors.Registry, deps Deps) error {
	for _, d := range Variants() {
		if err := vr.Register(d); err != nil {
			return err
		}
	}
	log := deps.Log.With("service", "BuiltinPages")

	if deps.Markup != nil {
		if err := pr.RegisterForType(pages.VariantRichText, processors.New("richtext.render", richText(deps.Markup))); err != nil {
			return err
		}
	}
	if err := pr.RegisterForType(pages.VariantLink, processors.New("link.redirect", linkRedirect)); err != nil {
		return err
	}
	forms := &formHandler{tree: deps.Tree, entries: deps.Entries, log: log}
	if err := pr.RegisterForType(pages.VariantForm, processors.New("form.handle", forms.handle)); err != nil {
		return err
	}
	if deps.Tree != nil && deps.Entries != nil {
		deps.Tree.OnDelete(forms.dropEntries)
	}
	return nil
}

func richText(r *markup.Renderer) processors.HandlerFunc {
	return func(_ context.Context, _ *processors.Request, target processors.Target) (processors.Result, error) {
		p, ok := target.Payload.(*pages.RichTextPage)
		if !ok {
			return processors.Result{}, fmt.Errorf("unexpected payload %T", target.Payload)
		}
		html, err := r.Render(p.Content)
		if err != nil {
			return processors.Result{}, err
		}
		return processors.Merge(map[string]any{"content_html": html}), nil
	}
}

func linkRedirect(_ context.Context, _ *processors.Request, target processors.Target) (processors.Result, error) {
	p, ok := target.Payload.(*pages.LinkPage)
	if !ok {
		return processors.Result{}, fmt.Errorf("unexpected payload %T", target.Payload)
	}
	if strings.TrimSpace(p.URL) == "" {
		return processors.Result{}, fmt.Errorf("link %s has no url", target.Node.ID)
	}
	return processors.Respond(http.RedirectHandler(p.URL, http.StatusFound)), nil
}

type formHandler struct {
	tree    *tree.Tree
	entries repos.FormEntryRepo
	log     *logger.Logger
}

func (h *formHandler) handle(ctx context.Context, req *processors.Request, target processors.Target) (processors.Result, error) {
	form, ok := target.Payload.(*pages.FormPage)
	if !ok {
		return processors.Result{}, fmt.Errorf("unexpected payload %T", target.Payload)
	}
	fields, err := form.FieldList()
	if err != nil {
		return processors.Result{}, err
	}
	out := map[string]any{"form": form, "form_fields": fields}

	if req == nil || req.HTTP == nil || req.HTTP.Method != http.MethodPost {
		if req != nil && req.HTTP != nil && req.HTTP.URL.Query().Get("sent") == "1" {
			out["form_sent"] = true
			out["form_response"] = form.Response
		}
		return processors.Merge(out), nil
	}

	if err := req.HTTP.ParseForm(); err != nil {
		return processors.Result{}, fmt.Errorf("%w: %v", pages.ErrInvalidInput, err)
	}
	values, problems := validate(fields, req.HTTP.PostForm)
	if len(problems) > 0 {
		out["form_errors"] = problems
		out["form_values"] = values
		return processors.Merge(out), nil
	}

	raw, err := json.Marshal(values)
	if err != nil {
		return processors.Result{}, err
	}
	err = h.tree.Atomically(ctx, target.Node.ID, func(dbc dbctx.Context, node *pages.Node) error {
		return h.entries.Create(dbc, &pages.FormEntry{NodeID: node.ID, Values: datatypes.JSON(raw)})
	})
	if err != nil {
		return processors.Result{}, err
	}
	observability.Current().IncFormEntry()
	h.log.Info("Form submitted", "node_id", target.Node.ID, "form_values", values)

	next := url.URL{Path: "/" + target.Path, RawQuery: "sent=1"}
	return processors.Respond(http.RedirectHandler(next.String(), http.StatusSeeOther)), nil
}

var fieldValidator = validator.New()

// fieldRules maps a form field to validator tags.
func fieldRules(f pages.FormField) string {
	switch {
	case f.Kind == pages.FieldEmail && f.Required:
		return "required,email"
	case f.Kind == pages.FieldEmail:
		return "omitempty,email"
	case f.Required:
		return "required"
	default:
		return ""
	}
}

func validate(fields []pages.FormField, posted url.Values) (map[string]any, map[string]string) {
	values := make(map[string]any, len(fields))
	problems := map[string]string{}
	for _, f := range fields {
		v := strings.TrimSpace(posted.Get(f.Name))
		if f.Kind == pages.FieldCheckbox {
			values[f.Name] = v != ""
		} else {
			values[f.Name] = v
		}
		rules := fieldRules(f)
		if rules == "" {
			continue
		}
		var verrs validator.ValidationErrors
		if err := fieldValidator.Var(v, rules); errors.As(err, &verrs) && len(verrs) > 0 {
			problems[f.Name] = problemText(verrs[0].Tag())
		}
	}
	return values, problems
}

func problemText(tag string) string {
	switch tag {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	default:
		return "Enter a valid value."
	}
}

func (h *formHandler) dropEntries(dbc dbctx.Context, removed []*pages.Node) error {
	var ids []uuid.UUID
	for _, n := range removed {
		if n.VariantType == pages.VariantForm {
			ids = append(ids, n.ID)
		}
	}
	return h.entries.DeleteByNodes(dbc, ids)
}
