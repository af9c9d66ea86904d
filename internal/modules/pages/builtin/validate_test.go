package builtin

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/pagetree/internal/domain/pages"
)

func TestValidateFieldRules(t *testing.T) {
	fields := []pages.FormField{
		{Name: "name", Kind: pages.FieldText, Required: true},
		{Name: "work_email", Kind: pages.FieldEmail},
		{Name: "email", Kind: pages.FieldEmail, Required: true},
		{Name: "notes", Kind: pages.FieldTextarea},
	}

	cases := []struct {
		name     string
		posted   url.Values
		problems map[string]string
	}{
		{
			name:     "all valid, optional email empty",
			posted:   url.Values{"name": {"Ada"}, "email": {"ada@example.com"}},
			problems: map[string]string{},
		},
		{
			name:   "missing required and bad optional email",
			posted: url.Values{"work_email": {"nope"}, "email": {"  "}},
			problems: map[string]string{
				"name":       "This field is required.",
				"work_email": "Enter a valid email address.",
				"email":      "This field is required.",
			},
		},
		{
			name:     "required email malformed",
			posted:   url.Values{"name": {"Ada"}, "email": {"ada@"}},
			problems: map[string]string{"email": "Enter a valid email address."},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, problems := validate(fields, tc.posted)
			require.Equal(t, tc.problems, problems)
		})
	}
}
