package main

import (
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/pagetree/internal/domain/pages"
	pagesmod "github.com/yungbote/pagetree/internal/modules/pages"
)

var seedPrincipal = pages.Principal{
	UserID:        uuid.MustParse("5eed0000-0000-0000-0000-000000000000"),
	Authenticated: true,
	Staff:         true,
	Superuser:     true,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a small demo site when the tree is empty",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := open(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cmd.Context()

		if _, err := a.Services.Tree.ResolveByPath(ctx, a.Cfg.Tree.HomeSlug); err == nil {
			a.Log.Info("Site already has a home page; nothing to seed")
			return nil
		} else if !errors.Is(err, pages.ErrNotFound) {
			return err
		}

		uc := a.Services.Pages
		home, err := uc.CreatePage(ctx, seedPrincipal, pagesmod.CreatePageInput{
			VariantType: pages.VariantRichText,
			Title:       "Home",
			Slug:        a.Cfg.Tree.HomeSlug,
			Status:      pages.StatusPublished,
			Content:     mustJSON(map[string]any{"content": "# Welcome\n\nThis site was seeded by `pagetree seed`."}),
		})
		if err != nil {
			return err
		}
		children := []pagesmod.CreatePageInput{
			{
				VariantType: pages.VariantRichText,
				Title:       "About",
				Content:     mustJSON(map[string]any{"content": "We build *trees*."}),
			},
			{
				VariantType: pages.VariantForm,
				Title:       "Contact",
				Content: mustJSON(map[string]any{
					"intro":       "Send us a note.",
					"response":    "Thanks, we got your message.",
					"button_text": "Send",
					"fields": []pages.FormField{
						{Name: "name", Label: "Name", Kind: pages.FieldText, Required: true},
						{Name: "email", Label: "Email", Kind: pages.FieldEmail, Required: true},
						{Name: "message", Label: "Message", Kind: pages.FieldTextarea},
					},
				}),
			},
			{
				VariantType: pages.VariantLink,
				Title:       "Source",
				Content:     mustJSON(map[string]any{"url": "https://github.com/yungbote/pagetree"}),
			},
		}
		for _, in := range children {
			in.ParentID = &home.Node.ID
			in.Status = pages.StatusPublished
			if _, err := uc.CreatePage(ctx, seedPrincipal, in); err != nil {
				return err
			}
		}
		a.Log.Info("Seeded demo site", "home", home.Node.ID)
		return nil
	},
}

func mustJSON(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return raw
}
