package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/pagetree/internal/domain/pages"
	"github.com/yungbote/pagetree/internal/platform/authtoken"
)

var tokenFlags struct {
	user      string
	staff     bool
	superuser bool
	perms     []string
	ttl       time.Duration
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development bearer token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, _, err := bootstrap()
		if err != nil {
			return err
		}
		if cfg.Auth.JWTSecret == "" {
			return errors.New("JWT_SECRET_KEY (or auth.jwt_secret) must be set")
		}
		signer, err := authtoken.NewSigner(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
		if err != nil {
			return err
		}
		userID := uuid.New()
		if tokenFlags.user != "" {
			if userID, err = uuid.Parse(tokenFlags.user); err != nil {
				return fmt.Errorf("--user: %w", err)
			}
		}
		tok, err := signer.Issue(pages.Principal{
			UserID:      userID,
			Staff:       tokenFlags.staff || tokenFlags.superuser,
			Superuser:   tokenFlags.superuser,
			Permissions: tokenFlags.perms,
		}, tokenFlags.ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	f := tokenCmd.Flags()
	f.StringVar(&tokenFlags.user, "user", "", "user id (random when empty)")
	f.BoolVar(&tokenFlags.staff, "staff", false, "mark the principal as staff")
	f.BoolVar(&tokenFlags.superuser, "superuser", false, "grant every permission")
	f.StringSliceVar(&tokenFlags.perms, "perm", nil, "permission to grant, e.g. pages.change_node (repeatable)")
	f.DurationVar(&tokenFlags.ttl, "ttl", 24*time.Hour, "token lifetime")
}
