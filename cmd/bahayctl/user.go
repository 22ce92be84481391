package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	profiledomain "bahayscout/backend/internal/profile/domain"
)

func newUserCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	var email, role string
	setRole := &cobra.Command{
		Use:     "set-role",
		Short:   "Change the role of an account (buyer, lister, admin)",
		PreRunE: a.ensure,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := profiledomain.ParseRole(role)
			if err != nil {
				return err
			}
			p, err := a.profileByEmail(cmd.Context(), email)
			if err != nil {
				return err
			}
			if p, err = a.profiles.SetRole(cmd.Context(), p.ID, r); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", email, p.Role)
			return nil
		},
	}
	setRole.Flags().StringVar(&email, "email", "", "account email")
	setRole.Flags().StringVar(&role, "role", "", "buyer, lister or admin")
	_ = setRole.MarkFlagRequired("email")
	_ = setRole.MarkFlagRequired("role")

	var verifyEmail string
	var unverify bool
	verify := &cobra.Command{
		Use:     "verify",
		Short:   "Grant (or with --revoke remove) the verified badge",
		PreRunE: a.ensure,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := a.profileByEmail(cmd.Context(), verifyEmail)
			if err != nil {
				return err
			}
			if p, err = a.profiles.SetVerified(cmd.Context(), p.ID, !unverify); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s verified=%v\n", verifyEmail, p.IsVerified)
			return nil
		},
	}
	verify.Flags().StringVar(&verifyEmail, "email", "", "account email")
	verify.Flags().BoolVar(&unverify, "revoke", false, "remove the badge instead")
	_ = verify.MarkFlagRequired("email")

	cmd.AddCommand(setRole, verify)
	return cmd
}

func (a *app) profileByEmail(ctx context.Context, email string) (*profiledomain.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := a.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("no account with email %s", email)
	}
	p, err := a.profiles.GetByUserID(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("account %s has no profile", email)
	}
	return p, nil
}
