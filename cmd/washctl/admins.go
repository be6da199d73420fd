package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newAdminsCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admins",
		Short: "Grant, revoke and list administrators",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "grant <email>",
		Short: "Make the user with this email an administrator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.admin.GrantAdmin(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Granted admin to %s (%s)\n", a.Email, a.UserID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "revoke <email>",
		Short: "Remove administrator rights",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.admin.RevokeAdmin(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Revoked admin from %s\n", args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List administrators",
		RunE: func(cmd *cobra.Command, args []string) error {
			admins, err := app.admin.ListAdmins(cmd.Context())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "USER ID\tEMAIL\tNAME")
			for _, a := range admins {
				fmt.Fprintf(w, "%s\t%s\t%s\n", a.UserID, a.Email, a.Name)
			}
			return w.Flush()
		},
	})
	return cmd
}
