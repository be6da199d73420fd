package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"suryawash/internal/domain"
	"suryawash/internal/modules/admin"

	"github.com/spf13/cobra"
)

func newUsersCmd(app *cliApp) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Inspect and manage users",
	}
	cmd.AddCommand(newUsersListCmd(app))
	cmd.AddCommand(newUsersExportCmd(app))
	cmd.AddCommand(newUsersStatusCmd(app))
	cmd.AddCommand(newUsersMembershipCmd(app))
	return cmd
}

func newUsersListCmd(app *cliApp) *cobra.Command {
	var search, membership, status string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List users, newest first",
		Long: `List users with optional search and filters.

Example:
  washctl users list --search ravi --membership yearly --status active`,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, shown, err := app.admin.QueryUsers(cmd.Context(), search, membership, status)
			if err != nil {
				return fmt.Errorf("failed to list users: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPLAN\tMEMBERSHIP\tACCOUNT\tJOINED")
			for _, u := range shown {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					u.ID, u.FullName, u.Email, admin.FormatMembershipPlan(u.PlanKey()),
					u.MembershipStatus, u.AccountStatus, admin.FormatDate(&u.CreatedAt))
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d users\n", len(shown), len(all))
			return nil
		},
	}
	cmd.Flags().StringVar(&search, "search", "", "match name, email, phone or plan")
	cmd.Flags().StringVar(&membership, "membership", "all", "plan key or all")
	cmd.Flags().StringVar(&status, "status", "all", "active, inactive or all")
	return cmd
}

func newUsersExportCmd(app *cliApp) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export all users as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			users, err := app.admin.ListUsers(cmd.Context())
			if err != nil {
				return fmt.Errorf("export users: %w", err)
			}
			data := admin.ExportCSV(users)

			if out == "-" {
				_, err := cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if out == "" {
				out = admin.ExportFilename(time.Now())
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("export users: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Users exported successfully! (%s, %d users)\n", out, len(users))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file, - for stdout (default users_export_<date>.csv)")
	return cmd
}

func newUsersStatusCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "status <user-id> <active|inactive>",
		Short: "Activate or deactivate an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := domain.AccountStatus(args[1])
			if err := app.admin.UpdateUserAccountStatus(cmd.Context(), args[0], status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Account %s is now %s\n", args[0], status)
			return nil
		},
	}
}

func newUsersMembershipCmd(app *cliApp) *cobra.Command {
	var clear bool
	cmd := &cobra.Command{
		Use:   "membership <user-id> [plan]",
		Short: "Set or clear a user's membership plan",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var plan *string
			switch {
			case clear:
			case len(args) == 2:
				plan = &args[1]
			default:
				return fmt.Errorf("give a plan or --clear")
			}
			if err := app.admin.UpdateUserMembership(cmd.Context(), args[0], plan); err != nil {
				return err
			}
			label := "None"
			if plan != nil {
				label = admin.FormatMembershipPlan(*plan)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Membership of %s set to %s\n", args[0], label)
			return nil
		},
	}
	cmd.Flags().BoolVar(&clear, "clear", false, "remove the membership")
	return cmd
}
