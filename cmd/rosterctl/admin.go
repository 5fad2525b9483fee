package main

import (
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/roster/account"
	"github.com/spf13/cobra"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage administrator accounts",
	}
	cmd.AddCommand(
		newAdminRegisterCmd(a),
		newAdminLoginCmd(a),
		newAdminListCmd(a),
		newAdminDeleteCmd(a),
	)
	return cmd
}

func newAdminRegisterCmd(a *app) *cobra.Command {
	var fullName, password string
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an administrator account",
		Long: `The register command creates an account. The password is stored as a
bcrypt hash only.

Example:
  rosterctl admin register grace --full-name "Grace Hopper" --password s3cret`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := a.admins.Register(cmd.Context(), fullName, args[0], password)
			if err != nil {
				return err
			}
			return a.printAdmins(cmd.OutOrStdout(), admin)
		},
	}
	cmd.Flags().StringVar(&fullName, "full-name", "", "Full name")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newAdminLoginCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Check an administrator's credentials",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			admin, err := a.admins.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "welcome, %s\n", displayName(admin))
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "Password")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newAdminListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List administrator accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.printAdmins(cmd.OutOrStdout(), a.admins.All()...)
		},
	}
}

func newAdminDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <username>",
		Short: "Delete an administrator account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.admins.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("admin %q not found", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted admin %s\n", args[0])
			return nil
		},
	}
}

func displayName(a account.Admin) string {
	if a.FullName != "" {
		return a.FullName
	}
	return a.Username
}

// adminView is the printable form of an Admin. The password hash is never
// printed.
type adminView struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *app) printAdmins(w io.Writer, admins ...account.Admin) error {
	views := make([]adminView, 0, len(admins))
	for _, ad := range admins {
		views = append(views, adminView{ID: ad.ID, Username: ad.Username, FullName: ad.FullName, CreatedAt: ad.CreatedAt})
	}

	if a.jsonOut {
		return printJSON(w, views)
	}
	if len(views) == 0 {
		fmt.Fprintln(w, "no admins")
		return nil
	}
	fmt.Fprintf(w, "%-16s %-24s %-36s %s\n", "USERNAME", "FULL NAME", "ID", "CREATED")
	for _, v := range views {
		fmt.Fprintf(w, "%-16s %-24s %-36s %s\n", v.Username, v.FullName, v.ID, v.CreatedAt.Format(time.RFC3339))
	}
	return nil
}
