package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"finanzas-be/internal/database"
	"finanzas-be/internal/service"
)

func migrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := database.RunMigrations(cmd.Context(), a.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
			return nil
		},
	}
}

func seedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert any missing predefined categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			inserted, err := a.categories.EnsureSeeded(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Inserted %d predefined categories\n", inserted)
			return nil
		},
	}
}

type reportOptions struct {
	username string
	year     int
	month    int
}

// month resolves the flags against the current month; zero means current.
func (o reportOptions) resolve(current service.Month) (service.Month, error) {
	m := current
	if o.year != 0 {
		m.Year = o.year
	}
	if o.month != 0 {
		m.Month = time.Month(o.month)
	}
	if !m.Valid() {
		return m, fmt.Errorf("invalid month %d-%02d", m.Year, int(m.Month))
	}
	return m, nil
}

func reportCmd(opts *rootOptions) *cobra.Command {
	ro := reportOptions{}

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a user's monthly report",
		Example: `  finanzas report --user ana
  finanzas report --user ana --year 2025 --month 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, opts, false)
			if err != nil {
				return err
			}
			defer a.Close()

			month, err := ro.resolve(a.reports.CurrentMonth())
			if err != nil {
				return err
			}
			user, err := a.users.GetByUsername(ctx, ro.username)
			if err != nil {
				return fmt.Errorf("user %q: %w", ro.username, err)
			}

			text, err := a.reports.RenderTextReport(ctx, user.ID, month)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), text)
			return nil
		},
	}

	cmd.Flags().StringVar(&ro.username, "user", "", "username to report on")
	cmd.Flags().IntVar(&ro.year, "year", 0, "year (default: current)")
	cmd.Flags().IntVar(&ro.month, "month", 0, "month 1-12 (default: current)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func userCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage user accounts",
	}

	setActive := func(use, short string, active bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <username>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := cmd.Context()
				a, err := newApp(ctx, opts, false)
				if err != nil {
					return err
				}
				defer a.Close()

				user, err := a.users.GetByUsername(ctx, args[0])
				if err != nil {
					return fmt.Errorf("user %q: %w", args[0], err)
				}
				if active {
					err = a.users.Activate(ctx, user.ID)
				} else {
					err = a.users.Deactivate(ctx, user.ID)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %s %sd\n", user.Username, use)
				return nil
			},
		}
	}

	cmd.AddCommand(
		setActive("activate", "Allow a user to log in again", true),
		setActive("deactivate", "Stop a user from logging in", false),
	)
	return cmd
}
