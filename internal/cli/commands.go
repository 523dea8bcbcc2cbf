package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"expenses/internal/budget"
	"expenses/internal/core"
	"expenses/internal/session"
)

func (a *app) newAddCmd() *cobra.Command {
	var date, category, amount, description string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense and save",
		Long: `Record one expense and save it immediately.

Example:
  expenses add --date 2025-03-14 --category Food --amount 12.50 --description lunch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := core.ParsePositiveAmount(amount)
			if err != nil {
				return err
			}
			if date == "" {
				date = a.clock.Now().Format(core.DateLayout)
			}
			return a.withSession(cmd.Context(), func(s *session.Session) error {
				if _, err := s.AddExpense(date, category, d, description); err != nil {
					return err
				}
				if err := s.Save(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Expense added successfully.")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "expense date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&category, "category", "", "expense category (required)")
	cmd.Flags().StringVar(&amount, "amount", "", "positive amount (required)")
	cmd.Flags().StringVar(&description, "description", "", "free-text description")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func (a *app) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all recorded expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd.Context(), func(s *session.Session) error {
				for _, line := range s.View() {
					fmt.Fprintln(cmd.OutOrStdout(), line)
				}
				return nil
			})
		},
	}
}

func (a *app) newTrackCmd() *cobra.Command {
	var byCategory bool

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Compare this month's spending with the budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd.Context(), func(s *session.Session) error {
				t, diags, err := s.Track()
				if errors.Is(err, budget.ErrBudgetNotSet) {
					return fmt.Errorf("%w: run 'expenses budget set <amount>' first", err)
				}
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, d := range diags {
					fmt.Fprintln(out, d.String())
				}
				for _, line := range t.Lines() {
					fmt.Fprintln(out, line)
				}
				if byCategory && len(t.ByCategory) > 0 {
					fmt.Fprintln(out, "By category:")
					for _, line := range t.CategoryLines() {
						fmt.Fprintln(out, line)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&byCategory, "by-category", false, "also show this month's total per category")
	return cmd
}

func (a *app) newBudgetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "budget",
		Short: "Show or set the monthly budget",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <amount>",
		Short: "Set the monthly budget, replacing any previous value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := core.ParseAmount(args[0])
			if err != nil {
				return err
			}
			return a.withSession(cmd.Context(), func(s *session.Session) error {
				if err := s.SetBudget(v); err != nil {
					return err
				}
				if err := s.Save(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Monthly budget set to %s\n", core.FormatAmount(v))
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the monthly budget",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withSession(cmd.Context(), func(s *session.Session) error {
				b := s.Budget()
				if !b.IsSet() {
					fmt.Fprintln(cmd.OutOrStdout(), "Monthly budget: not set")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Monthly budget: %s\n", core.FormatAmount(b.Value()))
				return nil
			})
		},
	})

	return cmd
}
