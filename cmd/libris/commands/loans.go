package commands

import (
	"fmt"
	"strconv"

	"libris/cmd/libris/output"

	"github.com/spf13/cobra"
)

func newLoansCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "Show your loans",
		RunE: func(cmd *cobra.Command, args []string) error {
			loans, err := deps.Loans.MyLoans(cmd.Context())
			if err != nil {
				return err
			}
			if len(loans) == 0 {
				output.Muted("no loans")

				return nil
			}

			rows := [][]string{{"ID", "TITLE", "BORROWED", "DUE", "STATUS"}}
			for _, loan := range loans {
				rows = append(rows, []string{
					strconv.FormatInt(loan.ID, 10),
					loan.Book.Title,
					loan.BorrowedAt.Format("2006-01-02"),
					loan.DueAt.Format("2006-01-02"),
					output.StatusIcon(string(loan.Status)) + " " + string(loan.Status),
				})
			}
			output.Table(rows)

			return nil
		},
	}

	cmd.AddCommand(
		newBorrowCommand(deps),
		newReturnCommand(deps),
	)

	return cmd
}

func newBorrowCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "borrow <book-id>",
		Short: "Borrow a single book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			if err := deps.Loans.Borrow(cmd.Context(), id); err != nil {
				return err
			}

			output.Success("borrowed book %d", id)

			return nil
		},
	}
}

func newReturnCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "return <loan-id>",
		Short: "Return a loan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid loan id %q", args[0])
			}

			if err := deps.Loans.Return(cmd.Context(), id); err != nil {
				return err
			}

			output.Success("returned loan %d", id)

			return nil
		},
	}
}
