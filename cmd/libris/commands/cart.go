package commands

import (
	"fmt"
	"strconv"
	"time"

	"libris/cmd/libris/output"
	"libris/internal/usecase"

	"github.com/spf13/cobra"
)

func newCartCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Manage the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := deps.Cart.Items(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				output.Muted("cart is empty")

				return nil
			}

			rows := [][]string{{"ITEM", "BOOK", "TITLE", "QTY"}}
			for _, it := range items {
				itemID := strconv.FormatInt(it.ID, 10)
				if it.Provisional() {
					itemID = "pending"
				}
				rows = append(rows, []string{
					itemID,
					strconv.FormatInt(it.Book.ID, 10),
					it.Book.Title,
					strconv.Itoa(it.Quantity),
				})
			}
			output.Table(rows)
			output.Muted("%d item(s) in cart", deps.Cart.Quantity(cmd.Context()))

			return nil
		},
	}

	cmd.AddCommand(
		newCartAddCommand(deps),
		newCartRemoveCommand(deps),
		newCartQuantityCommand(deps),
		newCartClearCommand(deps),
		newCheckoutCommand(deps),
	)

	return cmd
}

func newCartAddCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "add <book-id>",
		Short: "Add a book to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			book, err := deps.Catalog.GetBook(cmd.Context(), id)
			if err != nil {
				return err
			}

			if err := deps.Cart.Add(cmd.Context(), book); err != nil {
				return err
			}

			output.Success("added %q to cart", book.Title)

			return nil
		},
	}
}

func newCartRemoveCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}

			if err := deps.Cart.Remove(cmd.Context(), id); err != nil {
				return err
			}

			output.Success("removed item %d", id)

			return nil
		},
	}
}

func newCartQuantityCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "qty <item-id> <quantity>",
		Short: "Set a cart line's quantity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid quantity %q", args[1])
			}

			if err := deps.Cart.UpdateQuantity(cmd.Context(), id, qty); err != nil {
				return err
			}

			output.Success("quantity updated")

			return nil
		},
	}
}

func newCartClearCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := deps.Cart.Clear(cmd.Context()); err != nil {
				return err
			}

			output.Success("cart cleared")

			return nil
		},
	}
}

func newCheckoutCommand(deps Deps) *cobra.Command {
	var (
		bookIDs []int64
		date    string
		days    int
	)

	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Borrow the selected cart books",
		RunE: func(cmd *cobra.Command, args []string) error {
			borrowDate := time.Now()
			if date != "" {
				parsed, err := time.Parse("2006-01-02", date)
				if err != nil {
					return fmt.Errorf("invalid borrow date %q, expected YYYY-MM-DD", date)
				}
				borrowDate = parsed
			}

			loans, err := deps.Cart.Checkout(cmd.Context(), &usecase.CheckoutInput{
				BookIDs:      bookIDs,
				BorrowDate:   borrowDate,
				DurationDays: days,
			})
			if err != nil {
				return err
			}

			output.Success("borrowed %d book(s)", len(loans))
			for _, loan := range loans {
				output.Muted("%s due %s", loan.Book.Title, loan.DueAt.Format("2006-01-02"))
			}

			return nil
		},
	}

	cmd.Flags().Int64SliceVar(&bookIDs, "books", nil, "Book IDs to check out")
	cmd.Flags().StringVar(&date, "date", "", "Borrow date (YYYY-MM-DD, defaults to today)")
	cmd.Flags().IntVar(&days, "days", 5, "Loan duration in days (3, 5 or 10)")
	cmd.MarkFlagRequired("books")

	return cmd
}
