package commands

import (
	"fmt"
	"strconv"
	"strings"

	"libris/cmd/libris/output"
	"libris/internal/usecase"

	"github.com/spf13/cobra"
)

func newReviewsCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Manage your reviews",
	}

	cmd.AddCommand(
		newReviewsMineCommand(deps),
		newReviewsBookCommand(deps),
		newReviewsWriteCommand(deps),
		newReviewsDeleteCommand(deps),
	)

	return cmd
}

func newReviewsMineCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List your reviews",
		RunE: func(cmd *cobra.Command, args []string) error {
			reviews, err := deps.Reviews.MyReviews(cmd.Context())
			if err != nil {
				return err
			}
			if len(reviews) == 0 {
				output.Muted("no reviews yet")

				return nil
			}

			rows := [][]string{{"ID", "BOOK", "RATING", "COMMENT"}}
			for _, r := range reviews {
				rows = append(rows, []string{
					strconv.FormatInt(r.ID, 10),
					r.Book.Title,
					stars(r.Rating),
					r.Comment,
				})
			}
			output.Table(rows)

			return nil
		},
	}
}

func newReviewsBookCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "book <book-id>",
		Short: "List a book's reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			reviews, err := deps.Reviews.BookReviews(cmd.Context(), id)
			if err != nil {
				return err
			}
			if len(reviews) == 0 {
				output.Muted("no reviews for book %d", id)

				return nil
			}

			for _, r := range reviews {
				output.Primary("%s", stars(r.Rating))
				if r.Comment != "" {
					fmt.Println(r.Comment)
				}
			}

			return nil
		},
	}
}

func newReviewsWriteCommand(deps Deps) *cobra.Command {
	var (
		bookID  int64
		rating  int
		comment string
	)

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Write or update your review of a book",
		RunE: func(cmd *cobra.Command, args []string) error {
			review, err := deps.Reviews.Upsert(cmd.Context(), &usecase.UpsertReviewInput{
				BookID:  bookID,
				Rating:  rating,
				Comment: comment,
			})
			if err != nil {
				return err
			}

			output.Success("review saved: %s", stars(review.Rating))

			return nil
		},
	}

	cmd.Flags().Int64Var(&bookID, "book", 0, "Book ID")
	cmd.Flags().IntVar(&rating, "rating", 0, "Rating from 1 to 5")
	cmd.Flags().StringVar(&comment, "comment", "", "Review text")
	cmd.MarkFlagRequired("book")
	cmd.MarkFlagRequired("rating")

	return cmd
}

func newReviewsDeleteCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <review-id>",
		Short: "Delete one of your reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid review id %q", args[0])
			}

			if err := deps.Reviews.Delete(cmd.Context(), id); err != nil {
				return err
			}

			output.Success("review deleted")

			return nil
		},
	}
}

func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}

	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}
