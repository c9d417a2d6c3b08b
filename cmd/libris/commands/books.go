package commands

import (
	"fmt"
	"strconv"

	"libris/cmd/libris/output"
	"libris/internal/domain/entity"

	"github.com/spf13/cobra"
)

func newBooksCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Browse the catalog",
	}

	cmd.AddCommand(
		newBooksListCommand(deps),
		newBooksSearchCommand(deps),
		newBooksShowCommand(deps),
		newBooksRecommendCommand(deps),
	)

	return cmd
}

func newBooksListCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all books",
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := deps.Catalog.ListBooks(cmd.Context())
			if err != nil {
				return err
			}

			renderBooks(books)

			return nil
		},
	}
}

func newBooksSearchCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search books by title, author or ISBN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := deps.Catalog.SearchBooks(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(books) == 0 {
				output.Muted("no books matched %q", args[0])

				return nil
			}

			renderBooks(books)

			return nil
		},
	}
}

func newBooksShowCommand(deps Deps) *cobra.Command {
	var showQR bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one book",
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

			output.Primary("%s", book.Title)
			output.Muted("by %s · %s · %d", book.Author.Name, book.Category.Name, book.PublishedYear)
			if book.Description != "" {
				fmt.Println(book.Description)
			}
			output.Info("ISBN %s · %d in stock %s", book.ISBN, book.StockAvailable, output.StatusIcon(string(book.Status)))

			reviews, err := deps.Reviews.BookReviews(cmd.Context(), id)
			if err == nil && len(reviews) > 0 {
				output.Muted("%d review(s)", len(reviews))
			}

			if showQR {
				art, err := deps.QRCode.BookShareTerminal(id)
				if err != nil {
					output.Warning("could not render share code: %v", err)
				} else {
					fmt.Println(art)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&showQR, "qr", false, "Render a shareable QR code for the book page")

	return cmd
}

func newBooksRecommendCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend",
		Short: "Show recommended books",
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := deps.Catalog.RecommendedBooks(cmd.Context())
			if err != nil {
				return err
			}

			renderBooks(books)

			return nil
		},
	}
}

func newAuthorsCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "authors",
		Short: "Browse authors",
		RunE: func(cmd *cobra.Command, args []string) error {
			authors, err := deps.Catalog.ListAuthors(cmd.Context())
			if err != nil {
				return err
			}

			rows := [][]string{{"ID", "NAME"}}
			for _, a := range authors {
				rows = append(rows, []string{strconv.FormatInt(a.ID, 10), a.Name})
			}
			output.Table(rows)

			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "books <id>",
		Short: "List an author's books",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid author id %q", args[0])
			}

			books, err := deps.Catalog.AuthorBooks(cmd.Context(), id)
			if err != nil {
				return err
			}

			renderBooks(books)

			return nil
		},
	})

	return cmd
}

func newCategoriesCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			categories, err := deps.Catalog.ListCategories(cmd.Context())
			if err != nil {
				return err
			}

			rows := [][]string{{"ID", "NAME"}}
			for _, cat := range categories {
				rows = append(rows, []string{strconv.FormatInt(cat.ID, 10), cat.Name})
			}
			output.Table(rows)

			return nil
		},
	}
}

func renderBooks(books []entity.Book) {
	rows := [][]string{{"ID", "TITLE", "AUTHOR", "CATEGORY", "STOCK", ""}}
	for _, b := range books {
		rows = append(rows, []string{
			strconv.FormatInt(b.ID, 10),
			b.Title,
			b.Author.Name,
			b.Category.Name,
			strconv.Itoa(b.StockAvailable),
			output.StatusIcon(string(b.Status)),
		})
	}
	output.Table(rows)
}
