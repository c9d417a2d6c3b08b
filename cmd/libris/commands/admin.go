package commands

import (
	"fmt"
	"strconv"

	"libris/cmd/libris/output"
	"libris/internal/usecase"

	"github.com/spf13/cobra"
)

func newAdminCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Dashboard operations (admin accounts only)",
	}

	cmd.AddCommand(
		newAdminOverviewCommand(deps),
		newAdminLoansCommand(deps),
		newAdminBookCommand(deps),
		newAdminAuthorCommand(deps),
		newAdminCategoryCommand(deps),
	)

	return cmd
}

func newAdminOverviewCommand(deps Deps) *cobra.Command {
	return &cobra.Command{
		Use:   "overview",
		Short: "Show the dashboard numbers",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := deps.Admin.Overview(cmd.Context())
			if err != nil {
				return err
			}

			output.Table([][]string{
				{"BOOKS", "USERS", "ACTIVE LOANS", "OVERDUE"},
				{
					strconv.Itoa(stats.TotalBooks),
					strconv.Itoa(stats.TotalUsers),
					strconv.Itoa(stats.ActiveLoans),
					strconv.Itoa(stats.OverdueLoans),
				},
			})

			return nil
		},
	}
}

func newAdminLoansCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "List every loan",
		RunE: func(cmd *cobra.Command, args []string) error {
			loans, err := deps.Admin.Loans(cmd.Context())
			if err != nil {
				return err
			}

			rows := [][]string{{"ID", "TITLE", "DUE", "STATUS"}}
			for _, loan := range loans {
				rows = append(rows, []string{
					strconv.FormatInt(loan.ID, 10),
					loan.Book.Title,
					loan.DueAt.Format("2006-01-02"),
					string(loan.Status),
				})
			}
			output.Table(rows)

			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "return <loan-id>",
		Short: "Mark a loan returned on the member's behalf",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid loan id %q", args[0])
			}

			if err := deps.Admin.ReturnLoan(cmd.Context(), id); err != nil {
				return err
			}

			output.Success("loan %d returned", id)

			return nil
		},
	})

	return cmd
}

func newAdminBookCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "book",
		Short: "Manage inventory",
	}

	var (
		title, author, isbn, description, cover string
		categoryID                              int64
		stock, year                             int
	)

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the inventory",
		RunE: func(cmd *cobra.Command, args []string) error {
			book, err := deps.Admin.AddBook(cmd.Context(), &usecase.AddBookInput{
				Title:          title,
				Author:         author,
				ISBN:           isbn,
				CategoryID:     categoryID,
				Description:    description,
				StockAvailable: stock,
				PublishedYear:  year,
				CoverImage:     cover,
			})
			if err != nil {
				return err
			}

			output.Success("book %d added: %s", book.ID, book.Title)

			return nil
		},
	}
	add.Flags().StringVar(&title, "title", "", "Book title")
	add.Flags().StringVar(&author, "author", "", "Author name")
	add.Flags().StringVar(&isbn, "isbn", "", "ISBN")
	add.Flags().Int64Var(&categoryID, "category", 0, "Category ID")
	add.Flags().StringVar(&description, "description", "", "Description")
	add.Flags().IntVar(&stock, "stock", 1, "Copies in stock")
	add.Flags().IntVar(&year, "year", 0, "Published year")
	add.Flags().StringVar(&cover, "cover", "", "Cover image URL")
	add.MarkFlagRequired("title")
	add.MarkFlagRequired("author")
	add.MarkFlagRequired("isbn")
	add.MarkFlagRequired("category")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			input := &usecase.UpdateBookInput{}
			if cmd.Flags().Changed("title") {
				input.Title = &title
			}
			if cmd.Flags().Changed("author") {
				input.Author = &author
			}
			if cmd.Flags().Changed("isbn") {
				input.ISBN = &isbn
			}
			if cmd.Flags().Changed("category") {
				input.CategoryID = &categoryID
			}
			if cmd.Flags().Changed("description") {
				input.Description = &description
			}
			if cmd.Flags().Changed("stock") {
				input.StockAvailable = &stock
			}
			if cmd.Flags().Changed("year") {
				input.PublishedYear = &year
			}
			if cmd.Flags().Changed("cover") {
				input.CoverImage = &cover
			}

			book, err := deps.Admin.UpdateBook(cmd.Context(), id, input)
			if err != nil {
				return err
			}

			output.Success("book %d updated", book.ID)

			return nil
		},
	}
	update.Flags().StringVar(&title, "title", "", "Book title")
	update.Flags().StringVar(&author, "author", "", "Author name")
	update.Flags().StringVar(&isbn, "isbn", "", "ISBN")
	update.Flags().Int64Var(&categoryID, "category", 0, "Category ID")
	update.Flags().StringVar(&description, "description", "", "Description")
	update.Flags().IntVar(&stock, "stock", 0, "Copies in stock")
	update.Flags().IntVar(&year, "year", 0, "Published year")
	update.Flags().StringVar(&cover, "cover", "", "Cover image URL")

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid book id %q", args[0])
			}

			if err := deps.Admin.DeleteBook(cmd.Context(), id); err != nil {
				return err
			}

			output.Success("book %d deleted", id)

			return nil
		},
	}

	cmd.AddCommand(add, update, remove)

	return cmd
}

func newAdminAuthorCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "author",
		Short: "Manage authors",
	}

	var name, bio string

	add := &cobra.Command{
		Use:   "add",
		Short: "Add an author",
		RunE: func(cmd *cobra.Command, args []string) error {
			author, err := deps.Admin.AddAuthor(cmd.Context(), name, bio)
			if err != nil {
				return err
			}

			output.Success("author %d added: %s", author.ID, author.Name)

			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "Author name")
	add.Flags().StringVar(&bio, "bio", "", "Short biography")
	add.MarkFlagRequired("name")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid author id %q", args[0])
			}

			author, err := deps.Admin.UpdateAuthor(cmd.Context(), id, name, bio)
			if err != nil {
				return err
			}

			output.Success("author %d updated", author.ID)

			return nil
		},
	}
	update.Flags().StringVar(&name, "name", "", "Author name")
	update.Flags().StringVar(&bio, "bio", "", "Short biography")

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an author",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid author id %q", args[0])
			}

			if err := deps.Admin.DeleteAuthor(cmd.Context(), id); err != nil {
				return err
			}

			output.Success("author %d deleted", id)

			return nil
		},
	}

	cmd.AddCommand(add, update, remove)

	return cmd
}

func newAdminCategoryCommand(deps Deps) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "category",
		Short: "Manage categories",
	}

	var name string

	add := &cobra.Command{
		Use:   "add",
		Short: "Add a category",
		RunE: func(cmd *cobra.Command, args []string) error {
			category, err := deps.Admin.AddCategory(cmd.Context(), name)
			if err != nil {
				return err
			}

			output.Success("category %d added: %s", category.ID, category.Name)

			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "Category name")
	add.MarkFlagRequired("name")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category id %q", args[0])
			}

			category, err := deps.Admin.UpdateCategory(cmd.Context(), id, name)
			if err != nil {
				return err
			}

			output.Success("category %d renamed to %s", category.ID, category.Name)

			return nil
		},
	}
	update.Flags().StringVar(&name, "name", "", "Category name")
	update.MarkFlagRequired("name")

	remove := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid category id %q", args[0])
			}

			if err := deps.Admin.DeleteCategory(cmd.Context(), id); err != nil {
				return err
			}

			output.Success("category %d deleted", id)

			return nil
		},
	}

	cmd.AddCommand(add, update, remove)

	return cmd
}
