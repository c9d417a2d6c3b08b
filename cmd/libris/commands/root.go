// Package commands wires the storefront usecases into the cobra command tree.
package commands

import (
	"log/slog"

	"libris/internal/domain/service"
	"libris/internal/usecase"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

// Deps defines the required parameters
type Deps struct {
	fx.In

	Session service.SessionState
	Auth    usecase.SessionUsecase
	Catalog usecase.CatalogUsecase
	Cart    usecase.CartUsecase
	Loans   usecase.LoanUsecase
	Reviews usecase.ReviewUsecase
	Admin   usecase.AdminUsecase
	QRCode  service.QRCodeService
	Logger  *slog.Logger
}

// NewRoot builds the root command with every subcommand attached.
func NewRoot(deps Deps) *cobra.Command {
	root := &cobra.Command{
		Use:   "libris",
		Short: "Libris - library storefront client",
		Long: `Libris is the command-line client for the library storefront.

It keeps a local mirror of your cart, loans and reviews, so browsing and the
cart badge keep working when the backend is unreachable. Writes apply
optimistically and roll back if the backend rejects them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newSessionCommands(deps)...,
	)
	root.AddCommand(
		newBooksCommand(deps),
		newAuthorsCommand(deps),
		newCategoriesCommand(deps),
		newCartCommand(deps),
		newLoansCommand(deps),
		newReviewsCommand(deps),
		newAdminCommand(deps),
	)

	return root
}
