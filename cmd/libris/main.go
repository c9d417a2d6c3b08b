package main

import (
	"context"
	"log/slog"

	"libris/cmd/libris/commands"
	"libris/cmd/libris/output"
	"libris/config"
	"libris/internal/domain/service"
	"libris/internal/infra/auth"
	"libris/internal/infra/gateway"
	logs "libris/internal/infra/log"
	"libris/internal/infra/persistence/sqlite"
	"libris/internal/infra/qrcode"
	"libris/internal/infra/querycache"
	"libris/internal/usecase"
	"libris/internal/usecase/impl"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

type cliParams struct {
	fx.In
	fx.Lifecycle

	Shutdowner fx.Shutdowner
	Root       *cobra.Command
	Sessions   usecase.SessionUsecase
	Logger     *slog.Logger
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectCommand(),
		fx.Invoke(
			runCLI,
		),
		// Keep fx's own logging out of the command output.
		fx.NopLogger,
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		sqlite.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			sqlite.NewSessionRepository,
			sqlite.NewCartRepository,
			sqlite.NewLoanRepository,
			sqlite.NewReviewRepository,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewSessionStore,
			func(s *auth.SessionStore) gateway.TokenSource { return s },
			func(s *auth.SessionStore) service.SessionState { return s },
			gateway.New,
			querycache.New,
			qrcode.NewQRCodeService,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewSessionService,
			impl.NewCatalogService,
			impl.NewCartService,
			impl.NewLoanService,
			impl.NewReviewService,
			impl.NewAdminService,
		),
	)
}

func injectCommand() fx.Option {
	return fx.Options(
		fx.Provide(
			commands.NewRoot,
		),
	)
}

func runCLI(params cliParams) {
	params.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				ctx := context.Background()

				// Restore any persisted session before the command runs; an
				// invalid token dies quietly and the command runs as guest.
				if _, err := params.Sessions.Resume(ctx); err != nil {
					params.Logger.Warn("session resume failed", "error", err)
				}

				code := 0
				if err := params.Root.ExecuteContext(ctx); err != nil {
					output.Error("%v", err)
					code = 1
				}

				if err := params.Shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
					params.Logger.Error("shutdown failed", "error", err)
				}
			}()

			return nil
		},
	})
}
