package main

import (
	"context"
	"log/slog"
	"os"

	"libris/config"
	logs "libris/internal/infra/log"
	"libris/internal/mockapi"

	"go.uber.org/fx"
)

type serveParams struct {
	fx.In
	fx.Lifecycle

	Server *mockapi.Server
}

func main() {
	fx.New(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
			mockapi.NewServer,
		),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func startServer(ctx context.Context, params serveParams) {
	go func() {
		if err := params.Server.Serve(ctx); err != nil {
			slog.Error("Failed to start server", slog.Any("error", err))
			os.Exit(1)
		}
	}()
}
