// Package sqlite contains the concrete implementation of the fallback store
// using GORM and SQLite. It is the local analog of browser storage: one row
// per key, a JSON-encoded value, writes replacing the whole value.
package sqlite

import (
	"context"
	"log/slog"
	"time"

	"libris/config"
	"libris/internal/errors"

	"go.uber.org/fx"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Record is one fallback-store entry. Keys follow the storefront's browser
// storage layout: "token", "user", "cart_items:<ns>", "loans:<ns>",
// "reviews:<ns>", "checkout_borrow_books".
type Record struct {
	Key       string `gorm:"primaryKey;size:191"`
	Value     string
	UpdatedAt time.Time
}

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the local fallback database and migrates the key/value schema.
func New(params Params) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(params.Config.Storage.Path), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open fallback store")
	}

	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate fallback store")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get fallback store sql.DB")
	}

	params.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return sqlDB.Close()
		},
	})

	params.Logger.Debug("fallback store opened", "path", params.Config.Storage.Path)

	return db, nil
}
