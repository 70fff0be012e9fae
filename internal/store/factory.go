package store

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/roi-ledger/internal/config"
	"github.com/yourusername/roi-ledger/internal/database"
)

// Open creates the Store selected by cfg.Store.Driver. The returned close
// function releases whatever the driver holds.
func Open(ctx context.Context, cfg *config.Config, client Doer, logger *logrus.Logger) (Store, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverREST:
		if client == nil {
			return nil, nil, fmt.Errorf("HTTP client is required for the %s driver", cfg.Store.Driver)
		}
		return NewRESTStore(cfg.Supabase.URL, cfg.SupabaseKey(), client, logger), func() {}, nil

	case config.StoreDriverPostgres:
		db, err := database.NewDB(ctx, &cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		return NewPostgresStore(db), db.Close, nil

	default:
		return nil, nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}
