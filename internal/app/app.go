// Package app builds the service graph shared by the API server and the
// operator CLI.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"menuwise/internal/auth"
	"menuwise/internal/config"
	"menuwise/internal/db"
	"menuwise/internal/dish"
	"menuwise/internal/menu"
	"menuwise/internal/realtime"
	"menuwise/internal/storage"
	"menuwise/internal/user"
)

type App struct {
	Config *config.Config
	Logger *slog.Logger
	Hub    *realtime.Hub
	Tokens *auth.TokenIssuer

	Users  *user.Service
	Auth   *auth.Service
	Dishes *dish.Service
	Menus  *menu.Service

	closers []func()
}

type repositories struct {
	users  user.Repository
	dishes dish.Repository
	menus  menu.Repository
}

// New opens the configured store and wires every service. Services that
// depend on each other are built in dependency order.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	repos, err := a.openRepositories(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Tokens = tokens

	var images menu.Storage
	if cfg.R2.Enabled() {
		r2, err := storage.NewR2Client(ctx, cfg.R2)
		if err != nil {
			a.Close()
			return nil, err
		}
		images = r2
	} else {
		logger.Warn("R2 is not configured, menu image upload is disabled")
	}

	a.Hub = realtime.NewHub(logger, cfg.CORSOrigins)
	a.Users = user.NewService(repos.users, a.Hub, logger)
	a.Auth = auth.NewService(a.Users, tokens)
	a.Dishes = dish.NewService(repos.dishes, a.Users, menu.NewOwners(repos.menus), a.Hub, logger)
	a.Menus = menu.NewService(repos.menus, a.Dishes, images, a.Hub, logger)

	return a, nil
}

func (a *App) openRepositories(ctx context.Context) (repositories, error) {
	cfg := a.Config

	switch cfg.StoreDriver {
	case config.DriverPostgres:
		pool, err := db.ConnectPostgres(ctx, cfg.DatabaseURL, a.Logger)
		if err != nil {
			return repositories{}, err
		}
		a.closers = append(a.closers, pool.Close)
		return repositories{
			users:  user.NewPostgresRepository(pool),
			dishes: dish.NewPostgresRepository(pool),
			menus:  menu.NewPostgresRepository(pool),
		}, nil

	case config.DriverMongo:
		mdb, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, a.Logger)
		if err != nil {
			return repositories{}, err
		}
		a.closers = append(a.closers, func() {
			_ = mdb.Client().Disconnect(context.Background())
		})
		return repositories{
			users:  user.NewMongoRepository(mdb),
			dishes: dish.NewMongoRepository(mdb),
			menus:  menu.NewMongoRepository(mdb),
		}, nil

	case config.DriverMemory:
		a.Logger.Warn("using in-memory store, data is lost on exit")
		return repositories{
			users:  user.NewInMemoryRepository(),
			dishes: dish.NewInMemoryRepository(),
			menus:  menu.NewInMemoryRepository(),
		}, nil
	}

	return repositories{}, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}

// Close releases the store connection. It is safe to call more than once.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
