package main

import (
	"context"
	"os"

	"event-bookings/config"
	"event-bookings/data/connection"
	"event-bookings/data/repository"

	"github.com/rs/zerolog"
)

type application struct {
	Config *config.Config
	Log    zerolog.Logger
	DB     *connection.Manager[repository.DBRepo]
	Repo   repository.DBRepo
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log := config.NewLogger("", "")
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	var app = &application{
		Config: cfg,
		Log:    config.NewLogger(cfg.Environment, cfg.LogLevel),
	}

	if err := app.run(context.Background()); err != nil {
		app.Log.Error().Err(err).Msg("startup failed")
		os.Exit(1)
	}
}

// run connects to the configured store and brings its schema up to date.
func (app *application) run(ctx context.Context) error {
	dial := func(ctx context.Context, uri string) (repository.DBRepo, error) {
		return repository.Open(ctx, uri, app.Config.DatabaseName, app.Log)
	}

	db, err := connection.New[repository.DBRepo](app.Config.DatabaseURI, dial,
		connection.WithConnectTimeout(app.Config.ConnectTimeout),
		connection.WithLogger(app.Log))
	if err != nil {
		return err
	}
	app.DB = db
	defer app.DB.Close(context.WithoutCancel(ctx))

	if app.Repo, err = app.ConnectToDB(ctx); err != nil {
		return err
	}

	if err := app.Repo.Migrate(ctx); err != nil {
		return err
	}

	app.Log.Info().Str("database", app.Config.DatabaseName).Msg("data layer ready")
	return nil
}
