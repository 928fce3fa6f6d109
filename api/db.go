package main

import (
	"context"

	"event-bookings/data/repository"
)

// ConnectToDB returns the process-wide repository, dialing on first use.
func (app *application) ConnectToDB(ctx context.Context) (repository.DBRepo, error) {
	repo, err := app.DB.Get(ctx)
	if err != nil {
		return nil, err
	}
	return repo, nil
}
