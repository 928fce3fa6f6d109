package repository

import (
	"context"
	"fmt"
	"strings"

	"event-bookings/config"
	"event-bookings/data/models"

	"github.com/rs/zerolog"
)

// DBRepo is the data-access surface shared by every backend.
//
// Writes that must hold referential integrity go through the
// *WithTransaction operations. CreateBooking only checks the document's own
// format and never looks at the referenced event.
type DBRepo interface {
	SlugLookup

	// Migrate brings schema and indexes up to date.
	Migrate(ctx context.Context) error
	Close(ctx context.Context) error

	CreateEvent(ctx context.Context, e *models.Event) error
	UpdateEvent(ctx context.Context, id string, patch models.EventPatch) (*models.Event, error)
	GetEventByID(ctx context.Context, id string) (*models.Event, error)
	GetEventBySlug(ctx context.Context, slug string) (*models.Event, error)
	QueryEvents(ctx context.Context, queryParams map[string]string) ([]models.Event, error)
	DeleteEvent(ctx context.Context, id string) (bool, error)

	CreateBooking(ctx context.Context, b *models.Booking) error
	GetBookingByID(ctx context.Context, id string) (*models.Booking, error)
	ListBookingsByEvent(ctx context.Context, eventID string) ([]models.Booking, error)

	CreateBookingWithTransaction(ctx context.Context, eventID, email string) (*models.Booking, error)
	UpdateBookingWithTransaction(ctx context.Context, bookingID, newEmail string) (*models.Booking, error)
	DeleteBookingWithTransaction(ctx context.Context, bookingID string) (bool, error)
}

// Open connects to the store named by uri and verifies the connection. The
// scheme picks the backend: mongodb and mongodb+srv open a MongoRepo,
// postgres and postgresql open a SqlRepo.
func Open(ctx context.Context, uri, dbName string, log zerolog.Logger) (DBRepo, error) {
	scheme, _, ok := strings.Cut(uri, "://")
	if !ok {
		return nil, &config.ConfigurationError{Key: "DATABASE_URI", Reason: "missing scheme"}
	}

	switch strings.ToLower(scheme) {
	case "mongodb", "mongodb+srv":
		return OpenMongo(ctx, uri, dbName, log)
	case "postgres", "postgresql":
		return OpenSQL(ctx, uri, log)
	}
	return nil, &config.ConfigurationError{Key: "DATABASE_URI", Reason: fmt.Sprintf("unsupported scheme %q", scheme)}
}
