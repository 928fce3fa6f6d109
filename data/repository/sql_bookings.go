package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"event-bookings/data/models"
)

// CreateBooking validates and inserts b without looking at the referenced
// event. It is not safe against a concurrent event delete; use
// CreateBookingWithTransaction where the reference must hold.
func (sr *SqlRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	nb, err := newBooking(b.EventID, b.Email)
	if err != nil {
		return err
	}
	if err := insertModel(ctx, sr.DB, nb); err != nil {
		return err
	}
	*b = *nb
	return nil
}

func (sr *SqlRepo) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	if err := getModelByID(ctx, sr.DB, &b, id, ""); err != nil {
		return nil, err
	}
	return &b, nil
}

func (sr *SqlRepo) ListBookingsByEvent(ctx context.Context, eventID string) ([]models.Booking, error) {
	if !models.ValidID(eventID) {
		return []models.Booking{}, nil
	}

	query := fmt.Sprintf("SELECT %s FROM bookings WHERE event_id = $1 ORDER BY created_at ASC, id ASC",
		strings.Join(models.GetColumnNames(models.Booking{}, false), ", "))

	rows, err := sr.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	out, err := models.ScanRowsToSliceOfModels(models.Booking{}, rows, 0)
	if err != nil {
		return nil, err
	}
	return *out.(*[]models.Booking), nil
}

// CreateBookingWithTransaction books email onto the event. The event row is
// read with a share lock in the same transaction as the insert, so the event
// cannot be deleted between the check and the commit.
func (sr *SqlRepo) CreateBookingWithTransaction(ctx context.Context, eventID, email string) (*models.Booking, error) {
	if !models.ValidID(eventID) {
		return nil, fmt.Errorf("create booking: %w", &models.ReferenceError{Collection: models.EventCollection, ID: eventID})
	}
	b, err := newBooking(eventID, email)
	if err != nil {
		return nil, err
	}

	err = sr.withTx(ctx, "create booking", func(tx *sql.Tx) error {
		var id string
		err := tx.QueryRowContext(ctx, "SELECT id FROM events WHERE id = $1 FOR SHARE", b.EventID).Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return &models.ReferenceError{Collection: models.EventCollection, ID: b.EventID}
		}
		if err != nil {
			return err
		}

		return insertModel(ctx, tx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBookingWithTransaction replaces the booking's email.
func (sr *SqlRepo) UpdateBookingWithTransaction(ctx context.Context, bookingID, newEmail string) (*models.Booking, error) {
	var b models.Booking
	err := sr.withTx(ctx, "update booking", func(tx *sql.Tx) error {
		if err := getModelByID(ctx, tx, &b, bookingID, "FOR UPDATE"); err != nil {
			return err
		}

		b.Email = newEmail
		b.Normalize()
		if err := models.ValidateModel(b); err != nil {
			return err
		}
		b.UpdatedAt = models.Now()

		_, err := updateModel(ctx, tx, &b)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBookingWithTransaction deletes the booking and reports whether it
// existed. Deleting a missing booking commits and returns false.
func (sr *SqlRepo) DeleteBookingWithTransaction(ctx context.Context, bookingID string) (bool, error) {
	var removed bool
	err := sr.withTx(ctx, "delete booking", func(tx *sql.Tx) error {
		var err error
		removed, err = deleteByID(ctx, tx, models.BookingCollection, bookingID)
		return err
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}
