package repository

import (
	"context"

	"event-bookings/data/models"
)

// prepareNewEvent normalizes and validates e, then assigns its identity,
// slug and timestamps. Nothing is written.
func prepareNewEvent(ctx context.Context, lookup SlugLookup, e *models.Event) error {
	e.Clean()
	if err := e.NormalizeDateTime(true, true); err != nil {
		return err
	}
	if err := models.ValidateModel(e); err != nil {
		return err
	}

	slug, err := UniqueSlug(ctx, lookup, e.Title, "")
	if err != nil {
		return err
	}

	now := models.Now()
	e.ID = models.NewID()
	e.Slug = slug
	e.CreatedAt = now
	e.UpdatedAt = now
	return nil
}

// applyEventPatch applies patch to the stored event e. The slug is only
// recomputed when the title changed and date/time only renormalized when
// they changed.
func applyEventPatch(ctx context.Context, lookup SlugLookup, e *models.Event, patch models.EventPatch) error {
	changes := patch.ApplyTo(e)

	e.Clean()
	if err := e.NormalizeDateTime(changes.Date, changes.Time); err != nil {
		return err
	}
	if err := models.ValidateModel(e); err != nil {
		return err
	}

	if changes.Title {
		slug, err := UniqueSlug(ctx, lookup, e.Title, e.ID)
		if err != nil {
			return err
		}
		e.Slug = slug
	}

	e.UpdatedAt = models.Now()
	return nil
}

// newBooking builds a normalized, validated booking ready to insert.
func newBooking(eventID, email string) (*models.Booking, error) {
	b := &models.Booking{EventID: eventID, Email: email}
	b.Normalize()
	if err := models.ValidateModel(b); err != nil {
		return nil, err
	}

	now := models.Now()
	b.ID = models.NewID()
	b.CreatedAt = now
	b.UpdatedAt = now
	return b, nil
}

// panicError turns a value recovered inside a transaction body into the
// error the transaction fails with.
func panicError(p interface{}) error {
	if err, ok := p.(error); ok {
		return err
	}
	return models.ErrTransactionFailed
}
