package repository

import (
	"context"
	"fmt"

	"event-bookings/data/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateBooking validates and inserts b without looking at the referenced
// event. Use CreateBookingWithTransaction where the reference must hold.
func (mr *MongoRepo) CreateBooking(ctx context.Context, b *models.Booking) error {
	nb, err := newBooking(b.EventID, b.Email)
	if err != nil {
		return err
	}
	if _, err := mr.bookings().InsertOne(ctx, nb); err != nil {
		return mapMongoError(err)
	}
	*b = *nb
	return nil
}

func (mr *MongoRepo) GetBookingByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	notFound := &models.NotFoundError{Collection: models.BookingCollection, ID: id}
	if err := findOne(ctx, mr.bookings(), byID(id), &b, notFound); err != nil {
		return nil, err
	}
	return &b, nil
}

func (mr *MongoRepo) ListBookingsByEvent(ctx context.Context, eventID string) ([]models.Booking, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := mr.bookings().Find(ctx, bson.D{{Key: "event_id", Value: eventID}}, opts)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	bookings := []models.Booking{}
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

// CreateBookingWithTransaction books email onto the event. The event lookup
// and the insert commit together or not at all.
func (mr *MongoRepo) CreateBookingWithTransaction(ctx context.Context, eventID, email string) (*models.Booking, error) {
	if !models.ValidID(eventID) {
		return nil, fmt.Errorf("create booking: %w", &models.ReferenceError{Collection: models.EventCollection, ID: eventID})
	}
	b, err := newBooking(eventID, email)
	if err != nil {
		return nil, err
	}

	err = mr.withTransaction(ctx, "create booking", func(sc mongo.SessionContext) error {
		n, err := mr.events().CountDocuments(sc, byID(b.EventID), options.Count().SetLimit(1))
		if err != nil {
			return err
		}
		if n == 0 {
			return &models.ReferenceError{Collection: models.EventCollection, ID: b.EventID}
		}

		_, err = mr.bookings().InsertOne(sc, b)
		return err
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

// UpdateBookingWithTransaction replaces the booking's email.
func (mr *MongoRepo) UpdateBookingWithTransaction(ctx context.Context, bookingID, newEmail string) (*models.Booking, error) {
	var b models.Booking
	err := mr.withTransaction(ctx, "update booking", func(sc mongo.SessionContext) error {
		notFound := &models.NotFoundError{Collection: models.BookingCollection, ID: bookingID}
		if err := findOne(sc, mr.bookings(), byID(bookingID), &b, notFound); err != nil {
			return err
		}

		b.Email = newEmail
		b.Normalize()
		if err := models.ValidateModel(b); err != nil {
			return err
		}
		b.UpdatedAt = models.Now()

		_, err := mr.bookings().UpdateOne(sc, byID(bookingID), bson.D{{Key: "$set", Value: bson.D{
			{Key: "email", Value: b.Email},
			{Key: "updated_at", Value: b.UpdatedAt},
		}}})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBookingWithTransaction deletes the booking and reports whether it
// existed. Deleting a missing booking commits and returns false.
func (mr *MongoRepo) DeleteBookingWithTransaction(ctx context.Context, bookingID string) (bool, error) {
	var removed bool
	err := mr.withTransaction(ctx, "delete booking", func(sc mongo.SessionContext) error {
		res, err := mr.bookings().DeleteOne(sc, byID(bookingID))
		if err != nil {
			return err
		}
		removed = res.DeletedCount > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}
