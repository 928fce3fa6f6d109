package repository

import (
	"errors"
	"testing"

	"event-bookings/data/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestMapMongoError(t *testing.T) {
	t.Run("duplicate key", func(t *testing.T) {
		err := mongo.WriteException{WriteErrors: mongo.WriteErrors{{
			Code:    11000,
			Message: `E11000 duplicate key error collection: events.bookings index: booking_event_email_unique dup key: { event_id: "x", email: "a@example.com" }`,
		}}}

		mapped := mapMongoError(err)
		var ce *models.ConflictError
		require.ErrorAs(t, mapped, &ce)
		assert.Equal(t, models.BookingUniqueConstraint, ce.Constraint)
		assert.EqualError(t, mapped, "a booking for this event and email already exists")
	})

	t.Run("other errors pass through", func(t *testing.T) {
		boom := errors.New("boom")
		assert.Same(t, boom, mapMongoError(boom))
	})
}

func TestPanicError(t *testing.T) {
	boom := errors.New("boom")
	assert.Equal(t, boom, panicError(boom))
	assert.Equal(t, models.ErrTransactionFailed, panicError(42))
}
