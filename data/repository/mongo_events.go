package repository

import (
	"context"
	"fmt"

	"event-bookings/data/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SlugExists runs inside the caller's transaction when ctx is a
// mongo.SessionContext.
func (mr *MongoRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	filter := bson.D{{Key: "slug", Value: slug}}
	if excludeID != "" {
		filter = append(filter, bson.E{Key: "_id", Value: bson.D{{Key: "$ne", Value: excludeID}}})
	}

	n, err := mr.events().CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateEvent normalizes and validates e, assigns a unique slug and inserts
// it. On success e holds the stored document.
func (mr *MongoRepo) CreateEvent(ctx context.Context, e *models.Event) error {
	if err := prepareNewEvent(ctx, mr, e); err != nil {
		return err
	}
	if _, err := mr.events().InsertOne(ctx, e); err != nil {
		return mapMongoError(err)
	}
	return nil
}

// UpdateEvent applies patch to the event with the given id. The read, the
// slug lookups and the replace share one transaction.
func (mr *MongoRepo) UpdateEvent(ctx context.Context, id string, patch models.EventPatch) (*models.Event, error) {
	var e models.Event
	err := mr.withTransaction(ctx, "update event", func(sc mongo.SessionContext) error {
		notFound := &models.NotFoundError{Collection: models.EventCollection, ID: id}
		if err := findOne(sc, mr.events(), byID(id), &e, notFound); err != nil {
			return err
		}
		if err := applyEventPatch(sc, mr, &e, patch); err != nil {
			return err
		}
		_, err := mr.events().ReplaceOne(sc, byID(id), &e)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (mr *MongoRepo) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var e models.Event
	notFound := &models.NotFoundError{Collection: models.EventCollection, ID: id}
	if err := findOne(ctx, mr.events(), byID(id), &e, notFound); err != nil {
		return nil, err
	}
	return &e, nil
}

func (mr *MongoRepo) GetEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	var e models.Event
	notFound := &models.NotFoundError{Collection: models.EventCollection, ID: slug}
	if err := findOne(ctx, mr.events(), bson.D{{Key: "slug", Value: slug}}, &e, notFound); err != nil {
		return nil, err
	}
	return &e, nil
}

// QueryEvents takes the same parameters as SqlRepo.QueryEvents.
func (mr *MongoRepo) QueryEvents(ctx context.Context, queryParams map[string]string) ([]models.Event, error) {
	q, err := parseQueryParams(queryParams, models.Event{})
	if err != nil {
		return nil, &models.ValidationError{Field: "query", Message: fmt.Sprintf("invalid query: %v", err)}
	}

	filter, opts := q.bsonQuery()
	cur, err := mr.events().Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}

	events := []models.Event{}
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// DeleteEvent removes the event and reports whether it existed. Bookings
// that reference it are left in place.
func (mr *MongoRepo) DeleteEvent(ctx context.Context, id string) (bool, error) {
	res, err := mr.events().DeleteOne(ctx, byID(id))
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
