package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"event-bookings/data/models"
)

// sqlSlugLookup checks slugs through either the pool or an open transaction.
type sqlSlugLookup struct {
	q querier
}

func (l sqlSlugLookup) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	query := "SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1)"
	args := []interface{}{slug}
	if excludeID != "" && models.ValidID(excludeID) {
		query = "SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1 AND id <> $2)"
		args = append(args, excludeID)
	}

	var exists bool
	if err := l.q.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (sr *SqlRepo) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	return sqlSlugLookup{q: sr.DB}.SlugExists(ctx, slug, excludeID)
}

// CreateEvent normalizes and validates e, assigns a unique slug and inserts
// it. On success e holds the stored document.
func (sr *SqlRepo) CreateEvent(ctx context.Context, e *models.Event) error {
	if err := prepareNewEvent(ctx, sqlSlugLookup{q: sr.DB}, e); err != nil {
		return err
	}
	return insertModel(ctx, sr.DB, e)
}

// UpdateEvent applies patch to the event with the given id while holding its
// row lock.
func (sr *SqlRepo) UpdateEvent(ctx context.Context, id string, patch models.EventPatch) (*models.Event, error) {
	var e models.Event
	err := sr.withTx(ctx, "update event", func(tx *sql.Tx) error {
		if err := getModelByID(ctx, tx, &e, id, "FOR UPDATE"); err != nil {
			return err
		}
		if err := applyEventPatch(ctx, sqlSlugLookup{q: tx}, &e, patch); err != nil {
			return err
		}
		_, err := updateModel(ctx, tx, &e)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (sr *SqlRepo) GetEventByID(ctx context.Context, id string) (*models.Event, error) {
	var e models.Event
	if err := getModelByID(ctx, sr.DB, &e, id, ""); err != nil {
		return nil, err
	}
	return &e, nil
}

func (sr *SqlRepo) GetEventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	var e models.Event
	query := fmt.Sprintf("SELECT %s FROM events WHERE slug = $1",
		strings.Join(models.GetColumnNames(e, false), ", "))

	err := models.ScanRowToModel(&e, sr.DB.QueryRowContext(ctx, query, slug))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &models.NotFoundError{Collection: models.EventCollection, ID: slug}
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// QueryEvents filters, sorts and paginates events from query-string style
// parameters, e.g. {"mode": "online", "date_gte": "2025-01-01", "sortBy": "-date"}.
func (sr *SqlRepo) QueryEvents(ctx context.Context, queryParams map[string]string) ([]models.Event, error) {
	q, err := parseQueryParams(queryParams, models.Event{})
	if err != nil {
		return nil, &models.ValidationError{Field: "query", Message: fmt.Sprintf("invalid query: %v", err)}
	}

	clauses, values := q.sqlClauses()
	query := fmt.Sprintf("SELECT %s FROM events %s",
		strings.Join(models.GetColumnNames(models.Event{}, false), ", "),
		clauses)

	rows, err := sr.DB.QueryContext(ctx, query, values...)
	if err != nil {
		return nil, fmt.Errorf("error executing query: %w", err)
	}
	defer rows.Close()

	out, err := models.ScanRowsToSliceOfModels(models.Event{}, rows, q.limit)
	if err != nil {
		return nil, err
	}
	return *out.(*[]models.Event), nil
}

// DeleteEvent removes the event and reports whether it existed. Bookings
// that reference it are left in place.
func (sr *SqlRepo) DeleteEvent(ctx context.Context, id string) (bool, error) {
	return deleteByID(ctx, sr.DB, models.EventCollection, id)
}
