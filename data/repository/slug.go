package repository

import (
	"context"

	"event-bookings/data/models"
)

// SlugLookup reports whether an event other than excludeID already holds
// slug. An empty excludeID excludes nothing.
type SlugLookup interface {
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
}

// UniqueSlug derives a slug from title and resolves collisions by appending
// -1, -2, ... up to models.MaxSlugAttempts candidates.
//
// The lookup is check-then-act. Two writers racing on the same title can both
// pick the same candidate; the unique index rejects the second insert with a
// ConflictError, which is not retried here.
func UniqueSlug(ctx context.Context, lookup SlugLookup, title, excludeID string) (string, error) {
	base := models.Slugify(title)

	for n := 0; n < models.MaxSlugAttempts; n++ {
		candidate := models.SlugCandidate(base, n)

		taken, err := lookup.SlugExists(ctx, candidate, excludeID)
		if err != nil {
			return "", &models.SlugGenerationError{Title: title, Attempts: n + 1, Err: err}
		}
		if !taken {
			return candidate, nil
		}
	}

	return "", &models.SlugGenerationError{Title: title, Attempts: models.MaxSlugAttempts}
}
