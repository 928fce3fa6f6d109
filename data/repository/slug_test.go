package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"event-bookings/data/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSlugs holds slug -> owning event id.
type fakeSlugs struct {
	taken map[string]string
	calls int
	err   error
}

func (f *fakeSlugs) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	owner, ok := f.taken[slug]
	return ok && (excludeID == "" || owner != excludeID), nil
}

func TestUniqueSlug(t *testing.T) {
	ctx := context.Background()

	t.Run("free base slug", func(t *testing.T) {
		f := &fakeSlugs{taken: map[string]string{}}
		slug, err := UniqueSlug(ctx, f, "Go Conference 2025", "")
		require.NoError(t, err)
		assert.Equal(t, "go-conference-2025", slug)
		assert.Equal(t, 1, f.calls)
	})

	t.Run("collisions append a counter", func(t *testing.T) {
		f := &fakeSlugs{taken: map[string]string{"go-meetup": "a", "go-meetup-1": "b"}}
		slug, err := UniqueSlug(ctx, f, "Go Meetup", "")
		require.NoError(t, err)
		assert.Equal(t, "go-meetup-2", slug)
		assert.Equal(t, 3, f.calls)
	})

	t.Run("own slug is not a collision", func(t *testing.T) {
		f := &fakeSlugs{taken: map[string]string{"go-meetup": "a"}}
		slug, err := UniqueSlug(ctx, f, "Go Meetup", "a")
		require.NoError(t, err)
		assert.Equal(t, "go-meetup", slug)
	})

	t.Run("empty canonical form falls back", func(t *testing.T) {
		f := &fakeSlugs{taken: map[string]string{}}
		slug, err := UniqueSlug(ctx, f, "!!!", "")
		require.NoError(t, err)
		assert.Equal(t, models.FallbackSlug, slug)
	})

	t.Run("attempts are bounded", func(t *testing.T) {
		taken := map[string]string{"busy": "x"}
		for n := 1; n < models.MaxSlugAttempts; n++ {
			taken[fmt.Sprintf("busy-%d", n)] = "x"
		}
		f := &fakeSlugs{taken: taken}

		_, err := UniqueSlug(ctx, f, "Busy", "")
		var sgErr *models.SlugGenerationError
		require.ErrorAs(t, err, &sgErr)
		assert.Equal(t, models.MaxSlugAttempts, sgErr.Attempts)
		assert.Equal(t, models.MaxSlugAttempts, f.calls)
	})

	t.Run("lookup failure", func(t *testing.T) {
		boom := errors.New("connection reset")
		f := &fakeSlugs{err: boom}

		_, err := UniqueSlug(ctx, f, "Anything", "")
		var sgErr *models.SlugGenerationError
		require.ErrorAs(t, err, &sgErr)
		assert.Equal(t, 1, sgErr.Attempts)
		assert.ErrorIs(t, err, boom)
	})
}
