package models

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEvent() Event {
	return Event{
		Title:       "Go Meetup",
		Description: "An evening of talks about Go in production",
		Overview:    "Talks and pizza",
		Image:       "https://example.com/go.png",
		Venue:       "The Hall",
		Location:    "Berlin",
		Date:        "2025-03-01",
		Time:        "18:30",
		Mode:        "offline",
		Audience:    "Developers",
		Agenda:      StringList{"Welcome", "Talks"},
		Organizer:   "Gophers Berlin",
		Tags:        StringList{"go", "meetup"},
	}
}

func TestEvent_Validate(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(e *Event)
		expected map[string]string
	}{
		{
			name:   "valid",
			mutate: func(e *Event) {},
		},
		{
			name:     "missing title",
			mutate:   func(e *Event) { e.Title = "" },
			expected: map[string]string{"title": "Title is required"},
		},
		{
			name:     "title too long",
			mutate:   func(e *Event) { e.Title = strings.Repeat("x", 101) },
			expected: map[string]string{"title": "Title cannot exceed 100 characters"},
		},
		{
			name:     "description too long",
			mutate:   func(e *Event) { e.Description = strings.Repeat("x", 1001) },
			expected: map[string]string{"description": "Description cannot exceed 1000 characters"},
		},
		{
			name:     "overview too long",
			mutate:   func(e *Event) { e.Overview = strings.Repeat("x", 501) },
			expected: map[string]string{"overview": "Overview cannot exceed 500 characters"},
		},
		{
			name:     "bad mode",
			mutate:   func(e *Event) { e.Mode = "virtual" },
			expected: map[string]string{"mode": "Mode must be either online, offline, or hybrid"},
		},
		{
			name:     "empty agenda",
			mutate:   func(e *Event) { e.Agenda = StringList{} },
			expected: map[string]string{"agenda": "At least one agenda item is required"},
		},
		{
			name:     "nil tags",
			mutate:   func(e *Event) { e.Tags = nil },
			expected: map[string]string{"tags": "At least one tag is required"},
		},
		{
			name:     "blank agenda item",
			mutate:   func(e *Event) { e.Agenda = StringList{"Welcome", ""} },
			expected: map[string]string{"agenda": "Agenda items cannot be empty"},
		},
		{
			name: "several fields",
			mutate: func(e *Event) {
				e.Venue = ""
				e.Organizer = ""
			},
			expected: map[string]string{"venue": "Venue is required", "organizer": "Organizer is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEvent()
			tt.mutate(&e)

			err := ValidateModel(&e)
			if tt.expected == nil {
				assert.NoError(t, err)
				return
			}

			var ve ValidationErrors
			require.True(t, errors.As(err, &ve), "expected ValidationErrors, got %v", err)
			assert.Equal(t, tt.expected, ve.Messages())
		})
	}
}

func TestEvent_Clean(t *testing.T) {
	e := validEvent()
	e.Title = "  Go Meetup  "
	e.Mode = " Hybrid "
	e.Tags = StringList{" go ", "meetup"}

	e.Clean()
	assert.Equal(t, "Go Meetup", e.Title)
	assert.Equal(t, ModeHybrid, e.Mode)
	assert.Equal(t, StringList{"go", "meetup"}, e.Tags)
}

func TestEvent_NormalizeDateTime(t *testing.T) {
	e := validEvent()
	e.Date = "2024-1-5"
	e.Time = "2:30 PM"

	require.NoError(t, e.NormalizeDateTime(true, false))
	assert.Equal(t, "2024-01-05", e.Date)
	assert.Equal(t, "2:30 PM", e.Time)

	require.NoError(t, e.NormalizeDateTime(false, true))
	assert.Equal(t, "14:30", e.Time)

	e.Date = "someday"
	err := e.NormalizeDateTime(true, true)
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "date", ve.Field)
}

func TestEventPatch_ApplyTo(t *testing.T) {
	e := validEvent()
	title := "Go Meetup"
	date := "2025-03-02"
	venue := "Basement"

	c := EventPatch{Title: &title, Date: &date, Venue: &venue, Tags: []string{"go"}}.ApplyTo(&e)
	assert.Equal(t, EventChanges{Date: true}, c)
	assert.Equal(t, "Basement", e.Venue)
	assert.Equal(t, StringList{"go"}, e.Tags)
	assert.Equal(t, StringList{"Welcome", "Talks"}, e.Agenda)

	renamed := " Go Conf "
	c = EventPatch{Title: &renamed}.ApplyTo(&e)
	assert.True(t, c.Title)
	assert.Equal(t, "Go Conf", e.Title)

	e.Time = "14:30"
	paddedDate, paddedTime := " 2025-03-02 ", "14:30 "
	c = EventPatch{Date: &paddedDate, Time: &paddedTime}.ApplyTo(&e)
	assert.Equal(t, EventChanges{}, c)
	assert.Equal(t, "2025-03-02", e.Date)
	assert.Equal(t, "14:30", e.Time)
}

func TestBooking_Validate(t *testing.T) {
	b := Booking{EventID: " 6f1c7a3e-8a8e-4b1e-9d55-0f5b8f7b2a10 ", Email: "  Jane@Example.COM "}
	b.Normalize()
	assert.Equal(t, "jane@example.com", b.Email)
	assert.NoError(t, ValidateModel(b))

	b.Email = "jane@"
	b.EventID = "nope"
	err := ValidateModel(b)
	var ve ValidationErrors
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, map[string]string{
		"eventId": "Event ID is not a valid identifier",
		"email":   "Please provide a valid email address",
	}, ve.Messages())
}
