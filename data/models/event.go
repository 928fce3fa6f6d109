package models

import (
	"strings"
	"time"
)

const (
	ModeOnline  = "online"
	ModeOffline = "offline"
	ModeHybrid  = "hybrid"
)

type Event struct {
	ID          string     `json:"id" db:"id" bson:"_id" readOnly:"true"`
	Title       string     `validate:"required,max=100" json:"title" db:"title" bson:"title"`
	Slug        string     `json:"slug" db:"slug" bson:"slug"`
	Description string     `validate:"required,max=1000" json:"description" db:"description" bson:"description"`
	Overview    string     `validate:"required,max=500" json:"overview" db:"overview" bson:"overview"`
	Image       string     `validate:"required" json:"image" db:"image" bson:"image"`
	Venue       string     `validate:"required" json:"venue" db:"venue" bson:"venue"`
	Location    string     `validate:"required" json:"location" db:"location" bson:"location"`
	Date        string     `validate:"required" json:"date" db:"date" bson:"date"`
	Time        string     `validate:"required" json:"time" db:"time" bson:"time"`
	Mode        string     `validate:"required,oneof=online offline hybrid" json:"mode" db:"mode" bson:"mode"`
	Audience    string     `validate:"required" json:"audience" db:"audience" bson:"audience"`
	Agenda      StringList `validate:"required,min=1,dive,required" json:"agenda" db:"agenda" bson:"agenda"`
	Organizer   string     `validate:"required" json:"organizer" db:"organizer" bson:"organizer"`
	Tags        StringList `validate:"required,min=1,dive,required" json:"tags" db:"tags" bson:"tags"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at" bson:"created_at" readOnly:"true"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at" bson:"updated_at"`
}

func (Event) TableName() string {
	return EventCollection
}

func (e Event) GetID() string {
	return e.ID
}

func (e Event) EmptySlice() interface{} {
	return &[]Event{}
}

func (Event) validationMessages() map[string]map[string]string {
	return map[string]map[string]string{
		"title":       {"required": "Title is required", "max": "Title cannot exceed 100 characters"},
		"description": {"required": "Description is required", "max": "Description cannot exceed 1000 characters"},
		"overview":    {"required": "Overview is required", "max": "Overview cannot exceed 500 characters"},
		"image":       {"required": "Image URL is required"},
		"venue":       {"required": "Venue is required"},
		"location":    {"required": "Location is required"},
		"date":        {"required": "Date is required"},
		"time":        {"required": "Time is required"},
		"mode": {
			"required": "Mode is required",
			"oneof":    "Mode must be either online, offline, or hybrid",
		},
		"audience": {"required": "Audience is required"},
		"agenda": {
			"required":      "At least one agenda item is required",
			"min":           "At least one agenda item is required",
			"item_required": "Agenda items cannot be empty",
		},
		"organizer": {"required": "Organizer is required"},
		"tags": {
			"required":      "At least one tag is required",
			"min":           "At least one tag is required",
			"item_required": "Tags cannot be empty",
		},
	}
}

// Clean trims every text field and list item and lowercases the mode. It
// leaves date and time as they are.
func (e *Event) Clean() {
	e.Title = strings.TrimSpace(e.Title)
	e.Description = strings.TrimSpace(e.Description)
	e.Overview = strings.TrimSpace(e.Overview)
	e.Image = strings.TrimSpace(e.Image)
	e.Venue = strings.TrimSpace(e.Venue)
	e.Location = strings.TrimSpace(e.Location)
	e.Mode = strings.ToLower(strings.TrimSpace(e.Mode))
	e.Audience = strings.TrimSpace(e.Audience)
	e.Organizer = strings.TrimSpace(e.Organizer)
	e.Agenda = e.Agenda.trimmed()
	e.Tags = e.Tags.trimmed()
}

// NormalizeDateTime rewrites date and time in canonical form. Empty values
// are left for validation to report as missing.
func (e *Event) NormalizeDateTime(date, clock bool) error {
	if date && strings.TrimSpace(e.Date) != "" {
		d, err := NormalizeDate(e.Date)
		if err != nil {
			return err
		}
		e.Date = d
	}
	if clock && strings.TrimSpace(e.Time) != "" {
		t, err := NormalizeTime(e.Time)
		if err != nil {
			return err
		}
		e.Time = t
	}
	return nil
}

// EventPatch describes a partial update. Nil fields are left unchanged.
type EventPatch struct {
	Title       *string
	Description *string
	Overview    *string
	Image       *string
	Venue       *string
	Location    *string
	Date        *string
	Time        *string
	Mode        *string
	Audience    *string
	Agenda      []string
	Organizer   *string
	Tags        []string
}

// EventChanges reports which derived-value inputs a patch modified.
type EventChanges struct {
	Title bool
	Date  bool
	Time  bool
}

// ApplyTo copies the set fields of p onto e and reports whether title, date
// or time now differ from what e held before.
func (p EventPatch) ApplyTo(e *Event) EventChanges {
	var c EventChanges
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		c.Title = title != e.Title
		e.Title = title
	}
	// date and time are only renormalized when flagged, so what is stored
	// must be the trimmed value compared here
	if p.Date != nil {
		date := strings.TrimSpace(*p.Date)
		c.Date = date != e.Date
		e.Date = date
	}
	if p.Time != nil {
		clock := strings.TrimSpace(*p.Time)
		c.Time = clock != e.Time
		e.Time = clock
	}

	setString(&e.Description, p.Description)
	setString(&e.Overview, p.Overview)
	setString(&e.Image, p.Image)
	setString(&e.Venue, p.Venue)
	setString(&e.Location, p.Location)
	setString(&e.Mode, p.Mode)
	setString(&e.Audience, p.Audience)
	setString(&e.Organizer, p.Organizer)
	if p.Agenda != nil {
		e.Agenda = StringList(p.Agenda)
	}
	if p.Tags != nil {
		e.Tags = StringList(p.Tags)
	}
	return c
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
