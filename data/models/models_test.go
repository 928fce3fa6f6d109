package models

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockModel struct {
	ID        string     `json:"id" db:"id" bson:"_id" readOnly:"true"`
	Name      string     `json:"name" db:"name" bson:"name,omitempty"`
	Email     string     `json:"email" db:"email" bson:"email"`
	Labels    StringList `json:"labels" db:"labels" bson:"labels"`
	CreatedAt string     `json:"createdAt" db:"created_at" bson:"created_at" readOnly:"true"`
}

func (m MockModel) TableName() string {
	return "mock_models"
}

func (m MockModel) GetID() string {
	return m.ID
}

func (m MockModel) EmptySlice() interface{} {
	return &[]MockModel{}
}

func TestGetValsFromModel(t *testing.T) {
	model := MockModel{
		ID:        "b0d0c5a4-5d4b-4f55-9d1c-2b7e8f0a1c11",
		Name:      "Test",
		Email:     "example@email.com",
		Labels:    StringList{"a"},
		CreatedAt: "2023-10-01",
	}

	t.Run("all fields", func(t *testing.T) {
		vals := GetValsFromModel(model, false)
		expectedVals := []interface{}{model.ID, "Test", "example@email.com", StringList{"a"}, "2023-10-01"}
		assert.Equal(t, expectedVals, vals)
	})

	t.Run("without read-only fields", func(t *testing.T) {
		vals := GetValsFromModel(&model, true)
		expectedVals := []interface{}{"Test", "example@email.com", StringList{"a"}}
		assert.Equal(t, expectedVals, vals)
	})
}

func TestGetColumnNames(t *testing.T) {
	assert.Equal(t, []string{"id", "name", "email", "labels", "created_at"}, GetColumnNames(MockModel{}, false))
	assert.Equal(t, []string{"name", "email", "labels"}, GetColumnNames(&MockModel{}, true))
}

func TestMapJsonTags(t *testing.T) {
	assert.Equal(t, "created_at", MapJsonTags(MockModel{}, "db")["createdAt"])
	assert.Equal(t, "_id", MapJsonTags(MockModel{}, "bson")["id"])
	assert.Equal(t, "name", MapJsonTags(MockModel{}, "bson")["name"])
	assert.Equal(t, "event_id", MapJsonTags(Booking{}, "db")["eventId"])
}

func TestScanRowToModel(t *testing.T) {
	model := &MockModel{}

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"id", "name", "email", "labels", "created_at"}).
		AddRow("b0d0c5a4-5d4b-4f55-9d1c-2b7e8f0a1c11", "Test", "example@email.com", "{one,\"two words\"}", "2023-10-01")

	mock.ExpectQuery("SELECT id, name, email, labels, created_at FROM mock_models WHERE id = \\?").WillReturnRows(rows)
	row := db.QueryRow("SELECT id, name, email, labels, created_at FROM mock_models WHERE id = ?", 1)

	err = ScanRowToModel(model, row)
	assert.NoError(t, err)
	assert.Equal(t, "b0d0c5a4-5d4b-4f55-9d1c-2b7e8f0a1c11", model.ID)
	assert.Equal(t, "Test", model.Name)
	assert.Equal(t, "example@email.com", model.Email)
	assert.Equal(t, StringList{"one", "two words"}, model.Labels)
	assert.Equal(t, "2023-10-01", model.CreatedAt)

	assert.Error(t, ScanRowToModel(MockModel{}, row))
}

func TestScanRowsToSliceOfModels(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "event_id", "email", "created_at", "updated_at"}).
		AddRow("id-1", "ev-1", "a@example.com", created, created).
		AddRow("id-2", "ev-1", "b@example.com", created, created)
	mock.ExpectQuery("SELECT (.+) FROM bookings").WillReturnRows(rows)

	r, err := db.Query("SELECT * FROM bookings")
	require.NoError(t, err)
	defer r.Close()

	out, err := ScanRowsToSliceOfModels(Booking{}, r, 2)
	require.NoError(t, err)

	bookings := *out.(*[]Booking)
	require.Len(t, bookings, 2)
	assert.Equal(t, "b@example.com", bookings[1].Email)
	assert.Equal(t, created, bookings[0].CreatedAt)
}

func TestValidateModel(t *testing.T) {
	err := ValidateModel(struct{}{})
	assert.EqualError(t, err, "expected model, got struct {}")
}

func TestStringList(t *testing.T) {
	v, err := StringList{"a", "b c"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `{"a","b c"}`, v)

	var l StringList
	require.NoError(t, l.Scan([]byte(`{x,y}`)))
	assert.Equal(t, StringList{"x", "y"}, l)
}
