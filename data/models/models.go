package models

import (
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator"
)

// Collection and constraint names shared by every backend.
const (
	EventCollection   = "events"
	BookingCollection = "bookings"

	EventSlugUniqueConstraint = "event_slug_unique"
	BookingUniqueConstraint   = "booking_event_email_unique"
)

type Model interface {
	TableName() string
	GetID() string
	EmptySlice() interface{}
}

// messageSource is implemented by models that carry their own user-facing
// validation messages, keyed by JSON field name and then validator tag.
type messageSource interface {
	validationMessages() map[string]map[string]string
}

// go-playground/validator suggests using a single instance of the validator.
// Field names reported by it are the JSON names so they line up with what
// callers sent.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateModel validates a model using the go-playground/validator package
// and translates every failure into a ValidationError carrying the model's
// message for that field. It returns an error if the provided argument does
// not implement the Model interface.
func ValidateModel(model interface{}) error {
	m, ok := model.(Model)
	if !ok {
		return fmt.Errorf("expected model, got %T", model)
	}

	err := validate.Struct(m)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}

	var messages map[string]map[string]string
	if ms, ok := m.(messageSource); ok {
		messages = ms.validationMessages()
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field, tag := fe.Field(), fe.Tag()
		// dive errors are reported as agenda[2]; look them up as item rules
		if i := strings.IndexByte(field, '['); i >= 0 {
			field, tag = field[:i], "item_"+tag
		}

		msg, ok := messages[field][tag]
		if !ok {
			msg = fmt.Sprintf("%s failed on the '%s' rule", field, tag)
		}
		out = append(out, &ValidationError{Field: field, Message: msg})
	}
	return out
}

// GetValsFromModel returns the field values of a model as a slice of
// interfaces, in the order of the model's column names. It is used for
// extracting values from the model and writing them to the database. When
// excludeReadOnlyFields is set, fields tagged readOnly are left out, matching
// GetColumnNames. Validation of the model should be done before use.
func GetValsFromModel(m Model, excludeReadOnlyFields bool) []interface{} {
	val := reflect.ValueOf(m)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()
	numFields := val.NumField()

	fieldMap := make(map[string]interface{})
	for i := 0; i < numFields; i++ {
		field := typ.Field(i)

		if excludeReadOnlyFields && field.Tag.Get("readOnly") == "true" {
			continue
		}

		dbTag := field.Tag.Get("db")
		fieldMap[dbTag] = val.Field(i).Interface()
	}

	columnNames := GetColumnNames(m, excludeReadOnlyFields)
	vals := make([]interface{}, len(columnNames))
	for i, cn := range columnNames {
		vals[i] = fieldMap[cn]
	}

	return vals
}

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...interface{}) error
}

// ScanRowToModel scans a single SQL row into a given model. It takes a model
// and passes a slice of pointers to the model's fields to the row's Scan
// method. The row must select GetColumnNames(m, false), in that order. It
// returns an error if the scan fails or the model is not a pointer.
func ScanRowToModel(m Model, r RowScanner) error {
	val := reflect.ValueOf(m)
	if val.Kind() != reflect.Ptr {
		return fmt.Errorf("expected pointer to model, got %T", m)
	}
	val = val.Elem()
	typ := val.Type()

	fieldPtrs := make([]interface{}, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		fieldPtrs[i] = val.Field(i).Addr().Interface()
	}

	if err := r.Scan(fieldPtrs...); err != nil {
		return err
	}
	utcTimes(val)
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

// utcTimes moves every time.Time field of the struct v into UTC. Drivers
// hand back timestamps in the local zone.
func utcTimes(v reflect.Value) {
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Type() == timeType {
			f.Set(reflect.ValueOf(f.Interface().(time.Time).UTC()))
		}
	}
}

func ScanRowsToSliceOfModels(m Model, rows *sql.Rows, expectedRows int) (interface{}, error) {
	// Obtain the slice of models using the EmptySlice method, which returns a
	// pointer to an empty slice of the model type as an interface{}
	modelsSlice := m.EmptySlice()

	// Dereference the interface wrapper with Elem(), and make sure we have a slice
	sliceVal := reflect.ValueOf(modelsSlice).Elem()
	if sliceVal.Kind() != reflect.Slice {
		return nil, fmt.Errorf("expected slice, got %s", sliceVal.Kind())
	}

	elemType := sliceVal.Type().Elem()

	// Best guess at capacity from the caller's expected row count (e.g. the
	// limit of a query) to avoid growing the slice repeatedly.
	initialCapacity := determineInitialCapacity(expectedRows)
	sliceVal.Set(reflect.MakeSlice(sliceVal.Type(), 0, initialCapacity))

	for rows.Next() {
		model := reflect.New(elemType).Elem()

		fieldPtrs := make([]interface{}, model.NumField())
		for i := 0; i < model.NumField(); i++ {
			fieldPtrs[i] = model.Field(i).Addr().Interface()
		}

		if err := rows.Scan(fieldPtrs...); err != nil {
			return nil, err
		}
		utcTimes(model)

		sliceVal.Set(reflect.Append(sliceVal, model))
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return modelsSlice, nil
}

// GetColumnNames returns the model's column names as a slice of strings.
func GetColumnNames(m Model, excludeReadOnlyFields bool) []string {
	val := reflect.ValueOf(m)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()
	var columnNames []string

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		tag := field.Tag.Get("db")

		if excludeReadOnlyFields && field.Tag.Get("readOnly") == "true" {
			continue
		}

		columnNames = append(columnNames, tag)
	}
	return columnNames
}

// MapJsonTags returns a map of the model's field tags where key is the JSON
// name and value is the name under tagKey ("db" for columns, "bson" for
// document fields). Tag options such as omitempty are dropped.
func MapJsonTags(m Model, tagKey string) map[string]string {
	val := reflect.ValueOf(m)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}
	typ := val.Type()
	tagMap := make(map[string]string)

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		jsonTag := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		tagMap[jsonTag] = strings.SplitN(field.Tag.Get(tagKey), ",", 2)[0]
	}
	return tagMap
}

// Helper function to determine the initial capacity based on expected rows
func determineInitialCapacity(expectedRows int) int {
	switch {
	case expectedRows <= 10:
		return 10
	case expectedRows <= 25:
		return 20
	case expectedRows <= 50:
		return 35
	case expectedRows <= 100:
		return 75
	case expectedRows <= 200:
		return 150
	case expectedRows <= 300:
		return 250
	case expectedRows <= 500:
		return 400
	case expectedRows <= 1000:
		return 900
	case expectedRows <= 2000:
		return 1800
	case expectedRows <= 5000:
		return 2500
	default:
		return 5000
	}
}
