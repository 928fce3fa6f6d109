package repository

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"event-bookings/data/models"

	"github.com/lib/pq"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultLimit = 10
	maxLimit     = 1000
	defaultSort  = "createdAt"
)

type fieldKind int

const (
	textField fieldKind = iota
	listField
	timeField
)

// condition is one filter from the query string, e.g. date_gte=2025-01-01.
// field is the JSON name; values holds one entry except for IN.
type condition struct {
	field    string
	operator string
	values   []interface{}
}

// modelQuery is the backend-neutral form of a query string. It renders to
// SQL clauses for SqlRepo and to a filter plus find options for MongoRepo.
type modelQuery struct {
	model      models.Model
	conditions []condition
	sortBy     string
	descending bool
	limit      int
	offset     int
}

// parseQueryParams reads filtering, sorting and pagination parameters.
// Keys are JSON field names with an optional operator suffix (_ne, _lt, _gt,
// _lte, _gte, _contains, _anyOf); sortBy takes a field name, prefixed with -
// for descending order; limit and offset paginate.
func parseQueryParams(queryParams map[string]string, m models.Model) (*modelQuery, error) {
	kinds := fieldKinds(m)
	q := &modelQuery{model: m}

	// map order is random; sort so the rendered query is stable
	keys := make([]string, 0, len(queryParams))
	for k := range queryParams {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		// Skip these for later handling
		if key == "sortBy" || key == "limit" || key == "offset" {
			continue
		}

		operator, field, err := parseOperatorAndKey(key, kinds)
		if err != nil {
			return nil, err
		}
		kind := kinds[field]

		if kind == listField && operator != "=" && operator != "IN" {
			return nil, fmt.Errorf("operator %s is not supported for list field: %s", operator, field)
		}
		if kind == timeField && operator == "LIKE" {
			return nil, fmt.Errorf("operator %s is not supported for time field: %s", operator, field)
		}

		raw := []string{queryParams[key]}
		// the IN operator takes a comma-separated list of variable length
		// (e.g. tags_anyOf=go,rust)
		if operator == "IN" {
			raw = strings.Split(queryParams[key], ",")
		}

		c := condition{field: field, operator: operator}
		for _, r := range raw {
			v, err := convertValue(kind, r)
			if err != nil {
				return nil, fmt.Errorf("invalid value for %s: %v", field, err)
			}
			c.values = append(c.values, v)
		}
		q.conditions = append(q.conditions, c)
	}

	var err error
	if q.sortBy, q.descending, err = parseSorting(queryParams, kinds); err != nil {
		return nil, err
	}
	if q.limit, q.offset, err = parsePagination(queryParams); err != nil {
		return nil, err
	}
	return q, nil
}

// parseOperatorAndKey determines the operator from the key's suffix and
// strips it. It returns the operator and the JSON field name.
func parseOperatorAndKey(key string, kinds map[string]fieldKind) (operator, field string, err error) {
	operator = "="

	suffixes := []struct{ suffix, operator string }{
		{"_ne", "!="},
		{"_lte", "<="},
		{"_gte", ">="},
		{"_lt", "<"},
		{"_gt", ">"},
		{"_contains", "LIKE"},
		{"_anyOf", "IN"},
	}
	for _, s := range suffixes {
		if strings.HasSuffix(key, s.suffix) {
			operator = s.operator
			key = strings.TrimSuffix(key, s.suffix)
			break
		}
	}

	if err := validateQueryParam(key, kinds); err != nil {
		return "", "", err
	}
	return operator, key, nil
}

func parseSorting(queryParams map[string]string, kinds map[string]fieldKind) (string, bool, error) {
	sortBy := queryParams["sortBy"]
	descending := false
	if strings.HasPrefix(sortBy, "-") {
		descending = true
		sortBy = strings.TrimPrefix(sortBy, "-")
	}
	if sortBy == "" {
		sortBy = defaultSort
	}

	if err := validateQueryParam(sortBy, kinds); err != nil {
		return "", false, fmt.Errorf("invalid sort value: %v", sortBy)
	}
	return sortBy, descending, nil
}

func parsePagination(queryParams map[string]string) (int, int, error) {
	limit := defaultLimit
	offset := 0
	if l, ok := queryParams["limit"]; ok {
		var err error
		limit, err = strconv.Atoi(l)
		if err != nil || limit < 1 || limit > maxLimit {
			return 0, 0, fmt.Errorf("pagination err; limit must be between 1 and %d: %q", maxLimit, l)
		}
	}
	if o, ok := queryParams["offset"]; ok {
		var err error
		offset, err = strconv.Atoi(o)
		if err != nil || offset < 0 {
			return 0, 0, fmt.Errorf("pagination err; offset must be a non-negative number: %q", o)
		}
	}
	return limit, offset, nil
}

func convertValue(kind fieldKind, value string) (interface{}, error) {
	if kind == timeField {
		t, err := time.Parse(time.RFC3339, value)
		if err != nil {
			return nil, err
		}
		return t.UTC(), nil
	}
	return value, nil
}

func validateQueryParam(key string, kinds map[string]fieldKind) error {
	if _, ok := kinds[key]; !ok || key == "" {
		return fmt.Errorf("invalid query parameter: %s", key)
	}
	return nil
}

var (
	stringListType = reflect.TypeOf(models.StringList{})
	timeType       = reflect.TypeOf(time.Time{})
)

// fieldKinds maps the model's JSON field names to how they are compared.
func fieldKinds(m models.Model) map[string]fieldKind {
	typ := reflect.TypeOf(m)
	if typ.Kind() == reflect.Ptr {
		typ = typ.Elem()
	}

	kinds := make(map[string]fieldKind, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		switch field.Type {
		case stringListType:
			kinds[name] = listField
		case timeType:
			kinds[name] = timeField
		default:
			kinds[name] = textField
		}
	}
	return kinds
}

// sqlClauses renders the query as WHERE, ORDER BY and LIMIT/OFFSET clauses
// with $n placeholders, and returns the values to pass alongside them.
func (q *modelQuery) sqlClauses() (string, []interface{}) {
	columns := models.MapJsonTags(q.model, "db")
	kinds := fieldKinds(q.model)

	phIndex := 1
	var whereParts []string
	var values []interface{}

	for _, c := range q.conditions {
		col := columns[c.field]
		switch {
		case kinds[c.field] == listField && c.operator == "=":
			whereParts = append(whereParts, fmt.Sprintf("$%d = ANY(%s)", phIndex, col))
			values = append(values, c.values[0])
			phIndex++

		case kinds[c.field] == listField && c.operator == "IN":
			arr := make(pq.StringArray, len(c.values))
			for i, v := range c.values {
				arr[i] = v.(string)
			}
			whereParts = append(whereParts, fmt.Sprintf("%s && $%d", col, phIndex))
			values = append(values, arr)
			phIndex++

		case c.operator == "IN":
			placeholders := make([]string, len(c.values))
			for i, v := range c.values {
				placeholders[i] = fmt.Sprintf("$%d", phIndex)
				values = append(values, v)
				phIndex++
			}
			whereParts = append(whereParts, fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ",")))

		case c.operator == "LIKE":
			whereParts = append(whereParts, fmt.Sprintf(`%s LIKE $%d ESCAPE '\'`, col, phIndex))
			values = append(values, "%"+likeEscaper.Replace(c.values[0].(string))+"%")
			phIndex++

		default:
			whereParts = append(whereParts, fmt.Sprintf("%s %s $%d", col, c.operator, phIndex))
			values = append(values, c.values[0])
			phIndex++
		}
	}

	order := "ASC"
	if q.descending {
		order = "DESC"
	}
	// id breaks ties so pages do not overlap
	orderClause := fmt.Sprintf("ORDER BY %s %s, id ASC", columns[q.sortBy], order)
	paginationClause := fmt.Sprintf("LIMIT $%d OFFSET $%d", phIndex, phIndex+1)
	values = append(values, q.limit, q.offset)

	if len(whereParts) == 0 {
		return fmt.Sprintf("%s %s", orderClause, paginationClause), values
	}
	whereClause := "WHERE " + strings.Join(whereParts, " AND ")
	return fmt.Sprintf("%s %s %s", whereClause, orderClause, paginationClause), values
}

// likeEscaper makes LIKE match its argument literally, like the QuoteMeta'd
// regex on the bson side.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

var bsonOperators = map[string]string{
	"!=": "$ne",
	"<":  "$lt",
	">":  "$gt",
	"<=": "$lte",
	">=": "$gte",
}

// bsonQuery renders the query as a filter document and find options.
func (q *modelQuery) bsonQuery() (bson.D, *options.FindOptions) {
	fields := models.MapJsonTags(q.model, "bson")

	clauses := bson.A{}
	for _, c := range q.conditions {
		key := fields[c.field]
		switch c.operator {
		case "=":
			// arrays match on any element, which is what list fields want
			clauses = append(clauses, bson.D{{Key: key, Value: c.values[0]}})
		case "IN":
			clauses = append(clauses, bson.D{{Key: key, Value: bson.D{{Key: "$in", Value: bson.A(c.values)}}}})
		case "LIKE":
			re := primitive.Regex{Pattern: regexp.QuoteMeta(c.values[0].(string))}
			clauses = append(clauses, bson.D{{Key: key, Value: re}})
		default:
			clauses = append(clauses, bson.D{{Key: key, Value: bson.D{{Key: bsonOperators[c.operator], Value: c.values[0]}}}})
		}
	}

	filter := bson.D{}
	if len(clauses) > 0 {
		filter = bson.D{{Key: "$and", Value: clauses}}
	}

	direction := 1
	if q.descending {
		direction = -1
	}
	sortDoc := bson.D{{Key: fields[q.sortBy], Value: direction}}
	if fields[q.sortBy] != "_id" {
		sortDoc = append(sortDoc, bson.E{Key: "_id", Value: 1})
	}
	opts := options.Find().
		SetSort(sortDoc).
		SetSkip(int64(q.offset)).
		SetLimit(int64(q.limit))

	return filter, opts
}
