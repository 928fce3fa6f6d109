package models

import (
	"database/sql/driver"
	"strings"

	"github.com/lib/pq"
)

// StringList is an ordered list of strings stored as a text[] column in
// Postgres and as an array in document stores.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	return pq.StringArray(l).Value()
}

func (l *StringList) Scan(src interface{}) error {
	var a pq.StringArray
	if err := a.Scan(src); err != nil {
		return err
	}
	*l = StringList(a)
	return nil
}

// trimmed returns a copy with every item trimmed of surrounding whitespace.
func (l StringList) trimmed() StringList {
	if l == nil {
		return nil
	}
	out := make(StringList, len(l))
	for i, s := range l {
		out[i] = strings.TrimSpace(s)
	}
	return out
}
