package financas

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are tried in order when decoding due and payment dates. The API
// stores midnight UTC timestamps but older records carry bare dates.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// Date is a calendar date. It decodes from either a bare date or a full
// timestamp and always encodes as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to its calendar day in t's location
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, t.Location())}
}

// UnmarshalJSON implements json.Unmarshaler for Date
func (d *Date) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)

	if str == "" || str == "null" {
		d.Time = time.Time{}
		return nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, str); err == nil {
			d.Time = t
			return nil
		}
	}

	return fmt.Errorf("unable to parse date: %s", str)
}

// MarshalJSON implements json.Marshaler for Date
func (d Date) MarshalJSON() ([]byte, error) {
	if d.Time.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

// String returns the date as YYYY-MM-DD, or "" for the zero date
func (d Date) String() string {
	if d.Time.IsZero() {
		return ""
	}
	return d.Time.Format("2006-01-02")
}

// Display renders the date as DD/MM/YYYY
func (d Date) Display() string {
	if d.Time.IsZero() {
		return ""
	}
	return d.Time.Format("02/01/2006")
}

// apiTimestamp formats t the way the API expects timestamps in queries and
// bodies: UTC with millisecond precision.
func apiTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}

func apiDate(t time.Time) string {
	return t.Format("2006-01-02")
}
