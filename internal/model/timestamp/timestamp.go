package timestamp

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

const (
	DateOnly = time.DateOnly
	RFC3339  = time.RFC3339
)

var (
	DateOnlyRegexp = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	RFC3339Regexp  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`)
)

// Day is a UTC calendar day. Usage counters are keyed on these.
type Day time.Time

// layoutForValue returns the layout to use for a given day value.
func layoutForValue(value string) (string, error) {
	switch {
	case DateOnlyRegexp.MatchString(value):
		return DateOnly, nil
	case RFC3339Regexp.MatchString(value):
		return time.RFC3339Nano, nil
	default:
		return "", fmt.Errorf("unrecognized date layout: %s", value)
	}
}

// Parse attempts to parse the given value as a calendar day. The accepted formats are:
//
//	2024-02-21                - The specified UTC calendar day.
//	2024-02-21T01:02:03Z      - The UTC calendar day containing the specified instant.
//	2024-02-21T20:02:03-07:00 - The UTC calendar day containing the specified instant (2024-02-22 here).
func Parse(value string) (Day, error) {
	var t time.Time

	layout, err := layoutForValue(value)
	if err != nil {
		return Day(t), err
	}

	t, err = time.ParseInLocation(layout, value, time.UTC)
	if err != nil {
		return Day(t), err
	}

	t = t.UTC()
	return Day(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)), nil
}

// Time returns the day as midnight UTC.
func (d Day) Time() time.Time {
	return time.Time(d)
}

// String formats the day as YYYY-MM-DD.
func (d Day) String() string {
	return time.Time(d).Format(DateOnly)
}

// UnmarshalJSON converts a JSON string to a day.
func (d *Day) UnmarshalJSON(data []byte) error {
	value := string(data)

	// Ignore empty values.
	if value == "null" || value == `""` {
		return nil
	}

	value, err := strconv.Unquote(value)
	if err != nil {
		return err
	}

	*d, err = Parse(value)
	return err
}

// MarshalJSON converts a day to a JSON string.
func (d Day) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}
