package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/lestrrat-go/strftime"
)

// SmartDate is the default temporal format id. It picks the coarsest
// pattern that still distinguishes the value: a year for January 1st, a
// month name for the first of a month, and so on down to milliseconds.
const SmartDate = "smart_date"

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// TimeFormat formats temporal values according to one format id.
type TimeFormat struct {
	id      string
	pattern *strftime.Strftime
}

// ParseTimeFormat compiles a strftime pattern. An empty id or "smart_date"
// yields the smart formatter.
func ParseTimeFormat(id string) (*TimeFormat, error) {
	if id == "" || id == SmartDate {
		return &TimeFormat{id: SmartDate}, nil
	}
	p, err := strftime.New(id)
	if err != nil {
		return nil, fmt.Errorf("invalid date format %q: %w", id, err)
	}
	return &TimeFormat{id: id, pattern: p}, nil
}

// ID returns the format id this formatter implements.
func (f *TimeFormat) ID() string { return f.id }

// FormatTime implements ports.TimeFormatter. Values that cannot be read as
// a point in time are returned in their display form.
func (f *TimeFormat) FormatTime(raw any) string {
	t, ok := ToTime(raw)
	if !ok {
		if raw == nil {
			return "<NULL>"
		}
		return fmt.Sprint(raw)
	}
	if f.pattern == nil {
		return smartDate(t)
	}
	return f.pattern.FormatString(t)
}

// ToTime reads raw as a UTC time: time.Time, epoch milliseconds, or a
// timestamp string.
func ToTime(raw any) (time.Time, bool) {
	switch v := raw.(type) {
	case time.Time:
		return v.UTC(), true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return v.UTC(), true
	case float64:
		return fromMillis(v)
	case float32:
		return fromMillis(float64(v))
	case int:
		return time.UnixMilli(int64(v)).UTC(), true
	case int64:
		return time.UnixMilli(v).UTC(), true
	case int32:
		return time.UnixMilli(int64(v)).UTC(), true
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return fromMillis(f)
		}
		return time.Time{}, false
	case string:
		return parseTimestamp(v)
	default:
		return time.Time{}, false
	}
}

func fromMillis(ms float64) (time.Time, bool) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)).UTC(), true
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), true
	}
	return time.Time{}, false
}

func smartDate(t time.Time) string {
	switch {
	case t.Nanosecond()/int(time.Millisecond) != 0:
		return fmt.Sprintf(".%03dms", t.Nanosecond()/int(time.Millisecond))
	case t.Second() != 0:
		return mustFormat(":%Ss", t)
	case t.Minute() != 0:
		return mustFormat("%I:%M", t)
	case t.Hour() != 0:
		return mustFormat("%I %p", t)
	case t.Day() != 1:
		if t.Weekday() != time.Sunday {
			return mustFormat("%a %d", t)
		}
		return mustFormat("%b %d", t)
	case t.Month() != time.January:
		return mustFormat("%B", t)
	default:
		return mustFormat("%Y", t)
	}
}

func mustFormat(pattern string, t time.Time) string {
	s, err := strftime.Format(pattern, t)
	if err != nil {
		return t.Format(time.RFC3339)
	}
	return s
}
