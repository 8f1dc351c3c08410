package series

import (
	"errors"
	"strings"
	"time"
)

// ErrInvalidInterval is returned when the interval is unsupported.
var ErrInvalidInterval = errors.New("series: invalid interval")

// Interval is the bucketing resolution of a time-series query.
type Interval string

const (
	// IntervalRaw returns native samples without aggregation.
	IntervalRaw   Interval = "raw"
	IntervalDay   Interval = "day"
	IntervalWeek  Interval = "week"
	IntervalMonth Interval = "month"
)

// ParseInterval accepts raw, hour (alias of raw), day, week and month.
// An empty value means raw.
func ParseInterval(value string) (Interval, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "raw", "hour":
		return IntervalRaw, nil
	case "day":
		return IntervalDay, nil
	case "week":
		return IntervalWeek, nil
	case "month":
		return IntervalMonth, nil
	default:
		return "", ErrInvalidInterval
	}
}

// IsValid checks if the interval is one of the supported values.
func (i Interval) IsValid() bool {
	switch i {
	case IntervalRaw, IntervalDay, IntervalWeek, IntervalMonth:
		return true
	default:
		return false
	}
}

// BucketStart returns the start of the bucket containing t, in loc.
// Weeks start on Monday.
func BucketStart(interval Interval, t time.Time, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	switch interval {
	case IntervalDay:
		return day, nil
	case IntervalWeek:
		sinceMonday := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -sinceMonday), nil
	case IntervalMonth:
		return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc), nil
	default:
		return time.Time{}, ErrInvalidInterval
	}
}

// Representative returns the timestamp reported for a bucket: noon of the day,
// noon of the week's Monday, or noon of the month's 15th. It is a charting
// convention and does not correspond to a measured sample.
func Representative(interval Interval, bucketStart time.Time) (time.Time, error) {
	switch interval {
	case IntervalDay, IntervalWeek:
		return time.Date(bucketStart.Year(), bucketStart.Month(), bucketStart.Day(), 12, 0, 0, 0, bucketStart.Location()), nil
	case IntervalMonth:
		return time.Date(bucketStart.Year(), bucketStart.Month(), 15, 12, 0, 0, 0, bucketStart.Location()), nil
	default:
		return time.Time{}, ErrInvalidInterval
	}
}

// BucketKey renders a bucket start for display and grouping.
func BucketKey(interval Interval, bucketStart time.Time) (string, error) {
	switch interval {
	case IntervalDay, IntervalWeek:
		return bucketStart.Format("2006-01-02"), nil
	case IntervalMonth:
		return bucketStart.Format("2006-01"), nil
	default:
		return "", ErrInvalidInterval
	}
}
