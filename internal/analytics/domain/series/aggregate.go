package series

import (
	"math"
	"sort"
	"time"
)

// Point is one time-series value.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

type bucket struct {
	start time.Time
	sum   float64
	count int
}

// Aggregate groups samples into buckets and returns one averaged point per
// non-empty bucket, ascending by representative timestamp. Means are rounded
// to two decimals. Raw samples are returned sorted and unchanged.
func Aggregate(samples []Point, interval Interval, loc *time.Location) ([]Point, error) {
	if !interval.IsValid() {
		return nil, ErrInvalidInterval
	}
	if len(samples) == 0 {
		return []Point{}, nil
	}
	if interval == IntervalRaw {
		raw := append([]Point(nil), samples...)
		sort.SliceStable(raw, func(i, j int) bool { return raw[i].Timestamp.Before(raw[j].Timestamp) })
		return raw, nil
	}

	buckets := make(map[string]*bucket)
	for _, sample := range samples {
		start, err := BucketStart(interval, sample.Timestamp, loc)
		if err != nil {
			return nil, err
		}
		key, err := BucketKey(interval, start)
		if err != nil {
			return nil, err
		}
		b := buckets[key]
		if b == nil {
			b = &bucket{start: start}
			buckets[key] = b
		}
		b.sum += sample.Value
		b.count++
	}

	result := make([]Point, 0, len(buckets))
	for _, b := range buckets {
		at, err := Representative(interval, b.start)
		if err != nil {
			return nil, err
		}
		result = append(result, Point{Timestamp: at, Value: Round2(b.sum / float64(b.count))})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Timestamp.Before(result[j].Timestamp) })
	return result, nil
}

// Round2 rounds half away from zero to two decimals.
func Round2(value float64) float64 {
	return math.Round(value*100) / 100
}
