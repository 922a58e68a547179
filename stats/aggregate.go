// Package stats computes time-series aggregations and period-over-period
// trends over record sets. Both engines are pure functions over snapshots
// and are safe to recompute redundantly.
package stats

import (
	"sort"

	"github.com/maruel/natural"

	"github.com/kirokuapp/kiroku/internal/models"
	"github.com/kirokuapp/kiroku/internal/timeutil"
)

// GroupBy selects the grouping key of an aggregation.
type GroupBy string

const (
	GroupByGroup    GroupBy = "group"
	GroupByActivity GroupBy = "activity"
	GroupByTag      GroupBy = "tag"
	// GroupByActivityMemo groups by activity name and memo text combined.
	GroupByActivityMemo GroupBy = "activityMemo"
)

var GroupByCollection = []GroupBy{
	GroupByGroup,
	GroupByActivity,
	GroupByTag,
	GroupByActivityMemo,
}

// ValueMode selects what an aggregation measures.
type ValueMode string

const (
	// ModeTime sums minutes over duration records only.
	ModeTime ValueMode = "time"
	// ModeCount tallies occurrences. Duration records contribute a count
	// of 1 each, so "times engaged" includes timed sessions.
	ModeCount ValueMode = "count"
)

// Fallback keys for records missing the grouping attribute.
const (
	unknownGroup    = "Unknown Group"
	unknownActivity = "Unknown Activity"
	noTag           = "No Tag"
)

// Bucket is one aggregation period. Values holds an entry for every group
// key observed anywhere in the result set; absent contributions are
// explicit zeros.
type Bucket struct {
	Period string
	Values map[string]float64
}

// groupKeys returns the keys a record contributes to. Tag grouping fans a
// single record into one contribution per tag.
func groupKeys(rec models.Record, groupBy GroupBy) []string {
	switch groupBy {
	case GroupByGroup:
		if rec.ActivityGroup == "" {
			return []string{unknownGroup}
		}

		return []string{rec.ActivityGroup}
	case GroupByTag:
		if len(rec.Tags) == 0 {
			return []string{noTag}
		}

		keys := make([]string, 0, len(rec.Tags))
		for _, tag := range rec.Tags {
			keys = append(keys, tag.Name)
		}

		return keys
	case GroupByActivityMemo:
		name := rec.ActivityName
		if name == "" {
			name = unknownActivity
		}

		if rec.Memo == "" {
			return []string{name}
		}

		return []string{name + ": " + rec.Memo}
	default:
		if rec.ActivityName == "" {
			return []string{unknownActivity}
		}

		return []string{rec.ActivityName}
	}
}

// contribution returns the amount a record adds under the given mode, and
// whether the record participates at all.
func contribution(rec models.Record, mode ValueMode) (float64, bool) {
	switch mode {
	case ModeTime:
		if rec.Unit != models.UnitMinutes {
			return 0, false
		}

		return rec.Value, true
	case ModeCount:
		switch rec.Unit {
		case models.UnitCount:
			return rec.Value, true
		case models.UnitMinutes:
			// a timed session counts as one occurrence
			return 1, true
		}
	}

	return 0, false
}

// Aggregate buckets records by period and group key. Buckets are sorted
// ascending by period key (lexicographic order is date order for all
// interval formats) and zero-filled across the union of group keys. With
// cumulative set, each value becomes the running sum up to and including
// its period. Values are never rounded here; rounding is a presentation
// concern.
func Aggregate(
	records []models.Record,
	interval timeutil.Interval,
	groupBy GroupBy,
	mode ValueMode,
	cumulative bool,
) []Bucket {
	byPeriod := make(map[string]map[string]float64)

	for _, rec := range records {
		amount, ok := contribution(rec, mode)
		if !ok {
			continue
		}

		period := timeutil.PeriodKey(rec.CreatedAt, interval)

		values, ok := byPeriod[period]
		if !ok {
			values = make(map[string]float64)
			byPeriod[period] = values
		}

		for _, key := range groupKeys(rec, groupBy) {
			values[key] += amount
		}
	}

	buckets := make([]Bucket, 0, len(byPeriod))
	for period, values := range byPeriod {
		buckets = append(buckets, Bucket{Period: period, Values: values})
	}

	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Period < buckets[j].Period
	})

	zeroFill(buckets)

	if cumulative {
		accumulate(buckets)
	}

	return buckets
}

// zeroFill gives every bucket an explicit entry for every group key seen in
// the full result set, so no row is sparse.
func zeroFill(buckets []Bucket) {
	all := make(map[string]struct{})

	for _, b := range buckets {
		for key := range b.Values {
			all[key] = struct{}{}
		}
	}

	for _, b := range buckets {
		for key := range all {
			if _, ok := b.Values[key]; !ok {
				b.Values[key] = 0
			}
		}
	}
}

func accumulate(buckets []Bucket) {
	running := make(map[string]float64)

	for _, b := range buckets {
		for key, v := range b.Values {
			running[key] += v
			b.Values[key] = running[key]
		}
	}
}

// GroupKeySet returns the union of group keys across buckets in natural
// sort order, for stable chart legends and table columns.
func GroupKeySet(buckets []Bucket) []string {
	all := make(map[string]struct{})

	for _, b := range buckets {
		for key := range b.Values {
			all[key] = struct{}{}
		}
	}

	keys := make([]string, 0, len(all))
	for key := range all {
		keys = append(keys, key)
	}

	sort.Sort(natural.StringSlice(keys))

	return keys
}
