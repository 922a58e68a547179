package config

import (
	"slices"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
	"github.com/urfave/cli/v2"

	"github.com/kirokuapp/kiroku/internal/timeutil"
)

// FilterConfig restricts which records a view considers, by creation time
// and assigned tags.
type FilterConfig struct {
	StartTime time.Time
	EndTime   time.Time
	Tags      []string
}

// Contains reports whether a record created at t with the given tag names
// passes the filter.
func (f *FilterConfig) Contains(t time.Time, tags []string) bool {
	if !f.StartTime.IsZero() && t.Before(f.StartTime) {
		return false
	}

	if !f.EndTime.IsZero() && t.After(f.EndTime) {
		return false
	}

	if len(f.Tags) == 0 {
		return true
	}

	for _, want := range f.Tags {
		if slices.Contains(tags, want) {
			return true
		}
	}

	return false
}

// getTimeRange returns the start and end time according to the
// specified time period.
func getTimeRange(period timeutil.Period) (start, end time.Time) {
	now := time.Now()

	start = timeutil.RoundToStart(now)

	end = timeutil.RoundToEnd(now)

	//nolint:exhaustive // other cases covered by default
	switch period {
	case timeutil.PeriodToday:
		return
	case timeutil.PeriodYesterday:
		start = now.AddDate(0, 0, timeutil.Range[period])
		start = timeutil.RoundToStart(start)
		end = timeutil.RoundToEnd(start)

		return
	case timeutil.PeriodAllTime:
		start = time.Time{}
		return
	default:
		start = now.AddDate(0, 0, timeutil.Range[period])
		start = timeutil.RoundToStart(start)
	}

	return
}

func parseDate(input string) (time.Time, error) {
	parsed, err := dateparser.Parse(nil, input)
	if err != nil {
		return time.Time{}, err
	}

	return parsed.Time, nil
}

// Filter builds the record filter from command-line arguments. The period
// flag wins over explicit start/end dates; dates accept any format
// go-dateparser understands.
func Filter(ctx *cli.Context) (*FilterConfig, error) {
	filterCfg := &FilterConfig{}

	if ctx.String("tag") != "" {
		filterCfg.Tags = strings.Split(ctx.String("tag"), ",")
	}

	period := timeutil.Period(strings.TrimSpace(ctx.String("period")))

	if period != "" && !slices.Contains(timeutil.PeriodCollection, period) {
		return nil, errInvalidPeriod
	}

	if period != "" {
		filterCfg.StartTime, filterCfg.EndTime = getTimeRange(period)

		return filterCfg, nil
	}

	start := ctx.String("start")
	if start != "" {
		dateTime, err := parseDate(start)
		if err != nil {
			return nil, err
		}

		filterCfg.StartTime = dateTime
	}

	filterCfg.EndTime = time.Now()

	end := ctx.String("end")
	if end != "" {
		dateTime, err := parseDate(end)
		if err != nil {
			return nil, err
		}

		filterCfg.EndTime = dateTime
	}

	if filterCfg.StartTime.IsZero() {
		// no period and no start date means everything
		return filterCfg, nil
	}

	if filterCfg.EndTime.Before(filterCfg.StartTime) {
		return nil, errInvalidDateRange
	}

	return filterCfg, nil
}
