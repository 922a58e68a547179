package config

import (
	"slices"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kirokuapp/kiroku/internal/timeutil"
	"github.com/kirokuapp/kiroku/stats"
)

// ViewConfig selects how aggregated records are bucketed and displayed.
type ViewConfig struct {
	Interval   timeutil.Interval
	GroupBy    stats.GroupBy
	Mode       stats.ValueMode
	Cumulative bool
}

// View builds the aggregation view selections from command-line arguments.
func View(ctx *cli.Context) (*ViewConfig, error) {
	cfg := &ViewConfig{
		Interval:   timeutil.IntervalDay,
		GroupBy:    stats.GroupByActivity,
		Mode:       stats.ModeTime,
		Cumulative: ctx.Bool("cumulative"),
	}

	if s := strings.TrimSpace(ctx.String("interval")); s != "" {
		interval := timeutil.Interval(s)

		if !slices.Contains(timeutil.IntervalCollection, interval) {
			return nil, errInvalidInterval
		}

		cfg.Interval = interval
	}

	if s := strings.TrimSpace(ctx.String("group-by")); s != "" {
		groupBy := stats.GroupBy(s)

		if !slices.Contains(stats.GroupByCollection, groupBy) {
			return nil, errInvalidGroupBy
		}

		cfg.GroupBy = groupBy
	}

	if s := strings.TrimSpace(ctx.String("mode")); s != "" {
		mode := stats.ValueMode(s)

		if mode != stats.ModeTime && mode != stats.ModeCount {
			return nil, errInvalidMode
		}

		cfg.Mode = mode
	}

	return cfg, nil
}
