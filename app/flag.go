package app

import "github.com/urfave/cli/v2"

var (
	activityFlag = &cli.StringFlag{
		Name:    "activity",
		Aliases: []string{"a"},
		Usage:   "Name of the activity to track",
	}

	subActivityFlag = &cli.StringFlag{
		Name:  "sub",
		Usage: "Name of the activity for the secondary timer",
	}

	recordCmdFlag = &cli.StringFlag{
		Name:    "record-cmd",
		Aliases: []string{"cmd"},
		Usage:   "Execute an arbitrary command after each completed measurement",
	}

	tagFlag = &cli.StringFlag{
		Name:    "tag",
		Aliases: []string{"t"},
		Usage:   "Filter records by comma-delimited tags",
	}

	periodFlag = &cli.StringFlag{
		Name:    "period",
		Aliases: []string{"p"},
		Usage:   "Report period: today, yesterday, 7days, 14days, 30days, 90days, 180days, 365days, all-time",
	}

	startFlag = &cli.StringFlag{
		Name:  "start",
		Usage: "Report start date (any common date format)",
	}

	endFlag = &cli.StringFlag{
		Name:  "end",
		Usage: "Report end date (any common date format)",
	}

	intervalFlag = &cli.StringFlag{
		Name:    "interval",
		Aliases: []string{"i"},
		Usage:   "Bucketing interval: day, week, month",
	}

	groupByFlag = &cli.StringFlag{
		Name:    "group-by",
		Aliases: []string{"g"},
		Usage:   "Grouping key: group, activity, tag, activityMemo",
	}

	modeFlag = &cli.StringFlag{
		Name:    "mode",
		Aliases: []string{"m"},
		Usage:   "Value mode: time (minutes logged) or count (times engaged)",
	}

	cumulativeFlag = &cli.BoolFlag{
		Name:  "cumulative",
		Usage: "Show running totals instead of per-period values",
	}

	windowFlag = &cli.StringFlag{
		Name:    "window",
		Aliases: []string{"w"},
		Usage:   "Trend window: 7 or 30 (days)",
		Value:   "7",
	}

	sortFlag = &cli.StringFlag{
		Name:  "sort",
		Usage: "Trend ranking: increase or decrease",
		Value: "increase",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print output as JSON",
	}

	liveFlag = &cli.BoolFlag{
		Name:  "live",
		Usage: "Include in-progress measurements as live records",
	}

	portFlag = &cli.UintFlag{
		Name:  "port",
		Usage: "Port for the bundled backend server",
	}

	debugFlag = &cli.BoolFlag{
		Name:  "debug",
		Usage: "Log every UI message for troubleshooting",
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}
)
