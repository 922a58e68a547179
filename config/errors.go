package config

import "errors"

var (
	errInvalidDateRange = errors.New(
		"the end date must not be earlier than the start date",
	)

	errInvalidPeriod = errors.New(
		"please provide a valid time period",
	)

	errInvalidInterval = errors.New(
		"interval must be one of: day, week, month",
	)

	errInvalidGroupBy = errors.New(
		"group-by must be one of: group, activity, tag, activityMemo",
	)

	errInvalidMode = errors.New(
		"mode must be one of: time, count",
	)
)
