package stats

import (
	"fmt"
	"io"
	"strconv"

	"github.com/pterm/pterm"

	"github.com/kirokuapp/kiroku/internal/timeutil"
	"github.com/kirokuapp/kiroku/internal/ui"
)

const barChartChar = "▇"

// RenderChart prints a horizontal bar chart of per-period totals followed by
// a boxed per-key breakdown table.
func RenderChart(w io.Writer, buckets []Bucket, mode ValueMode) {
	if len(buckets) == 0 {
		fmt.Fprintln(w, "no records for the selected period")
		return
	}

	var bars pterm.Bars

	for _, b := range buckets {
		var total float64
		for _, v := range b.Values {
			total += v
		}

		bars = append(bars, pterm.Bar{
			Value: timeutil.Round(total),
			Label: b.Period,
		})
	}

	header := ui.Blue(fmt.Sprintf("Totals per period (%s)", modeLabel(mode)))

	chart, err := pterm.DefaultBarChart.WithHorizontalBarCharacter(barChartChar).
		WithHorizontal().
		WithShowValue().
		WithBars(bars).
		Srender()
	if err != nil {
		pterm.Error.Println(err)
		return
	}

	fmt.Fprintln(w, header+chart)

	keys := GroupKeySet(buckets)
	if len(keys) < 2 {
		return
	}

	data := make([][]string, 0, len(buckets)+1)
	data = append(data, append([]string{"period"}, keys...))

	for _, b := range buckets {
		row := make([]string, 0, len(keys)+1)
		row = append(row, b.Period)

		for _, key := range keys {
			row = append(row, formatValue(b.Values[key], mode))
		}

		data = append(data, row)
	}

	ui.PrintTable(data, w)
}

// RenderTrends prints the ranking table for one window. Entries are assumed
// to be pre-sorted by SortIncrease or SortDecrease.
func RenderTrends(w io.Writer, entries []Entry, window Window, mode ValueMode) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "no trend data for the trailing 60 days")
		return
	}

	current, prior := "last 7 days", "prior 7 days"
	if window == Window30Days {
		current, prior = "last 30 days", "prior 30 days"
	}

	data := make([][]string, 0, len(entries)+1)
	data = append(data, []string{"name", current, prior, "diff", "rate"})

	for _, e := range entries {
		cur, pri := e.Totals(window)

		data = append(data, []string{
			e.Key,
			formatValue(cur, mode),
			formatValue(pri, mode),
			formatDiff(e.Diff(window), mode),
			formatRate(e, window),
		})
	}

	ui.PrintTable(data, w)
}

func modeLabel(mode ValueMode) string {
	if mode == ModeCount {
		return "count"
	}

	return "minutes"
}

func formatValue(v float64, mode ValueMode) string {
	if mode == ModeCount {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	hrs, mins := timeutil.MinsToHoursAndMins(timeutil.Round(v))

	return fmt.Sprintf("%d:%02d", hrs, mins)
}

func formatDiff(diff float64, mode ValueMode) string {
	sign := "+"
	if diff < 0 {
		sign = "-"
		diff = -diff
	}

	text := sign + formatValue(diff, mode)

	if sign == "+" {
		return ui.Green(text)
	}

	return ui.Red(text)
}

func formatRate(e Entry, window Window) string {
	rate := e.Rate(window)
	if rate == nil {
		if e.New(window) {
			return ui.Magenta("new!!")
		}

		return "-"
	}

	text := fmt.Sprintf("%+.1f%%", *rate)

	if *rate >= 0 {
		return ui.Green(text)
	}

	return ui.Red(text)
}
