package stats

import (
	"math"
	"sort"
	"time"

	"github.com/kirokuapp/kiroku/internal/models"
)

// Window selects which period pair a trend ranking compares.
type Window int

const (
	Window7Days Window = iota
	Window30Days
)

// Entry accumulates one group key's totals across the four trend windows.
// Last is the most recent contributing record timestamp, used as the final
// tie-break in rankings.
type Entry struct {
	Key       string
	Current7  float64
	Prior7    float64
	Current30 float64
	Prior30   float64
	Last      time.Time
}

// Totals returns the (current, prior) pair for the given window.
func (e Entry) Totals(w Window) (current, prior float64) {
	if w == Window7Days {
		return e.Current7, e.Prior7
	}

	return e.Current30, e.Prior30
}

// Diff is current minus prior for the given window.
func (e Entry) Diff(w Window) float64 {
	current, prior := e.Totals(w)
	return current - prior
}

// Rate is the percentage change for the given window, nil when the prior
// window is empty and a ratio is undefined.
func (e Entry) Rate(w Window) *float64 {
	current, prior := e.Totals(w)
	if prior == 0 {
		return nil
	}

	rate := (current/prior - 1) * 100

	return &rate
}

// New reports whether the entry appeared only in the current window.
func (e Entry) New(w Window) bool {
	current, prior := e.Totals(w)
	return prior == 0 && current != 0
}

// ComputeTrends sums each group key's record values into four windows
// anchored on a single reference instant: the last 7 days, the 7 days
// before that, the last 30 days, and the 30 days before that. Entries with
// nothing anywhere in the trailing 60 days are dropped so stale groups do
// not clutter rankings. Output order is unspecified; callers apply
// SortIncrease or SortDecrease.
func ComputeTrends(
	records []models.Record,
	groupBy GroupBy,
	now time.Time,
) []Entry {
	byKey := make(map[string]*Entry)

	cut7 := now.AddDate(0, 0, -7)
	cut14 := now.AddDate(0, 0, -14)
	cut30 := now.AddDate(0, 0, -30)
	cut60 := now.AddDate(0, 0, -60)

	for _, rec := range records {
		created := rec.CreatedAt
		if created.After(now) || created.Before(cut60) {
			continue
		}

		for _, key := range groupKeys(rec, groupBy) {
			entry, ok := byKey[key]
			if !ok {
				entry = &Entry{Key: key}
				byKey[key] = entry
			}

			if !created.Before(cut7) {
				entry.Current7 += rec.Value
			} else if !created.Before(cut14) {
				entry.Prior7 += rec.Value
			}

			if !created.Before(cut30) {
				entry.Current30 += rec.Value
			} else {
				entry.Prior30 += rec.Value
			}

			if created.After(entry.Last) {
				entry.Last = created
			}
		}
	}

	entries := make([]Entry, 0, len(byKey))

	for _, entry := range byKey {
		if entry.Current30+entry.Prior30 == 0 {
			continue
		}

		entries = append(entries, *entry)
	}

	return entries
}

// SortIncrease orders entries by growth: new entries first (growth from
// nothing is always newsworthy), entries empty in both windows last, the
// rest by rate descending with current total and recency as tie-breaks.
func SortIncrease(entries []Entry, w Window) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]

		aNew, bNew := a.New(w), b.New(w)
		if aNew != bNew {
			return aNew
		}

		aCurrent, _ := a.Totals(w)
		bCurrent, _ := b.Totals(w)

		aEmpty := !aNew && aCurrent == 0 && a.Diff(w) == 0
		bEmpty := !bNew && bCurrent == 0 && b.Diff(w) == 0

		if aEmpty != bEmpty {
			return bEmpty
		}

		aRate, bRate := rateOr(a, w, math.Inf(-1)), rateOr(b, w, math.Inf(-1))
		if aRate != bRate {
			return aRate > bRate
		}

		if aCurrent != bCurrent {
			return aCurrent > bCurrent
		}

		return a.Last.After(b.Last)
	})
}

// SortDecrease orders entries by decline: rate ascending with an empty
// prior window treated as +Inf (no decline to report), then current total
// and recency ascending.
func SortDecrease(entries []Entry, w Window) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]

		aRate, bRate := rateOr(a, w, math.Inf(1)), rateOr(b, w, math.Inf(1))
		if aRate != bRate {
			return aRate < bRate
		}

		aCurrent, _ := a.Totals(w)
		bCurrent, _ := b.Totals(w)

		if aCurrent != bCurrent {
			return aCurrent < bCurrent
		}

		return a.Last.Before(b.Last)
	})
}

func rateOr(e Entry, w Window, fallback float64) float64 {
	rate := e.Rate(w)
	if rate == nil {
		return fallback
	}

	return *rate
}
