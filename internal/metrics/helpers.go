package metrics

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Slice is one segment of a categorical breakdown.
type Slice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"` // percentage of total, 0–100
	Count int     `json:"count"`
	Color string  `json:"color"`
}

// RankedItem is one row of a leaderboard.
type RankedItem struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// percentage returns part/total×100, or 0 when total is 0.
func percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func ratio(num float64, den int) float64 {
	if den == 0 {
		return 0
	}
	return num / float64(den)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// percentChange returns (cur-prev)/prev×100, or nil when there is no baseline.
func percentChange(cur, prev int) *float64 {
	if prev == 0 {
		return nil
	}
	v := float64(cur-prev) / float64(prev) * 100
	return &v
}

// rank orders counts descending, breaking ties by name, and keeps the top n.
// n <= 0 keeps everything.
func rank(counts map[string]int, n int) []RankedItem {
	items := make([]RankedItem, 0, len(counts))
	for name, c := range counts {
		items = append(items, RankedItem{Name: name, Count: c})
	}
	sortRanked(items)
	if n > 0 && len(items) > n {
		items = items[:n]
	}
	return items
}

func sortRanked(items []RankedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Count != items[j].Count {
			return items[i].Count > items[j].Count
		}
		return items[i].Name < items[j].Name
	})
}

// top returns the first entry of rank(counts, 1), or a zero item.
func top(counts map[string]int) RankedItem {
	if r := rank(counts, 1); len(r) > 0 {
		return r[0]
	}
	return RankedItem{}
}

// slicesFromOrdered converts ordered category counts into percentage slices.
func (e *Engine) slicesFromOrdered(names []string, counts map[string]int, total int) []Slice {
	out := make([]Slice, 0, len(names))
	for i, name := range names {
		out = append(out, Slice{
			Name:  name,
			Value: round2(percentage(counts[name], total)),
			Count: counts[name],
			Color: e.color(i),
		})
	}
	return out
}

var shortMonthsES = [...]string{
	"ene", "feb", "mar", "abr", "may", "jun",
	"jul", "ago", "sept", "oct", "nov", "dic",
}

// dayLabel formats t as "4 mar", appending the year when it differs from
// the reference year.
func dayLabel(t, ref time.Time) string {
	label := fmt.Sprintf("%d %s", t.Day(), shortMonthsES[t.Month()-1])
	if t.Year() != ref.Year() {
		label += fmt.Sprintf(" %d", t.Year())
	}
	return label
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the Monday that starts t's week.
func startOfWeek(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	return startOfDay(t).AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// formatDuration renders seconds as "Hh Mm".
func formatDuration(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(seconds)
	return fmt.Sprintf("%dh %dm", total/3600, (total%3600)/60)
}
