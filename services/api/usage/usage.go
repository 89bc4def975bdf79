// Package usage aggregates user and access statistics for the admin dashboard.
package usage

import (
	"sort"
	"strings"
	"time"

	"github.com/trivia-trens/trivia-monitora/services/api/levels"
)

// NoArea labels users without an area.
const NoArea = "Sem área"

// Series is a labelled set of counts, ready for charting.
type Series struct {
	Labels []string `json:"labels"`
	Values []int    `json:"values"`
}

// Total sums the series values.
func (s Series) Total() int {
	total := 0
	for _, v := range s.Values {
		total += v
	}
	return total
}

// AreaCounts counts users per area, sorted case-insensitively by label.
func AreaCounts(areas []string) Series {
	counts := map[string]int{}
	for _, area := range areas {
		area = strings.TrimSpace(area)
		if area == "" {
			area = NoArea
		}
		counts[area]++
	}

	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.SliceStable(labels, func(i, j int) bool {
		li, lj := strings.ToLower(labels[i]), strings.ToLower(labels[j])
		if li == lj {
			return labels[i] < labels[j]
		}
		return li < lj
	})

	s := Series{Labels: labels, Values: make([]int, 0, len(labels))}
	for _, label := range labels {
		s.Values = append(s.Values, counts[label])
	}
	return s
}

// DailyAccesses counts access timestamps per civil day in zone, labelled
// "dd/mm" in chronological order. Unparsable timestamps are skipped.
func DailyAccesses(timestamps []string, zone *time.Location) Series {
	if zone == nil {
		zone = levels.DefaultZone
	}

	counts := map[string]int{}
	for _, raw := range timestamps {
		ts := levels.ParseTimestamp(raw, zone)
		if ts == nil {
			continue
		}
		counts[ts.In(zone).Format("2006-01-02")]++
	}

	days := make([]string, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Strings(days)

	s := Series{Labels: make([]string, 0, len(days)), Values: make([]int, 0, len(days))}
	for _, day := range days {
		d, _ := time.Parse("2006-01-02", day)
		s.Labels = append(s.Labels, d.Format("02/01"))
		s.Values = append(s.Values, counts[day])
	}
	return s
}
