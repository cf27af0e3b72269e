package catalog

import (
	"sort"
	"time"

	"studiobooking/internal/scheduling"
)

// DayWindow is the bookable part of a day, in whole UTC hours.
type DayWindow struct {
	OpenHour  int
	CloseHour int
}

func (w DayWindow) On(day time.Time) scheduling.Interval {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return scheduling.NewInterval(
		d.Add(time.Duration(w.OpenHour)*time.Hour),
		d.Add(time.Duration(w.CloseHour)*time.Hour),
	)
}

// busyWithin clips busy to window and merges what touches or overlaps.
func busyWithin(window scheduling.Interval, busy []scheduling.Interval) []scheduling.Interval {
	sort.Slice(busy, func(i, j int) bool { return busy[i].Start.Before(busy[j].Start) })

	merged := make([]scheduling.Interval, 0, len(busy))
	for _, s := range busy {
		if !s.Overlaps(window) {
			continue
		}
		if s.Start.Before(window.Start) {
			s.Start = window.Start
		}
		if s.End.After(window.End) {
			s.End = window.End
		}

		if len(merged) == 0 {
			merged = append(merged, s)
			continue
		}
		last := &merged[len(merged)-1]
		if !s.Start.After(last.End) {
			if s.End.After(last.End) {
				last.End = s.End
			}
		} else {
			merged = append(merged, s)
		}
	}
	return merged
}

// subtractBusy returns the gaps of window not covered by merged.
func subtractBusy(window scheduling.Interval, merged []scheduling.Interval) []scheduling.Interval {
	cur := window.Start
	out := make([]scheduling.Interval, 0, len(merged)+1)
	for _, b := range merged {
		if b.Start.After(cur) {
			out = append(out, scheduling.Interval{Start: cur, End: b.Start})
		}
		if b.End.After(cur) {
			cur = b.End
		}
		if !cur.Before(window.End) {
			break
		}
	}
	if cur.Before(window.End) {
		out = append(out, scheduling.Interval{Start: cur, End: window.End})
	}
	return out
}
