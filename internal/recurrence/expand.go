// Package recurrence holds the pure occurrence math for reminder schedules.
// All arithmetic is calendar-day based (AddDate), so wall-clock time is
// preserved across DST and month/year boundaries, and all window checks are
// explicit half-open comparisons.
package recurrence

import (
	"time"

	"github.com/planit/planit/pkg/entity"
)

// StepDays returns the schedule period in calendar days, 0 for ONCE.
func StepDays(rep entity.Repetition) int {
	switch rep {
	case entity.RepetitionDaily:
		return 1
	case entity.RepetitionWeekly:
		return 7
	default:
		return 0
	}
}

// Expand returns every occurrence instant of the schedule (anchor, rep)
// inside the half-open window [start, end), in strictly increasing order.
// An instant equal to start is included, equal to end is excluded.
func Expand(anchor time.Time, rep entity.Repetition, start, end time.Time) []time.Time {
	if !end.After(start) {
		return nil
	}
	if rep == entity.RepetitionOnce {
		if !anchor.Before(start) && anchor.Before(end) {
			return []time.Time{anchor}
		}
		return nil
	}
	days := StepDays(rep)
	cur := firstOnOrAfter(anchor, days, start)
	var out []time.Time
	for cur.Before(end) {
		out = append(out, cur)
		cur = cur.AddDate(0, 0, days)
	}
	return out
}

// NextOnOrAfter returns the first occurrence instant t with t >= ref.
// For ONCE schedules whose anchor already passed ref it reports false.
func NextOnOrAfter(anchor time.Time, rep entity.Repetition, ref time.Time) (time.Time, bool) {
	if rep == entity.RepetitionOnce {
		if anchor.Before(ref) {
			return time.Time{}, false
		}
		return anchor, true
	}
	return firstOnOrAfter(anchor, StepDays(rep), ref), true
}

// NextAfter returns the first occurrence instant strictly after ref. It is
// the re-arm rule: always recomputed from the anchor, so a missed or delayed
// fire cannot drift the schedule.
func NextAfter(anchor time.Time, rep entity.Repetition, ref time.Time) (time.Time, bool) {
	next, ok := NextOnOrAfter(anchor, rep, ref)
	if !ok {
		return time.Time{}, false
	}
	if !next.After(ref) {
		if rep == entity.RepetitionOnce {
			return time.Time{}, false
		}
		next = next.AddDate(0, 0, StepDays(rep))
	}
	return next, true
}

// firstOnOrAfter finds the earliest anchor + k*days (k >= 0) not before ref.
// A duration-based estimate of k lands near the target, then short AddDate
// walks correct for DST making real days shorter or longer than 24h.
func firstOnOrAfter(anchor time.Time, days int, ref time.Time) time.Time {
	if !anchor.Before(ref) {
		return anchor
	}
	period := time.Duration(days) * 24 * time.Hour
	k := int(ref.Sub(anchor) / period)
	cur := anchor.AddDate(0, 0, k*days)
	for cur.Before(ref) {
		cur = cur.AddDate(0, 0, days)
	}
	for {
		prev := cur.AddDate(0, 0, -days)
		if prev.Before(ref) || prev.Before(anchor) {
			break
		}
		cur = prev
	}
	return cur
}
