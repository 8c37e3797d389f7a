package model

import (
	"math"
	"sort"
	"time"

	"github.com/rcliao/lovejourney/internal/timeline"
)

// SortMemories orders memories newest first. Undated memories go last.
func SortMemories(memories []Memory, loc *time.Location) {
	sort.SliceStable(memories, func(i, j int) bool {
		a, aok := timeline.ParseDate(memories[i].Date, loc)
		b, bok := timeline.ParseDate(memories[j].Date, loc)
		if aok != bok {
			return aok
		}
		return aok && a.After(b)
	})
}

// SortPlans orders plans by target date ascending, or by priority high to
// low when byPriority is set. Plans without a usable date go last.
func SortPlans(plans []Plan, byPriority bool, loc *time.Location) {
	sort.SliceStable(plans, func(i, j int) bool {
		if byPriority {
			return plans[i].Priority.Rank() > plans[j].Priority.Rank()
		}
		a, aok := timeline.ParseDate(plans[i].TargetDate, loc)
		b, bok := timeline.ParseDate(plans[j].TargetDate, loc)
		if aok != bok {
			return aok
		}
		return aok && a.Before(b)
	})
}

// PinnedPlans returns the incomplete pinned plans, soonest first.
func PinnedPlans(plans []Plan, loc *time.Location) []Plan {
	var out []Plan
	for _, p := range plans {
		if p.IsPinned && !p.Completed {
			out = append(out, p)
		}
	}
	SortPlans(out, false, loc)
	return out
}

// DaysUntil counts whole days, rounded up, from now to target. Unparseable
// targets count as 0.
func DaysUntil(target string, now time.Time) int {
	t, ok := timeline.ParseDate(target, now.Location())
	if !ok {
		return 0
	}
	return int(math.Ceil(t.Sub(now).Hours() / 24))
}
