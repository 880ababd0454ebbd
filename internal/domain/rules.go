package domain

import "time"

// Overlaps reports whether [aStart, aEnd) and [bStart, bEnd) intersect.
// Ranges that only touch do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ChangeAllowed reports whether a lesson starting at start may still be
// rescheduled or cancelled at now. The comparison is done in whole
// milliseconds: exactly 24h ahead is allowed, 24h-1ms is not.
func ChangeAllowed(start, now time.Time) bool {
	return start.Sub(now).Milliseconds() >= ChangeLockWindow.Milliseconds()
}
