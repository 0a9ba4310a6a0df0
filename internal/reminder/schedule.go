package reminder

import (
	"time"

	errs "github.com/edgard/taskpilot/internal/errors"
)

// NextFireTime returns today's date at hour:minute, or tomorrow's when that
// instant is not strictly after now.
func NextFireTime(now time.Time, hour, minute int) (time.Time, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return time.Time{}, errs.Newf(errs.CodeSchedulingFailure, "invalid reminder time %02d:%02d", hour, minute)
	}

	y, m, d := now.Date()
	next := time.Date(y, m, d, hour, minute, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(y, m, d+1, hour, minute, 0, 0, now.Location())
	}
	return next, nil
}
