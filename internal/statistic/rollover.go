package statistic

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

const (
	defaultResetAt       = "00:00"
	defaultResetTimezone = "America/Los_Angeles"
)

// resetSchedule fires once a day at a wall-clock time in loc, so the
// rollover follows the provider's quota day across DST changes.
type resetSchedule struct {
	hour   int
	minute int
	loc    *time.Location
}

func newResetSchedule(at, zone string) (resetSchedule, error) {
	if at == "" {
		at = defaultResetAt
	}
	if zone == "" {
		zone = defaultResetTimezone
	}
	clock, err := time.Parse("15:04", at)
	if err != nil {
		return resetSchedule{}, fmt.Errorf("quota reset time %q: %w", at, err)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return resetSchedule{}, fmt.Errorf("quota reset timezone %q: %w", zone, err)
	}
	return resetSchedule{hour: clock.Hour(), minute: clock.Minute(), loc: loc}, nil
}

// Next implements gron.Schedule.
func (r resetSchedule) Next(t time.Time) time.Time {
	local := t.In(r.loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), r.hour, r.minute, 0, 0, r.loc)
	if !next.After(local) {
		next = time.Date(local.Year(), local.Month(), local.Day()+1, r.hour, r.minute, 0, 0, r.loc)
	}
	return next
}

func (r resetSchedule) String() string {
	return fmt.Sprintf("%02d:%02d %s", r.hour, r.minute, r.loc)
}
