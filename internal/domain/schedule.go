package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type Frequency string

const (
	FrequencyHourly Frequency = "hourly"
	FrequencyDaily  Frequency = "daily"
	FrequencyWeekly Frequency = "weekly"
	FrequencyCustom Frequency = "custom"
)

// ScheduleDescriptor is a pure value describing when a campaign fires.
// For weekly/custom frequencies Days is the allowed day-of-week set;
// TimeOfDay is "HH:MM" in the engine's local time; HourlyInterval is
// only meaningful for hourly frequency.
type ScheduleDescriptor struct {
	Frequency      Frequency
	Days           []time.Weekday
	TimeOfDay      string
	HourlyInterval int
}

// CronExpr translates the descriptor into a cron expression understood
// by cron.ParseStandard.
func (d ScheduleDescriptor) CronExpr() (string, error) {
	switch d.Frequency {
	case FrequencyHourly:
		interval := d.HourlyInterval
		if interval <= 0 {
			interval = 1
		}
		return fmt.Sprintf("@every %dh", interval), nil

	case FrequencyDaily:
		hour, minute, err := parseTimeOfDay(d.TimeOfDay)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%d %d * * *", minute, hour), nil

	case FrequencyWeekly, FrequencyCustom:
		hour, minute, err := parseTimeOfDay(d.TimeOfDay)
		if err != nil {
			return "", err
		}
		if len(d.Days) == 0 {
			return "", fmt.Errorf("%w: %s schedule needs at least one day", ErrInvalidSchedule, d.Frequency)
		}
		days := make([]int, 0, len(d.Days))
		for _, day := range d.Days {
			days = append(days, int(day))
		}
		sort.Ints(days)
		parts := make([]string, len(days))
		for i, day := range days {
			parts[i] = fmt.Sprintf("%d", day)
	}
		return fmt.Sprintf("%d %d * * %s", minute, hour, strings.Join(parts, ",")), nil

	default:
		return "", fmt.Errorf("%w: unknown frequency %q", ErrInvalidSchedule, d.Frequency)
	}
}

// NextRun computes the next trigger instant strictly after now. For
// weekly/custom schedules this lands on the earliest configured day
// >= now, wrapping to next week when none remain.
func (d ScheduleDescriptor) NextRun(now time.Time) (time.Time, error) {
	expr, err := d.CronExpr()
	if err != nil {
		return time.Time{}, err
	}
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", ErrInvalidSchedule, err)
	}
	return sched.Next(now), nil
}

func parseTimeOfDay(s string) (hour, minute int, err error) {
	if _, perr := fmt.Sscanf(s, "%d:%d", &hour, &minute); perr != nil {
		return 0, 0, fmt.Errorf("%w: bad time of day %q", ErrInvalidSchedule, s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("%w: time of day %q out of range", ErrInvalidSchedule, s)
	}
	return hour, minute, nil
}
