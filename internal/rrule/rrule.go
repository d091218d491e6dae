package rrule

import (
	"fmt"
	"strings"
	"time"

	"github.com/hray3182/diditakeit/internal/models"
	"github.com/teambition/rrule-go"
)

// weekdays is indexed like models.Task.ActiveDays (0 = Sunday).
var weekdays = [7]rrule.Weekday{rrule.SU, rrule.MO, rrule.TU, rrule.WE, rrule.TH, rrule.FR, rrule.SA}

var weekdayCodes = [7]string{"SU", "MO", "TU", "WE", "TH", "FR", "SA"}

// ParseRRule parses an RFC 5545 RRULE string anchored at dtstart.
func ParseRRule(ruleStr string, dtstart time.Time) (*rrule.RRule, error) {
	ruleStr = strings.TrimPrefix(ruleStr, "RRULE:")

	opt, err := rrule.StrToROption(ruleStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE: %w", err)
	}
	opt.Dtstart = dtstart
	return rrule.NewRRule(*opt)
}

// ForTask renders the task's schedule as an RRULE: daily when it is active
// on every day, weekly on its active days otherwise.
func ForTask(task *models.Task) string {
	days := models.NormalizeDays(task.ActiveDays)
	due := task.DueTime
	timeParts := fmt.Sprintf("BYHOUR=%d;BYMINUTE=%d;BYSECOND=%d", due.Hour(), due.Minute(), due.Second())

	if len(days) == 7 {
		return "FREQ=DAILY;" + timeParts
	}
	codes := make([]string, len(days))
	for i, d := range days {
		codes[i] = weekdayCodes[d]
	}
	return "FREQ=WEEKLY;BYDAY=" + strings.Join(codes, ",") + ";" + timeParts
}

// Rule builds the recurrence of a task starting on the day of from, at the
// task's time of day in from's location.
func Rule(task *models.Task, from time.Time) (*rrule.RRule, error) {
	loc := from.Location()
	due := task.DueTime.In(loc)
	dtstart := time.Date(from.Year(), from.Month(), from.Day(), due.Hour(), due.Minute(), due.Second(), 0, loc)

	days := models.NormalizeDays(task.ActiveDays)
	opt := rrule.ROption{
		Freq:     rrule.DAILY,
		Dtstart:  dtstart,
		Byhour:   []int{due.Hour()},
		Byminute: []int{due.Minute()},
		Bysecond: []int{due.Second()},
	}
	if len(days) < 7 {
		opt.Freq = rrule.WEEKLY
		for _, d := range days {
			opt.Byweekday = append(opt.Byweekday, weekdays[d])
		}
	}
	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build rule: %w", err)
	}
	return r, nil
}

// Upcoming returns the next count occurrences of the task at or after from.
func Upcoming(task *models.Task, from time.Time, count int) ([]time.Time, error) {
	if count <= 0 {
		return nil, nil
	}
	r, err := Rule(task, from)
	if err != nil {
		return nil, err
	}

	iterator := r.Iterator()
	var results []time.Time
	for len(results) < count {
		next, ok := iterator()
		if !ok {
			break
		}
		if !next.Before(from) {
			results = append(results, next)
		}
	}
	return results, nil
}

// Describe renders an active-day set, naming single days through label,
// usually models.Settings.DayLabel.
func Describe(days []int, label func(day int) string) string {
	days = models.NormalizeDays(days)
	switch strings.Trim(fmt.Sprint(days), "[]") {
	case "0 1 2 3 4 5 6":
		return "Every day"
	case "1 2 3 4 5":
		return "Weekdays"
	case "0 6":
		return "Weekends"
	}
	names := make([]string, len(days))
	for i, d := range days {
		names[i] = label(d)
	}
	return strings.Join(names, ", ")
}
