package schedule

import (
	"time"

	"tidbyt.dev/transit/model"
)

// Calendar answers "is this service_id active on this date" queries
// across every mode's Store, satisfying router.CalendarView by duck
// typing (ActiveOn(serviceID, date string) bool). service_id is
// assumed unique across the whole dataset; a collision between two
// modes' feeds is resolved last-store-wins, same policy as
// aggregator.Aggregator uses for stop_id collisions.
type Calendar struct {
	weekly     map[string]model.Calendar
	exceptions map[string][]model.CalendarException
}

// NewCalendar builds a Calendar from every Store's calendar rows.
func NewCalendar(stores []*Store) *Calendar {
	c := &Calendar{
		weekly:     map[string]model.Calendar{},
		exceptions: map[string][]model.CalendarException{},
	}
	for _, s := range stores {
		for _, cal := range s.Calendars() {
			c.weekly[cal.ServiceID] = cal
		}
		for _, ex := range s.CalendarExceptions() {
			c.exceptions[ex.ServiceID] = append(c.exceptions[ex.ServiceID], ex)
		}
	}
	return c
}

// ActiveOn reports whether serviceID runs on date (YYYYMMDD),
// combining the weekday/date-range rule from calendar.txt with
// calendar_dates.txt overrides (added/removed taking precedence over
// the weekly rule).
func (c *Calendar) ActiveOn(serviceID string, date string) bool {
	for _, ex := range c.exceptions[serviceID] {
		if ex.Date == date {
			return ex.Kind == model.ExceptionAdded
		}
	}

	cal, ok := c.weekly[serviceID]
	if !ok {
		return false
	}
	if date < cal.StartDate || date > cal.EndDate {
		return false
	}

	t, err := time.ParseInLocation("20060102", date, time.UTC)
	if err != nil {
		return false
	}
	// Matches parse.weekdayBit's 1 << time.Weekday encoding (Sunday = 0).
	bit := int8(1 << uint(t.Weekday()))
	return cal.Weekday&bit != 0
}
