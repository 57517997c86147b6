// Package civil computes the canonical "today" every counter and rollover
// decision is keyed on. All sessions share one fixed timezone so they agree on
// the current day regardless of the viewer's local clock.
package civil

import (
	"fmt"
	"time"

	"github.com/coder/quartz"
)

const dayLayout = "2006-01-02"

// Day is a calendar date in YYYY-MM-DD form.
type Day string

func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return "", fmt.Errorf("invalid day %q: %w", s, err)
	}
	return Day(t.Format(dayLayout)), nil
}

// Time returns midnight UTC of the day, the form date columns are written with.
func (d Day) Time() time.Time {
	t, err := time.Parse(dayLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d Day) String() string { return string(d) }

func (d Day) Before(o Day) bool { return d < o }

// AddDays shifts the day by n calendar days.
func (d Day) AddDays(n int) Day {
	return Day(d.Time().AddDate(0, 0, n).Format(dayLayout))
}

func DayOf(t time.Time) Day {
	return Day(t.Format(dayLayout))
}

// Calendar resolves canonical time in a fixed location.
type Calendar struct {
	loc   *time.Location
	clock quartz.Clock
}

func NewCalendar(tz string, clock quartz.Clock) (*Calendar, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load stats timezone %q: %w", tz, err)
	}
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Calendar{loc: loc, clock: clock}, nil
}

func (c *Calendar) Location() *time.Location { return c.loc }

func (c *Calendar) Clock() quartz.Clock { return c.clock }

// Now is the current instant expressed in the canonical location.
func (c *Calendar) Now() time.Time {
	return c.clock.Now().In(c.loc)
}

func (c *Calendar) Today() Day {
	return DayOf(c.Now())
}

// Slot returns the canonical day and hour-of-day for t.
func (c *Calendar) Slot(t time.Time) (Day, int) {
	local := t.In(c.loc)
	return DayOf(local), local.Hour()
}
