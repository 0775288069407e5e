package entity

import (
	"fmt"
	"time"

	"github.com/xptrack-lab/backend/pkg/enum"
)

// PeriodName is one of the named durations a delta or record can cover.
type PeriodName string

var (
	PeriodFiveMin = enum.New(PeriodName("five_min"), "five_min")
	PeriodDay     = enum.New(PeriodName("day"), "day")
	PeriodWeek    = enum.New(PeriodName("week"), "week")
	PeriodMonth   = enum.New(PeriodName("month"), "month")
	PeriodYear    = enum.New(PeriodName("year"), "year")
)

var periodDurations = map[PeriodName]time.Duration{
	PeriodFiveMin: 5 * time.Minute,
	PeriodDay:     24 * time.Hour,
	PeriodWeek:    7 * 24 * time.Hour,
	PeriodMonth:   31 * 24 * time.Hour,
	PeriodYear:    365 * 24 * time.Hour,
}

// PeriodNames lists the named periods in ascending length order.
var PeriodNames = []PeriodName{
	PeriodFiveMin, PeriodDay, PeriodWeek, PeriodMonth, PeriodYear,
}

// Period is a time window deltas are computed over: either a named duration
// ending now, or a custom [start, end) range.
type Period struct {
	Name  PeriodName
	Start time.Time
	End   time.Time
}

// NewNamedPeriod returns the window of a named period ending at the given
// instant.
func NewNamedPeriod(name PeriodName, now time.Time) (Period, error) {
	duration, ok := periodDurations[name]
	if !ok {
		return Period{}, fmt.Errorf("invalid period name %s", name)
	}

	return Period{Name: name, Start: now.Add(-duration), End: now}, nil
}

// NewCustomPeriod returns a custom [start, end) window. End must be after
// start.
func NewCustomPeriod(start, end time.Time) (Period, error) {
	if !end.After(start) {
		return Period{}, fmt.Errorf("period end %s is not after start %s", end, start)
	}

	return Period{Start: start, End: end}, nil
}

func (p Period) IsNamed() bool {
	return p.Name != ""
}

func (p Period) String() string {
	if p.IsNamed() {
		return string(p.Name)
	}

	return fmt.Sprintf("%d-%d", p.Start.UnixMilli(), p.End.UnixMilli())
}
