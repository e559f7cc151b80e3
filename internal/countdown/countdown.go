// Package countdown computes the launch countdown the same way the landing page displays it.
package countdown

import (
	"strconv"
	"strings"
	"time"

	"github.com/hako/durafmt"
)

const (
	FieldDays    = "days"
	FieldHours   = "hours"
	FieldMinutes = "minutes"
	FieldSeconds = "seconds"

	millisecondsPerSecond int64 = 1000
	millisecondsPerMinute       = 60 * millisecondsPerSecond
	millisecondsPerHour         = 60 * millisecondsPerMinute
	millisecondsPerDay          = 24 * millisecondsPerHour

	displayWidth       = 2
	humanizedUnitLimit = 2

	humanizedUpcomingPrefix = "Launching in "
	humanizedPassedPrefix   = "Launched "
	humanizedPassedSuffix   = " ago"
	humanizedNow            = "Launching now"
)

// Remaining is the split of target minus now. Values are not clamped once the target passes.
type Remaining struct {
	Distance time.Duration
	Days     int64
	Hours    int64
	Minutes  int64
	Seconds  int64
}

// Display holds the zero-padded strings for the four countdown fields.
type Display struct {
	Days    string
	Hours   string
	Minutes string
	Seconds string
}

// Compute splits target-now into days, hours, minutes and seconds using floored division of
// the truncated remainders, so a passed target yields negative components.
func Compute(target time.Time, now time.Time) Remaining {
	distance := target.UnixMilli() - now.UnixMilli()
	return Remaining{
		Distance: time.Duration(distance) * time.Millisecond,
		Days:     floorDivide(distance, millisecondsPerDay),
		Hours:    floorDivide(distance%millisecondsPerDay, millisecondsPerHour),
		Minutes:  floorDivide(distance%millisecondsPerHour, millisecondsPerMinute),
		Seconds:  floorDivide(distance%millisecondsPerMinute, millisecondsPerSecond),
	}
}

// Passed reports whether the target is in the past.
func (remaining Remaining) Passed() bool {
	return remaining.Distance < 0
}

// Display pads every component with leading zeros to two characters.
func (remaining Remaining) Display() Display {
	return Display{
		Days:    padValue(remaining.Days),
		Hours:   padValue(remaining.Hours),
		Minutes: padValue(remaining.Minutes),
		Seconds: padValue(remaining.Seconds),
	}
}

// Fields maps the surface field identifiers to their display values.
func (remaining Remaining) Fields() map[string]string {
	display := remaining.Display()
	return map[string]string{
		FieldDays:    display.Days,
		FieldHours:   display.Hours,
		FieldMinutes: display.Minutes,
		FieldSeconds: display.Seconds,
	}
}

// Humanize renders the two most significant units, e.g. "Launching in 3 days 4 hours".
func (remaining Remaining) Humanize() string {
	distance := remaining.Distance.Truncate(time.Second)
	switch {
	case distance == 0:
		return humanizedNow
	case distance > 0:
		return humanizedUpcomingPrefix + durafmt.Parse(distance).LimitFirstN(humanizedUnitLimit).String()
	default:
		return humanizedPassedPrefix + durafmt.Parse(-distance).LimitFirstN(humanizedUnitLimit).String() + humanizedPassedSuffix
	}
}

func floorDivide(dividend int64, divisor int64) int64 {
	quotient := dividend / divisor
	if dividend%divisor != 0 && (dividend < 0) != (divisor < 0) {
		quotient--
	}
	return quotient
}

func padValue(value int64) string {
	formatted := strconv.FormatInt(value, 10)
	if len(formatted) >= displayWidth {
		return formatted
	}
	return strings.Repeat("0", displayWidth-len(formatted)) + formatted
}
