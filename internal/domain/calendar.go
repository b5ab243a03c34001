package domain

import (
	"image/color"
	"time"
)

// CalendarEvent is a dated policy milestone drawn as a marker on time charts.
type CalendarEvent struct {
	Date  time.Time
	Label string
	Color color.RGBA
}

var (
	orange = color.RGBA{R: 255, G: 165, A: 255}
	red    = color.RGBA{R: 255, A: 255}
	blue   = color.RGBA{B: 255, A: 255}
	green  = color.RGBA{G: 128, A: 255}
)

// DefaultCalendarEvents returns the 2020 lockdown and de-escalation milestones.
func DefaultCalendarEvents() []CalendarEvent {
	day := func(m time.Month, d int) time.Time { return time.Date(2020, m, d, 0, 0, 0, 0, time.UTC) }
	return []CalendarEvent{
		{Date: day(time.March, 14), Label: "Soft Confinement", Color: orange},
		{Date: day(time.March, 30), Label: "Hard Confinement", Color: red},
		{Date: day(time.April, 13), Label: "Soft Confinement", Color: orange},
		{Date: day(time.April, 26), Label: "Child walk", Color: blue},
		{Date: day(time.May, 2), Label: "Walk and sport", Color: green},
		{Date: day(time.May, 10), Label: "Phase 1", Color: green},
	}
}
