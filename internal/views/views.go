// Package views derives read-only projections from the event collection.
// Every function is pure and recomputed on each call.
package views

import (
	"sort"
	"time"

	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
)

// Day is one cell of the month grid.
type Day struct {
	Date    models.Date            `json:"date"`
	InMonth bool                   `json:"inMonth"`
	IsToday bool                   `json:"isToday"`
	Events  []models.AcademicEvent `json:"events"`
}

// MonthGrid covers whole weeks, Sunday through Saturday, around one month.
type MonthGrid struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
	Days  []Day      `json:"days"`
}

// Weeks splits the grid into rows of seven days.
func (g MonthGrid) Weeks() [][]Day {
	weeks := make([][]Day, 0, len(g.Days)/7)
	for i := 0; i+7 <= len(g.Days); i += 7 {
		weeks = append(weeks, g.Days[i:i+7])
	}
	return weeks
}

// Prev returns the first day of the previous month.
func (g MonthGrid) Prev() time.Time {
	return time.Date(g.Year, g.Month-1, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the first day of the following month.
func (g MonthGrid) Next() time.Time {
	return time.Date(g.Year, g.Month+1, 1, 0, 0, 0, 0, time.UTC)
}

// CalendarGrid buckets events by date over the full weeks spanning anchor's
// month. Events keep their collection order within a day.
func CalendarGrid(events []models.AcademicEvent, anchor, today time.Time) MonthGrid {
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	byDate := make(map[models.Date][]models.AcademicEvent)
	for _, e := range events {
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	todayDate := models.DateOf(today)
	grid := MonthGrid{Year: first.Year(), Month: first.Month()}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := models.DateOf(d)
		dayEvents := byDate[date]
		if dayEvents == nil {
			dayEvents = []models.AcademicEvent{}
		}
		grid.Days = append(grid.Days, Day{
			Date:    date,
			InMonth: d.Month() == first.Month(),
			IsToday: date == todayDate,
			Events:  dayEvents,
		})
	}
	return grid
}

// Upcoming returns the events dated today or later, ascending by date. Ties
// keep collection order.
func Upcoming(events []models.AcademicEvent, today time.Time) []models.AcademicEvent {
	from := models.DateOf(today)
	out := make([]models.AcademicEvent, 0, len(events))
	for _, e := range events {
		if !e.Date.Before(from) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}
