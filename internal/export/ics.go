// Package export renders the event collection as downloadable documents.
package export

import (
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/CamiloThisPunk/PlanUnsch/internal/models"
)

const (
	ICSContentType = "text/calendar; charset=utf-8"
	ICSFileName    = "PlanUNSCH_export.ics"

	icsProdID = "-//PlanUNSCH//AI Semester Planner//EN"
)

// ICS builds an iCalendar document with one all-day VEVENT per event, in
// collection order.
func ICS(events []models.AcademicEvent, now time.Time) []byte {
	cal := ics.NewCalendar()
	cal.SetProductId(icsProdID)
	cal.SetCalscale("GREGORIAN")

	stamp := now.UTC()
	for _, e := range events {
		ev := cal.AddEvent(e.ID + "@planunsch")
		ev.SetDtStampTime(stamp)
		ev.SetAllDayStartAt(e.Date.Time())
		ev.SetSummary(e.Title + " (" + e.SubjectName + ")")
		ev.SetDescription("Type: " + string(e.Type))
	}
	return []byte(cal.Serialize())
}
