package scheduler

import (
	"fmt"
	"time"

	"github.com/arnavshah/storeplan-api/pkg/models"
)

const (
	// WeekOff marks a non-working day in remarks and store slots
	WeekOff = "Week Off"
	// StoreVisit is the remark for an assigned working day
	StoreVisit = "Store Visit"
)

// PJPOffDay is the fixed non-working weekday of the monthly plan
const PJPOffDay = time.Sunday

// GeneratePJP builds the monthly route plan: one entry per calendar day.
// Sundays are week offs and do not advance the rotation.
func GeneratePJP(routes []models.Route, year int, month time.Month, p Picker) []models.ScheduleEntry {
	days := monthDays(year, month)
	entries := make([]models.ScheduleEntry, 0, len(days))
	rot := NewRotation(len(routes), p)

	for _, date := range days {
		entry := models.ScheduleEntry{
			Date:    date,
			DayName: date.Weekday().String(),
		}
		if date.Weekday() == PJPOffDay {
			entry.WeekOff = true
			entry.Remarks = WeekOff
			entries = append(entries, entry)
			continue
		}

		entry.Remarks = StoreVisit
		if len(routes) > 0 {
			entry.Route = &routes[rot.Next()]
		}
		entries = append(entries, entry)
	}
	return entries
}

// StoreColumn returns the header of the i-th (1-based) store slot
func StoreColumn(i int) string {
	return fmt.Sprintf("Store %d", i)
}

// PJPRows renders plan entries as sheet rows
func PJPRows(entries []models.ScheduleEntry) []models.Row {
	rows := make([]models.Row, 0, len(entries))
	for _, e := range entries {
		r := models.NewRow()
		r.SetText("Date", e.Date.Format(PJPDateLayout))
		r.SetText("Day", e.DayName)

		if e.WeekOff {
			r.SetText("Remarks", WeekOff)
			for i := 1; i <= models.MaxStoresPerRoute; i++ {
				r.SetText(StoreColumn(i), WeekOff)
			}
			rows = append(rows, r)
			continue
		}

		var stores []string
		name := ""
		if e.Route != nil {
			name = e.Route.Name
			stores = e.Route.Stores
		}
		r.SetText("Route", name)
		r.SetText("Remarks", e.Remarks)
		for i := 1; i <= models.MaxStoresPerRoute; i++ {
			store := ""
			if i <= len(stores) {
				store = stores[i-1]
			}
			r.SetText(StoreColumn(i), store)
		}
		rows = append(rows, r)
	}
	return rows
}
