package scheduler

import (
	"time"

	"github.com/arnavshah/storeplan-api/pkg/models"
)

// WeeklyOff is the remark on a floater's weekly off day
const WeeklyOff = "Weekly Off"

// NoCounter is assigned when every counter is already taken on a date
var NoCounter = models.CounterStore{Code: "NO_COUNTER", Name: "NO STORE AVAILABLE"}

// FloaterOffDays are the weekdays a floater's weekly off may fall on
var FloaterOffDays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}

// GenerateFloaters builds both floater tracks for a month. Each floater gets
// its own randomly drawn weekly off day, and on any date the two floaters
// never share a counter.
func GenerateFloaters(stores []models.CounterStore, year int, month time.Month, p Picker) models.FloaterSchedules {
	off1 := FloaterOffDays[p.Intn(len(FloaterOffDays))]
	off2 := FloaterOffDays[p.Intn(len(FloaterOffDays))]

	days := monthDays(year, month)
	out := models.FloaterSchedules{
		Floater1: make([]models.ScheduleEntry, 0, len(days)),
		Floater2: make([]models.ScheduleEntry, 0, len(days)),
	}

	for _, date := range days {
		taken := make(map[string]struct{}, 2)
		out.Floater1 = append(out.Floater1, floaterDay(date, off1, stores, taken, p))
		out.Floater2 = append(out.Floater2, floaterDay(date, off2, stores, taken, p))
	}
	return out
}

func floaterDay(date time.Time, off time.Weekday, stores []models.CounterStore, taken map[string]struct{}, p Picker) models.ScheduleEntry {
	entry := models.ScheduleEntry{
		Date:    date,
		DayName: date.Weekday().String(),
	}
	if date.Weekday() == off {
		entry.WeekOff = true
		entry.Remarks = WeeklyOff
		return entry
	}

	counter := pickCounter(stores, taken, p)
	taken[counter.Code] = struct{}{}
	entry.Counter = &counter
	entry.Remarks = StoreVisit
	return entry
}

func pickCounter(stores []models.CounterStore, taken map[string]struct{}, p Picker) models.CounterStore {
	available := make([]models.CounterStore, 0, len(stores))
	for _, s := range stores {
		if _, ok := taken[s.Code]; !ok {
			available = append(available, s)
		}
	}
	if len(available) == 0 {
		return NoCounter
	}
	return available[p.Intn(len(available))]
}

// FloaterRows renders one floater track as sheet rows
func FloaterRows(entries []models.ScheduleEntry) []models.Row {
	rows := make([]models.Row, 0, len(entries))
	for _, e := range entries {
		r := models.NewRow()
		r.SetText("Date", e.Date.Format(FloaterDateLayout))
		r.SetText("Day", e.DayName)
		switch {
		case e.WeekOff:
			r.SetText("Counter_Code", WeekOff)
			r.SetText("Store_Name", WeekOff)
		case e.Counter != nil:
			r.SetText("Counter_Code", e.Counter.Code)
			r.SetText("Store_Name", e.Counter.Name)
		default:
			r.SetText("Counter_Code", NoCounter.Code)
			r.SetText("Store_Name", NoCounter.Name)
		}
		r.SetText("Remarks", e.Remarks)
		rows = append(rows, r)
	}
	return rows
}
