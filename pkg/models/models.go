package models

import "time"

// MaxStoresPerRoute is the number of "Store N" columns a route sheet carries
const MaxStoresPerRoute = 6

// Route is a named itinerary of stores visited together on one working day
type Route struct {
	Name   string   `json:"name"`
	Stores []string `json:"stores"`
}

// CounterStore is a single retail counter visited by a floater
type CounterStore struct {
	Code string `json:"counter_code"`
	Name string `json:"store_name"`
}

// ScheduleEntry is one calendar day of a generated plan.
// Exactly one of Route, Counter or WeekOff describes the assignment.
type ScheduleEntry struct {
	Date    time.Time     `json:"date"`
	DayName string        `json:"day"`
	Route   *Route        `json:"route,omitempty"`
	Counter *CounterStore `json:"counter,omitempty"`
	WeekOff bool          `json:"week_off"`
	Remarks string        `json:"remarks"`
}

// FloaterSchedules holds the two independent floater tracks for a month
type FloaterSchedules struct {
	Floater1 []ScheduleEntry `json:"floater1"`
	Floater2 []ScheduleEntry `json:"floater2"`
}
