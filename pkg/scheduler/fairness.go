package scheduler

import (
	"gonum.org/v1/gonum/stat"

	"github.com/arnavshah/storeplan-api/pkg/models"
)

// FairnessScore returns a percentage (0-100) describing how evenly working
// days were spread over the routes. 100 means every route got the same
// number of visits.
func FairnessScore(routes []models.Route, entries []models.ScheduleEntry) float64 {
	if len(routes) == 0 {
		return 100.0
	}

	index := make(map[*models.Route]int, len(routes))
	for i := range routes {
		index[&routes[i]] = i
	}
	visits := make([]float64, len(routes))
	var total float64
	for _, e := range entries {
		if e.Route == nil {
			continue
		}
		if i, ok := index[e.Route]; ok {
			visits[i]++
			total++
		}
	}
	if total == 0 {
		return 100.0
	}

	mean, stdDev := stat.PopMeanStdDev(visits, nil)
	score := (1.0 - stdDev/mean) * 100.0
	if score < 0 {
		return 0.0
	}
	return score
}
