package lookup

import (
	"strings"

	"github.com/arnavshah/storeplan-api/pkg/models"
)

const (
	StatusMatched = "MATCHED"
	StatusNoMatch = "NO_MATCH"

	// StatusColumn and StoreNameColumn are appended to every result row
	StatusColumn    = "Match_Status"
	StoreNameColumn = "SOH_Store_Name"
)

var (
	DescriptionAliases = []string{"Description", "description"}
	StoreNameAliases   = []string{"SOH store name", "Store_Name"}
)

// Match pairs every reference row with the catalogue rows whose description
// contains, or is contained by, the reference description (case-insensitive).
// Each match yields the catalogue row overlaid by the reference row; a
// reference row without matches yields itself tagged NO_MATCH. Reference rows
// without a description are skipped.
func Match(catalogue, reference []models.Row) []models.Row {
	descs := make([]string, len(catalogue))
	for i, c := range catalogue {
		descs[i] = description(c)
	}

	results := make([]models.Row, 0, len(reference))
	for _, ref := range reference {
		needle := description(ref)
		if needle == "" {
			continue
		}
		storeName := storeName(ref)

		matched := false
		for i, hay := range descs {
			if !strings.Contains(hay, needle) && !strings.Contains(needle, hay) {
				continue
			}
			matched = true
			out := catalogue[i].Overlay(ref)
			out.SetText(StatusColumn, StatusMatched)
			out.Set(StoreNameColumn, storeName)
			results = append(results, out)
		}

		if !matched {
			out := ref.Clone()
			out.SetText(StatusColumn, StatusNoMatch)
			out.Set(StoreNameColumn, storeName)
			results = append(results, out)
		}
	}
	return results
}

// Stats counts result rows per status
func Stats(results []models.Row) (matched, unmatched int) {
	for _, r := range results {
		switch r.Text(StatusColumn) {
		case StatusMatched:
			matched++
		case StatusNoMatch:
			unmatched++
		}
	}
	return matched, unmatched
}

func description(r models.Row) string {
	v, ok := r.First(DescriptionAliases...)
	if !ok {
		return ""
	}
	return strings.ToLower(v.String())
}

func storeName(r models.Row) models.Value {
	v, _ := r.First(StoreNameAliases...)
	return v
}
