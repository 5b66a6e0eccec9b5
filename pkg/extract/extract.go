package extract

import (
	"fmt"
	"strings"

	"github.com/arnavshah/storeplan-api/pkg/models"
	"github.com/arnavshah/storeplan-api/pkg/scheduler"
)

// Accepted header spellings per logical field, tried in order
var (
	RouteNameAliases    = []string{"Plan", "Route"}
	CounterCodeAliases  = []string{"Counter_Code", "Counter Code", "Code"}
	CounterStoreAliases = []string{"Store_Name", "Store", "Store Name"}
)

// FallbackCounters is the sample list used when a counter sheet has no rows
var FallbackCounters = []models.CounterStore{
	{Code: "CTR001", Name: "HEALTH & GLOW - TOWLICHOWKI, HYD"},
	{Code: "CTR002", Name: "HEALTH & GLOW - ALKAPURI, HYD"},
	{Code: "CTR003", Name: "CENTRO - KUKATPALLY, HYD"},
	{Code: "CTR004", Name: "HEALTH & GLOW - SUJANA FORUM MALL, HYD"},
	{Code: "CTR005", Name: "LIFESTYLE - HYDERABAD"},
}

const codeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// Routes derives routes from "Plan"/"Route" and "Store 1".."Store 6" columns.
// Rows without any store are skipped.
func Routes(rows []models.Row) []models.Route {
	routes := make([]models.Route, 0, len(rows))
	for _, row := range rows {
		stores := make([]string, 0, models.MaxStoresPerRoute)
		for i := 1; i <= models.MaxStoresPerRoute; i++ {
			v, ok := row.Get(scheduler.StoreColumn(i))
			if !ok || v.IsEmpty() {
				continue
			}
			if s := v.String(); s != "" && s != "0" {
				stores = append(stores, s)
			}
		}
		if len(stores) == 0 {
			continue
		}

		name := fmt.Sprintf("Route-%d", len(routes)+1)
		if v, ok := row.First(RouteNameAliases...); ok {
			name = v.String()
		}
		routes = append(routes, models.Route{Name: name, Stores: stores})
	}
	return routes
}

// Counters derives counter stores from rows. Missing codes or names are
// replaced with random placeholders; an empty sheet yields FallbackCounters.
func Counters(rows []models.Row, p scheduler.Picker) []models.CounterStore {
	if len(rows) == 0 {
		out := make([]models.CounterStore, len(FallbackCounters))
		copy(out, FallbackCounters)
		return out
	}

	out := make([]models.CounterStore, 0, len(rows))
	for _, row := range rows {
		c := models.CounterStore{}
		if v, ok := row.First(CounterCodeAliases...); ok {
			c.Code = v.String()
		} else {
			c.Code = "CTR" + RandomCode(p, 3)
		}
		if v, ok := row.First(CounterStoreAliases...); ok {
			c.Name = v.String()
		} else {
			c.Name = "Store " + RandomCode(p, 3)
		}
		out = append(out, c)
	}
	return out
}

// RandomCode returns n random uppercase base-36 characters
func RandomCode(p scheduler.Picker, n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(codeAlphabet[p.Intn(len(codeAlphabet))])
	}
	return b.String()
}
