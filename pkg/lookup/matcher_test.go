package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnavshah/storeplan-api/pkg/models"
)

func row(kv ...string) models.Row {
	r := models.NewRow()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], models.ParseValue(kv[i+1]))
	}
	return r
}

func TestMatchCaseInsensitiveContainment(t *testing.T) {
	catalogue := []models.Row{row("Description", "Shampoo 200ml", "SKU", "S1")}
	reference := []models.Row{row("Description", "shampoo", "SOH store name", "Mall A")}

	got := Match(catalogue, reference)
	require.Len(t, got, 1)
	assert.Equal(t, StatusMatched, got[0].Text(StatusColumn))
	assert.Equal(t, "S1", got[0].Text("SKU"))
	assert.Equal(t, "shampoo", got[0].Text("Description"), "reference fields win on collision")
	assert.Equal(t, "Mall A", got[0].Text(StoreNameColumn))
	assert.Equal(t, []string{"Description", "SKU", "SOH store name", StatusColumn, StoreNameColumn}, got[0].Keys())
}

func TestMatchReverseContainment(t *testing.T) {
	catalogue := []models.Row{row("description", "SOAP")}
	reference := []models.Row{row("Description", "Herbal soap bar 100g")}

	got := Match(catalogue, reference)
	require.Len(t, got, 1)
	assert.Equal(t, StatusMatched, got[0].Text(StatusColumn))
}

func TestMatchMultiple(t *testing.T) {
	catalogue := []models.Row{
		row("Description", "Shampoo 200ml"),
		row("Description", "Conditioner"),
		row("Description", "Shampoo 400ml"),
	}
	got := Match(catalogue, []models.Row{row("Description", "SHAMPOO")})
	assert.Len(t, got, 2)
}

func TestMatchNoMatchKeepsReferenceFields(t *testing.T) {
	catalogue := []models.Row{row("Description", "Shampoo 200ml")}
	reference := []models.Row{row("Description", "XYZ123", "Qty", "5", "Store_Name", "Mall B")}

	got := Match(catalogue, reference)
	require.Len(t, got, 1)
	assert.Equal(t, StatusNoMatch, got[0].Text(StatusColumn))
	assert.Equal(t, "XYZ123", got[0].Text("Description"))
	assert.Equal(t, "5", got[0].Text("Qty"))
	assert.Equal(t, "Mall B", got[0].Text(StoreNameColumn))
}

func TestMatchSkipsReferenceWithoutDescription(t *testing.T) {
	got := Match([]models.Row{row("Description", "x")}, []models.Row{row("Qty", "1")})
	assert.Empty(t, got)
}

func TestMatchCatalogueWithoutDescriptionMatchesEverything(t *testing.T) {
	catalogue := []models.Row{row("SKU", "blank")}
	got := Match(catalogue, []models.Row{row("Description", "anything")})
	require.Len(t, got, 1)
	assert.Equal(t, StatusMatched, got[0].Text(StatusColumn))
}

func TestStats(t *testing.T) {
	got := Match(
		[]models.Row{row("Description", "Shampoo")},
		[]models.Row{row("Description", "shampoo"), row("Description", "XYZ")},
	)
	matched, unmatched := Stats(got)
	assert.Equal(t, 1, matched)
	assert.Equal(t, 1, unmatched)
}
