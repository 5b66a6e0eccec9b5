package workbook

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/arnavshah/storeplan-api/pkg/models"
)

func TestHeadersUnionOrder(t *testing.T) {
	a := models.NewRow()
	a.SetText("Date", "x")
	a.SetText("Remarks", "Week Off")
	b := models.NewRow()
	b.SetText("Date", "y")
	b.SetText("Route", "R1")
	b.SetText("Remarks", "Store Visit")

	assert.Equal(t, []string{"Date", "Remarks", "Route"}, Headers([]models.Row{a, b}))
}

func TestWriteRoundTrip(t *testing.T) {
	r1 := models.NewRow()
	r1.SetText("Name", "North")
	r1.Set("Qty", models.NumberValue(12.5))
	r2 := models.NewRow()
	r2.SetText("Name", "South")
	r2.Set("Note", models.Value{})

	other := models.NewRow()
	other.SetText("Code", "C1")

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Sheet{Name: "Floater 1", Rows: []models.Row{r1, r2}}, Sheet{Name: "Floater 2", Rows: []models.Row{other}}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{"Floater 1", "Floater 2"}, f.GetSheetList())

	rows, err := f.GetRows("Floater 1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Name", "Qty", "Note"}, rows[0])
	assert.Equal(t, "North", rows[1][0])
	assert.Equal(t, "12.5", rows[1][1])
	assert.Equal(t, "South", rows[2][0])
}

func TestBuildRequiresSheets(t *testing.T) {
	_, err := Build()
	assert.Error(t, err)
}

func TestBuildEmptySheet(t *testing.T) {
	f, err := Build(Sheet{Name: "Lookup Results"})
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	assert.Equal(t, []string{"Lookup Results"}, f.GetSheetList())
}
