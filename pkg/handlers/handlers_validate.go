package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/storeplan-api/pkg/extract"
	"github.com/arnavshah/storeplan-api/pkg/lookup"
	"github.com/arnavshah/storeplan-api/pkg/tabular"
	"github.com/arnavshah/storeplan-api/pkg/tools"
	"github.com/arnavshah/storeplan-api/pkg/workbook"
)

// ValidateInput reads an uploaded "file" and reports what each tool would
// find in it, without running anything.
func (h *Handler) ValidateInput(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": "file is required"})
		return
	}
	src := tools.UploadSource(fh)

	format := tabular.DetectFormat(src.Name)
	if format == tabular.FormatPDF {
		c.JSON(http.StatusOK, gin.H{
			"valid": false,
			"error": "PDF files are only accepted by the concatenator",
		})
		return
	}

	rc, err := src.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"valid": false, "error": "Failed to open file"})
		return
	}
	defer rc.Close()

	rows, err := tabular.Read(src.Name, rc)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": err.Error()})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusOK, gin.H{"valid": false, "error": "No data rows found"})
		return
	}

	counters, described := 0, 0
	for _, r := range rows {
		if _, ok := r.First(extract.CounterCodeAliases...); ok {
			counters++
		}
		if _, ok := r.First(lookup.DescriptionAliases...); ok {
			described++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"valid": true,
		"stats": gin.H{
			"format":           format,
			"row_count":        len(rows),
			"headers":          workbook.Headers(rows),
			"route_count":      len(extract.Routes(rows)),
			"counter_rows":     counters,
			"description_rows": described,
		},
	})
}
