package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/storeplan-api/pkg/database"
	"github.com/arnavshah/storeplan-api/pkg/tools"
	"github.com/arnavshah/storeplan-api/pkg/workbook"
)

// Concat merges the uploaded "files"
func (h *Handler) Concat(c *gin.Context) {
	var files []tools.Source
	if form, err := c.MultipartForm(); err == nil {
		for _, fh := range form.File["files"] {
			files = append(files, tools.UploadSource(fh))
		}
	}
	art, err := h.Tools.Concatenate(c.Request.Context(), files)
	h.respond(c, art, err)
}

// PJP builds a monthly route plan from "file" and "month"
func (h *Handler) PJP(c *gin.Context) {
	fh, _ := c.FormFile("file")
	art, err := h.Tools.GeneratePJP(c.Request.Context(), tools.UploadSource(fh), c.PostForm("month"))
	h.respond(c, art, err)
}

// Floater builds both floater schedules from "file" and "month"
func (h *Handler) Floater(c *gin.Context) {
	fh, _ := c.FormFile("file")
	art, err := h.Tools.GenerateFloaters(c.Request.Context(), tools.UploadSource(fh), c.PostForm("month"))
	h.respond(c, art, err)
}

// Lookup matches "soh" against "catalogue"
func (h *Handler) Lookup(c *gin.Context) {
	catalogue, _ := c.FormFile("catalogue")
	soh, _ := c.FormFile("soh")
	art, err := h.Tools.Lookup(c.Request.Context(), tools.UploadSource(catalogue), tools.UploadSource(soh))
	h.respond(c, art, err)
}

// respond streams the workbook, or a JSON preview with ?format=json
func (h *Handler) respond(c *gin.Context, art *tools.Artifact, err error) {
	if err != nil {
		c.JSON(statusFor(err), gin.H{"status": "error", "message": err.Error()})
		return
	}
	h.recordUsage(c, art)
	c.Header("X-Run-ID", art.RunID)

	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, art)
		return
	}

	var buf bytes.Buffer
	if err := art.Write(&buf); err != nil {
		h.Log.Errorf("%s run %s: writing workbook: %v", art.Tool, art.RunID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Could not build workbook"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, art.FileName))
	c.Data(http.StatusOK, workbook.ContentType, buf.Bytes())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, tools.ErrMissingInput):
		return http.StatusBadRequest
	case errors.Is(err, tools.ErrParseFailure):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// recordUsage counts the run against the caller's key, if any
func (h *Handler) recordUsage(c *gin.Context, art *tools.Artifact) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	err := database.RecordUsage(h.DB, apiKey.ID, string(art.Tool), time.Now(), art.Stats.Files, art.Stats.RowsOut)
	if err != nil {
		h.Log.Warnf("recording usage for key %d: %v", apiKey.ID, err)
	}
}
