package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arnavshah/storeplan-api/pkg/database"
)

const usageHistoryDays = 30

type usageTotals struct {
	Requests int64 `json:"requests"`
	Files    int64 `json:"files"`
	Rows     int64 `json:"rows"`
}

func totals(usage []database.ToolUsage) usageTotals {
	var t usageTotals
	for _, u := range usage {
		t.Requests += int64(u.RequestCount)
		t.Files += int64(u.TotalFiles)
		t.Rows += int64(u.TotalRows)
	}
	return t
}

// GetMyUsage returns usage stats for the authenticated API key
func (h *Handler) GetMyUsage(c *gin.Context) {
	apiKeyRaw, exists := c.Get("apiKey")
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "API Key context missing"})
		return
	}
	apiKey := apiKeyRaw.(*database.APIKey)

	usage, err := database.RecentUsage(h.DB, apiKey.ID, usageHistoryDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"key_name":      apiKey.Name,
		"rate_limit":    apiKey.RateLimit,
		"usage_history": usage,
		"totals":        totals(usage),
	})
}

// GetUsage returns usage stats for any key
func (h *Handler) GetUsage(c *gin.Context) {
	var apiKey database.APIKey
	if err := h.DB.First(&apiKey, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}

	usage, err := database.RecentUsage(h.DB, apiKey.ID, usageHistoryDays)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch usage details"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"usage": usage, "totals": totals(usage)})
}
