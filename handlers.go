package main

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mifty-dev/seo-audit/audit"
	"github.com/mifty-dev/seo-audit/logging"
	"github.com/mifty-dev/seo-audit/service"
	"github.com/mifty-dev/seo-audit/stats"
)

type handlers struct {
	service      *service.Service
	storage      *stats.Storage
	requestStats *logging.Statistics
	maxBatchSize int
}

func newHandlers(svc *service.Service, storage *stats.Storage, requestStats *logging.Statistics, maxBatchSize int) *handlers {
	return &handlers{
		service:      svc,
		storage:      storage,
		requestStats: requestStats,
		maxBatchSize: maxBatchSize,
	}
}

// auditPage runs the full audit over one page's metadata.
func (h *handlers) auditPage(c *gin.Context) {
	var page audit.PageMetadata
	if err := c.ShouldBindJSON(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid page metadata: a non-empty title is required",
		})
		return
	}

	// Stash the title for the statistics middleware.
	c.Set("pageTitle", page.Title)

	report := h.service.Audit(page)
	c.JSON(http.StatusOK, report)
}

type batchRequest struct {
	Pages []audit.PageMetadata `json:"pages" binding:"required"`
}

// auditBatch audits a set of pages in one request.
func (h *handlers) auditBatch(c *gin.Context) {
	var request batchRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request: a non-empty pages array is required",
		})
		return
	}

	if len(request.Pages) > h.maxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("Too many pages in one batch (maximum %d)", h.maxBatchSize),
		})
		return
	}

	reports, err := h.service.AuditBatch(c.Request.Context(), request.Pages)
	if err != nil {
		// Pages audited before the interruption still come back; nil
		// entries mark the ones that never ran.
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Batch interrupted: " + err.Error(),
			"reports": reports,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
	})
}

// statistics reports request statistics plus the month's audit counters.
func (h *handlers) statistics(c *gin.Context) {
	result := h.requestStats.GetStatistics()

	monthly := h.storage.GetCurrentStats()
	result["auditsThisMonth"] = monthly.Audits
	result["invalidPagesThisMonth"] = monthly.InvalidPages
	result["averageScoreThisMonth"] = monthly.AverageScore()

	cache := h.service.CacheStats()
	result["cacheHits"] = cache.Hits
	result["cacheMisses"] = cache.Misses
	result["cachedReports"] = cache.Entries

	history := make(map[string]stats.MonthlyStats)
	for _, month := range h.storage.GetAllMonths() {
		if monthStats, ok := h.storage.GetMonthlyStats(month); ok {
			history[month] = monthStats
		}
	}
	result["monthlyHistory"] = history

	c.JSON(http.StatusOK, result)
}
