package handlers

import (
	"errors"
	"net/http"

	"caselaw-backend/models"
	"caselaw-backend/service"

	"github.com/gin-gonic/gin"
)

// CaseHandler handles HTTP requests for case ingestion and search.
type CaseHandler struct {
	ingestService *service.IngestService
	searchService *service.SearchService
}

// NewCaseHandler creates a new case handler.
func NewCaseHandler(ingestService *service.IngestService, searchService *service.SearchService) *CaseHandler {
	return &CaseHandler{
		ingestService: ingestService,
		searchService: searchService,
	}
}

// SearchRequest is the body of POST /api/search.
type SearchRequest struct {
	Query      string `json:"query"`
	TopK       int    `json:"top_k"`
	SearchType string `json:"search_type"`
}

// CreateCase handles POST /api/cases.
func (h *CaseHandler) CreateCase(c *gin.Context) {
	var caseDoc models.Case
	if err := c.ShouldBindJSON(&caseDoc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_BODY",
				"message": err.Error(),
			},
		})
		return
	}

	caseID, err := h.ingestService.Process(c.Request.Context(), &caseDoc)
	if err != nil {
		status, code := ingestErrorStatus(err)
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"case_id": caseID,
		},
	})
}

// BatchCreateCases handles POST /api/cases/batch. Every submitted case
// gets its own result; one bad case never blocks the rest.
func (h *CaseHandler) BatchCreateCases(c *gin.Context) {
	var cases []*models.Case
	if err := c.ShouldBindJSON(&cases); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_BODY",
				"message": err.Error(),
			},
		})
		return
	}

	results := h.ingestService.BatchProcess(c.Request.Context(), cases)

	succeeded := 0
	for _, r := range results {
		if r.Error == "" {
			succeeded++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"processed": succeeded,
			"results":   results,
		},
	})
}

// SearchCases handles POST /api/search.
func (h *CaseHandler) SearchCases(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_BODY",
				"message": err.Error(),
			},
		})
		return
	}

	results, err := h.searchService.Search(c.Request.Context(), req.Query, req.TopK, req.SearchType)
	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_QUERY",
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SEARCH_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	if results == nil {
		results = []models.SearchResult{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"results": results,
		},
	})
}

func ingestErrorStatus(err error) (int, string) {
	var validationErr *models.ValidationError
	var timeoutErr *models.TimeoutError
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, "INVALID_CASE"
	case errors.As(err, &timeoutErr):
		return http.StatusGatewayTimeout, "INGESTION_TIMEOUT"
	default:
		return http.StatusInternalServerError, "INGESTION_FAILED"
	}
}
