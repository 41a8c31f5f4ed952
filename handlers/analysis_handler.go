package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"caselaw-backend/models"
	"caselaw-backend/service"
	"caselaw-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
)

var pdfSignature = []byte("%PDF-")

// AnalysisHandler handles judgment PDF uploads: validation, archiving
// and generative metadata extraction.
type AnalysisHandler struct {
	analyzer    *service.AnalyzerService
	archive     storage.Archive
	maxFileSize int64
}

// NewAnalysisHandler creates a new analysis handler with a 10MB upload
// cap.
func NewAnalysisHandler(analyzer *service.AnalyzerService, archive storage.Archive) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer:    analyzer,
		archive:     archive,
		maxFileSize: 10 * 1024 * 1024,
	}
}

// AnalyzeDocument handles POST /api/cases/analyze. The uploaded PDF is
// validated, archived, and sent to the analyzer; the response carries
// the extracted metadata together with the document's plain text so the
// caller can ingest it as a case.
func (h *AnalysisHandler) AnalyzeDocument(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}

	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize),
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_READ_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	fullText, err := extractPDFText(content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_PDF",
				"message": err.Error(),
			},
		})
		return
	}

	// Archive failures are logged, not fatal: the extraction result is
	// still useful without the stored original.
	if h.archive != nil {
		docID := uuid.New()
		if _, err := h.archive.Save(c.Request.Context(), docID, fileHeader.Filename, bytes.NewReader(content)); err != nil {
			log.Printf("failed to archive judgment %s: %v", fileHeader.Filename, err)
		}
	}

	extraction, err := h.analyzer.AnalyzeDocument(c.Request.Context(), content)
	if err != nil {
		status := http.StatusInternalServerError
		code := "ANALYSIS_FAILED"
		var timeoutErr *models.TimeoutError
		if errors.As(err, &timeoutErr) {
			status = http.StatusGatewayTimeout
			code = "ANALYSIS_TIMEOUT"
		}
		c.JSON(status, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"extraction": extraction,
			"full_text":  fullText,
		},
	})
}

// extractPDFText validates the upload is a real PDF and returns its
// plain text.
func extractPDFText(content []byte) (string, error) {
	if len(content) == 0 {
		return "", errors.New("file is empty")
	}
	if !bytes.HasPrefix(content, pdfSignature) {
		return "", errors.New("file is not a PDF")
	}

	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to parse PDF: %w", err)
	}

	textReader, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, textReader); err != nil {
		return "", fmt.Errorf("failed to read extracted text: %w", err)
	}

	return buf.String(), nil
}
