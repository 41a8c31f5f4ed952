package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"caselaw-backend/models"

	"github.com/google/generative-ai-go/genai"
)

const analyzeInstruction = `IMPORTANT: Extract and structure ONLY information that is EXPLICITLY stated in the document. DO NOT add suggestions, interpretations, or information not directly present in the text.

Analyze this legal judgment and return the following fields as a JSON object. STRICTLY follow this exact structure:

{
    "case_number": "string",
    "title": "string",
    "date": "YYYY-MM-DD",
    "court": {
        "name": "string",
        "jurisdiction": "string",
        "bench_type": "string"
    },
    "judges": [
        {
            "name": "string",
            "designation": "string"
        }
    ],
    "summary": "string"
}

STRICT INSTRUCTIONS:
1. Extract ONLY information that is EXPLICITLY stated in the document
2. Use exact quotes from the document where possible
3. If information is not found, use empty string ("") or empty array ([])
4. Ensure the date is in YYYY-MM-DD format
5. Return ONLY the JSON object, no additional text`

// Judge is one member of the bench as listed in the judgment.
type Judge struct {
	Name        string `json:"name"`
	Designation string `json:"designation,omitempty"`
}

// CaseExtraction is the structured metadata pulled out of an uploaded
// judgment. It carries everything needed to build a Case for ingestion.
type CaseExtraction struct {
	CaseNumber string       `json:"case_number"`
	Title      string       `json:"title"`
	Date       string       `json:"date"`
	Court      models.Court `json:"court"`
	Judges     []Judge      `json:"judges,omitempty"`
	Summary    string       `json:"summary,omitempty"`
}

// AnalyzerService extracts structured case metadata from judgment PDFs
// using Gemini.
type AnalyzerService struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// AnalyzerServiceOption is a functional option for AnalyzerService.
type AnalyzerServiceOption func(*AnalyzerService)

// AnalyzerWithModel overrides the generation model name.
func AnalyzerWithModel(model string) AnalyzerServiceOption {
	return func(s *AnalyzerService) {
		s.model = model
	}
}

// AnalyzerWithTimeout bounds one extraction call.
func AnalyzerWithTimeout(d time.Duration) AnalyzerServiceOption {
	return func(s *AnalyzerService) {
		s.timeout = d
	}
}

// NewAnalyzerService creates a new analyzer service.
func NewAnalyzerService(client *genai.Client, opts ...AnalyzerServiceOption) *AnalyzerService {
	s := &AnalyzerService{
		client:  client,
		model:   "gemini-2.5-flash",
		timeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeDocument sends the PDF to Gemini with a strict extraction
// instruction and parses the JSON it returns. The model response is
// cleaned of markdown fences and stray prose before parsing, and the
// extracted date is normalized to YYYY-MM-DD.
func (s *AnalyzerService) AnalyzeDocument(ctx context.Context, pdfContent []byte) (*CaseExtraction, error) {
	if s.client == nil {
		return nil, errors.New("gemini client not set")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	model := s.client.GenerativeModel(s.model)
	model.SetTemperature(0.1)

	resp, err := model.GenerateContent(ctx,
		genai.Blob{MIMEType: "application/pdf", Data: pdfContent},
		genai.Text(analyzeInstruction),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &models.TimeoutError{Op: "analyze document", Err: err}
		}
		return nil, fmt.Errorf("failed to analyze document: %w", err)
	}

	var responseText strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				responseText.WriteString(string(text))
			}
		}
	}

	cleaned := cleanJSONResponse(responseText.String())

	var extraction CaseExtraction
	if err := json.Unmarshal([]byte(cleaned), &extraction); err != nil {
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	extraction.Date = formatDate(extraction.Date)
	return &extraction, nil
}

// cleanJSONResponse strips markdown code fences and any prose before
// the first brace or after the last one.
func cleanJSONResponse(response string) string {
	response = strings.TrimSpace(response)

	if strings.HasPrefix(response, "```") {
		var jsonLines []string
		inCodeBlock := false
		for _, line := range strings.Split(response, "\n") {
			if strings.HasPrefix(line, "```") {
				inCodeBlock = !inCodeBlock
				continue
			}
			if inCodeBlock {
				jsonLines = append(jsonLines, line)
			}
		}
		response = strings.Join(jsonLines, "\n")
	}

	if start := strings.Index(response, "{"); start != -1 {
		response = response[start:]
	}
	if end := strings.LastIndex(response, "}"); end != -1 {
		response = response[:end+1]
	}
	return response
}

var embeddedDatePattern = regexp.MustCompile(`(\d{4}[-/]\d{1,2}[-/]\d{1,2}|\d{1,2}[-/]\d{1,2}[-/]\d{4})`)

// formatDate normalizes the model's date output to YYYY-MM-DD, falling
// back to the epoch date when nothing parseable is present.
func formatDate(dateStr string) string {
	const fallback = "1970-01-01"
	if dateStr == "" {
		return fallback
	}

	layouts := []string{
		"2006-01-02", "02-01-2006", "02/01/2006", "2006/01/02",
		"2006-01-02T15:04:05", "2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t.Format("2006-01-02")
		}
	}

	if match := embeddedDatePattern.FindString(dateStr); match != "" {
		for _, layout := range []string{"2006-01-02", "02-01-2006", "2006/01/02", "02/01/2006"} {
			if t, err := time.Parse(layout, match); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}

	return fallback
}
