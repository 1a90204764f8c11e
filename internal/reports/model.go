package reports

import (
	"strings"
	"time"

	"github.com/reportlens/reportlens/internal/analysis"
)

// Report is the persisted record of one uploaded document and its
// interpreted results. A report belongs to exactly one user and is deleted
// wholesale, cascading to its results.
type Report struct {
	ID        string                           `json:"id"`
	UserID    string                           `json:"user_id"`
	Filename  string                           `json:"filename"`
	FileType  string                           `json:"file_type"`
	FileURL   string                           `json:"file_url,omitempty"`
	Patient   analysis.PatientProfile          `json:"patient"`
	CreatedAt time.Time                        `json:"created_at"`
	Results   []analysis.InterpretedTestResult `json:"results"`
}

// AnalyzeRequest is the request body for analyzing and saving a report.
// Exactly one of Text (raw document text, sent through an extractor) or
// Observations (pre-extracted, validated as-is) must be supplied.
type AnalyzeRequest struct {
	UserID       string                        `json:"-"`
	Filename     string                        `json:"filename"`
	FileType     string                        `json:"file_type"`
	Text         string                        `json:"text,omitempty"`
	Observations []analysis.RawTestObservation `json:"observations,omitempty"`
	Patient      *analysis.PatientProfile      `json:"patient,omitempty"`
	// Document is the raw uploaded file, base64-encoded by the client,
	// archived to object storage when configured.
	Document []byte `json:"document,omitempty"`
}

// Validate validates the analyze request
func (r *AnalyzeRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return ErrMissingUserID
	}
	if strings.TrimSpace(r.Filename) == "" {
		return ErrMissingFilename
	}
	if strings.TrimSpace(r.Text) == "" && len(r.Observations) == 0 {
		return ErrNoContent
	}
	return nil
}

// ListFilter bounds report listing.
type ListFilter struct {
	Limit  int
	Offset int
}
