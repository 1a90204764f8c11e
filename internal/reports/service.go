package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/reportlens/reportlens/internal/analysis"
	"github.com/reportlens/reportlens/internal/extraction"
	"github.com/reportlens/reportlens/internal/filestore"
	"github.com/reportlens/reportlens/internal/observability/metrics"
	"github.com/reportlens/reportlens/pkg/logging"
)

var reportsTracer = otel.Tracer("reportlens.internal.reports")

// Service orchestrates the analyze-and-save flow: extraction, normalization,
// explanation, document archival, persistence.
type Service struct {
	repo       Repository
	normalizer *analysis.Normalizer
	extractor  extraction.Extractor
	// extractorSource labels metrics ("gemini" or "regex").
	extractorSource string
	explainer       extraction.Explainer
	files           *filestore.Store
	metrics         *metrics.AnalysisMetrics
	logger          *logging.Logger
}

// ServiceConfig wires the service's collaborators. Explainer, Files and
// Metrics are optional.
type ServiceConfig struct {
	Repo            Repository
	Normalizer      *analysis.Normalizer
	Extractor       extraction.Extractor
	ExtractorSource string
	Explainer       extraction.Explainer
	Files           *filestore.Store
	Metrics         *metrics.AnalysisMetrics
	Logger          *logging.Logger
}

// NewService creates the analysis service.
func NewService(cfg ServiceConfig) *Service {
	if cfg.Repo == nil {
		panic("reports: repository required")
	}
	if cfg.Normalizer == nil {
		cfg.Normalizer = analysis.NewNormalizer(nil, cfg.Logger)
	}
	if cfg.Extractor == nil {
		cfg.Extractor = extraction.NewRegexExtractor(nil)
		cfg.ExtractorSource = "regex"
	}
	if cfg.ExtractorSource == "" {
		cfg.ExtractorSource = "unknown"
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	return &Service{
		repo:            cfg.Repo,
		normalizer:      cfg.Normalizer,
		extractor:       cfg.Extractor,
		extractorSource: cfg.ExtractorSource,
		explainer:       cfg.Explainer,
		files:           cfg.Files,
		metrics:         cfg.Metrics,
		logger:          cfg.Logger,
	}
}

// Analyze runs the full pipeline for one uploaded report and persists the
// outcome. Pre-extracted observations skip the extraction step.
func (s *Service) Analyze(ctx context.Context, req *AnalyzeRequest) (*Report, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	ctx, span := reportsTracer.Start(ctx, "reports.analyze")
	defer span.End()
	span.SetAttributes(attribute.String("reportlens.user_id", req.UserID))

	observations := req.Observations
	var patient analysis.PatientProfile
	source := "client"

	if len(observations) == 0 {
		source = s.extractorSource
		start := time.Now()
		ext, err := s.extractor.Extract(ctx, req.Text)
		s.metrics.ObserveExtractionLatency(source, time.Since(start).Seconds())
		if err != nil {
			s.metrics.ObserveReport(source, "error")
			span.RecordError(err)
			return nil, fmt.Errorf("reports: extraction failed: %w", err)
		}
		observations = ext.Observations
		patient = ext.Patient
	}

	// An explicit patient profile from the caller wins over extracted hints.
	if req.Patient != nil {
		patient = mergePatient(patient, *req.Patient)
	}

	results := s.normalizer.Normalize(observations, patient)
	span.SetAttributes(attribute.Int("reportlens.result_count", len(results)))

	if s.explainer != nil && len(results) > 0 {
		explanations, err := s.explainer.Explain(ctx, patient, results)
		if err != nil {
			// Explanations are display text; a failed call never blocks the save.
			s.logger.Warn("explanation generation failed", "error", err)
		}
		analysis.AttachExplanations(results, explanations)
	}

	report := &Report{
		ID:       uuid.NewString(),
		UserID:   req.UserID,
		Filename: req.Filename,
		FileType: req.FileType,
		Patient:  patient,
		Results:  results,
	}

	if s.files.Enabled() && len(req.Document) > 0 {
		key, err := s.files.Put(ctx, req.UserID, req.Filename, contentTypeFor(req.FileType), req.Document)
		if err != nil {
			s.logger.Warn("document archival failed", "error", err, "filename", req.Filename)
		} else {
			report.FileURL = key
		}
	}

	if err := s.repo.Create(ctx, report); err != nil {
		s.metrics.ObserveReport(source, "error")
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ObserveReport(source, "ok")
	for _, res := range results {
		s.metrics.ObserveInterpretation(string(res.Interpretation))
	}

	s.logger.Info("report analyzed",
		"report_id", report.ID,
		"user_id", report.UserID,
		"source", source,
		"result_count", len(results),
	)
	return report, nil
}

// mergePatient overlays explicit fields onto the extracted profile.
func mergePatient(extracted, explicit analysis.PatientProfile) analysis.PatientProfile {
	merged := extracted
	if explicit.Name != "" {
		merged.Name = explicit.Name
	}
	if explicit.Age != nil {
		merged.Age = explicit.Age
	}
	if explicit.Gender != "" {
		merged.Gender = explicit.Gender
	}
	return merged
}

func contentTypeFor(fileType string) string {
	switch fileType {
	case "pdf":
		return "application/pdf"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
