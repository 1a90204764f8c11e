package reports

import "errors"

var (
	// ErrMissingUserID is returned when no authenticated user is attached
	ErrMissingUserID = errors.New("user id is required")

	// ErrMissingFilename is returned when the filename is missing
	ErrMissingFilename = errors.New("filename is required")

	// ErrNoContent is returned when neither text nor observations are supplied
	ErrNoContent = errors.New("either text or observations are required")

	// ErrReportNotFound is returned when a report is not found
	ErrReportNotFound = errors.New("report not found")
)
