// Package services holds the business logic for diary emotion analysis and
// account alerts. Every public operation returns a domain.Messenger; errors
// and panics are converted at the method boundary and never reach callers.
//
// This file centralizes the sentinel errors whose text becomes envelope
// messages, so handlers and tests can match on them.
package services

import "errors"

// Diary emotion errors.
var (
	// ErrDiaryIDRequired is returned for a missing or non-positive diary id.
	ErrDiaryIDRequired = errors.New("diary id is required")

	// ErrEmptyContent is returned when both title and content are blank.
	ErrEmptyContent = errors.New("diary content is empty")

	// ErrDiaryEmotionNotFound indicates there is no stored analysis result.
	ErrDiaryEmotionNotFound = errors.New("diary emotion not found")

	// ErrAnalysisInProgress is returned when another writer holds the
	// per-diary lock.
	ErrAnalysisInProgress = errors.New("analysis already in progress")

	// ErrAnalysisFailed prefixes upstream inference failures.
	ErrAnalysisFailed = errors.New("emotion analysis failed")
)

// Alert errors.
var (
	ErrAlertIDRequired   = errors.New("alert id is required")
	ErrAccountIDRequired = errors.New("account id is required")
	ErrAlertNotFound     = errors.New("alert not found")
	ErrTitleRequired     = errors.New("alert title is required")
	ErrMessageRequired   = errors.New("alert message is required")
	ErrUnknownAlertType  = errors.New("unknown alert type")
)
