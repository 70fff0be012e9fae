package service

import (
	"errors"
	"fmt"
)

// Sentinel errors caused by the request rather than a collaborator
var (
	ErrEmptyReport    = errors.New("uploaded report is empty")
	ErrReportTooLarge = errors.New("report exceeds size limit")
	ErrNoBetsSupplied = errors.New("no bets supplied")
	ErrNoValidBets    = errors.New("no valid bet rows detected")
)

// ErrExtractionUnavailable means no document extraction key is configured
var ErrExtractionUnavailable = errors.New("document extraction key is not configured")

// ReportTooLargeError carries the configured upload limit
type ReportTooLargeError struct {
	Limit int64
}

func (e *ReportTooLargeError) Error() string {
	return fmt.Sprintf("report exceeds %s limit", e.LimitMB())
}

// LimitMB renders the limit in megabytes with one decimal, e.g. "5.0MB"
func (e *ReportTooLargeError) LimitMB() string {
	return fmt.Sprintf("%.1fMB", float64(e.Limit)/(1024*1024))
}

// Is lets errors.Is match ErrReportTooLarge
func (e *ReportTooLargeError) Is(target error) bool {
	return target == ErrReportTooLarge
}

// IsClientError reports whether err was caused by the request itself
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptyReport) ||
		errors.Is(err, ErrReportTooLarge) ||
		errors.Is(err, ErrNoBetsSupplied) ||
		errors.Is(err, ErrNoValidBets)
}
