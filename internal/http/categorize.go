package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/kjstillabower/attire-decider/internal/client"
	"github.com/kjstillabower/attire-decider/internal/extract"
	"github.com/kjstillabower/attire-decider/internal/service"
)

// ErrorCategory is a stable label for error classification in metrics.
type ErrorCategory string

// Error category constants used as metric labels (adviceErrorsTotal).
const (
	ErrorCategoryTimeout          ErrorCategory = "timeout"
	ErrorCategoryLocationNotFound ErrorCategory = "location_not_found"
	ErrorCategoryRateLimited      ErrorCategory = "rate_limited"
	ErrorCategoryUpstream         ErrorCategory = "upstream"
	ErrorCategoryExtraction       ErrorCategory = "extraction"
	ErrorCategoryCorruptRecord    ErrorCategory = "corrupt_record"
	ErrorCategoryStore            ErrorCategory = "store"
	ErrorCategoryUnknown          ErrorCategory = "unknown"
)

// CategorizeError maps an error to a stable ErrorCategory for metrics.
// Causes are checked before ErrRefreshFailed so a refresh that failed on a missing
// location is reported as such.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrorCategoryTimeout
	case errors.Is(err, client.ErrLocationNotFound):
		return ErrorCategoryLocationNotFound
	case errors.Is(err, client.ErrRateLimited):
		return ErrorCategoryRateLimited
	case errors.Is(err, client.ErrUpstreamFailure):
		return ErrorCategoryUpstream
	case errors.Is(err, service.ErrRefreshFailed) && errors.Is(err, extract.ErrFieldNotFound):
		return ErrorCategoryExtraction
	case errors.Is(err, extract.ErrFieldNotFound), errors.Is(err, extract.ErrMalformedTimestamp):
		return ErrorCategoryCorruptRecord
	case errors.Is(err, service.ErrStore):
		return ErrorCategoryStore
	case errors.Is(err, service.ErrRefreshFailed):
		// transport errors from the page fetch
		return ErrorCategoryUpstream
	}
	return ErrorCategoryUnknown
}

// errorResponse returns the HTTP status and error code for a category.
func errorResponse(c ErrorCategory) (int, string) {
	switch c {
	case ErrorCategoryTimeout:
		return http.StatusGatewayTimeout, "TIMEOUT"
	case ErrorCategoryLocationNotFound:
		return http.StatusNotFound, "LOCATION_NOT_FOUND"
	case ErrorCategoryRateLimited, ErrorCategoryUpstream:
		return http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE"
	case ErrorCategoryExtraction:
		return http.StatusBadGateway, "EXTRACTION_FAILED"
	case ErrorCategoryStore:
		return http.StatusServiceUnavailable, "STORE_UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL"
	}
}
