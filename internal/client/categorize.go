package client

import (
	"context"
	"errors"
	"net"
	"strings"
)

// ErrorCategory is a stable label for error classification in logs and metrics.
type ErrorCategory string

// Error category constants used as the sampleAttemptsTotal outcome label.
const (
	ErrorCategoryTimeout           ErrorCategory = "timeout"
	ErrorCategoryNetwork           ErrorCategory = "network"
	ErrorCategoryInvalidAPIKey     ErrorCategory = "invalid_api_key"
	ErrorCategoryLocationNotFound  ErrorCategory = "location_not_found"
	ErrorCategoryRateLimited       ErrorCategory = "rate_limited"
	ErrorCategoryUpstream          ErrorCategory = "upstream"
	ErrorCategoryParsing           ErrorCategory = "parsing"
	ErrorCategoryInvalidResponse   ErrorCategory = "invalid_response"
	ErrorCategoryInvalidCoordinate ErrorCategory = "invalid_coordinate"
	ErrorCategoryUnknown           ErrorCategory = "unknown"
)

// CategorizeError maps a fetch error to a stable ErrorCategory.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrInvalidResponse):
		return ErrorCategoryInvalidResponse
	case errors.Is(err, ErrInvalidCoordinate):
		return ErrorCategoryInvalidCoordinate
	case errors.Is(err, ErrInvalidAPIKey):
		return ErrorCategoryInvalidAPIKey
	case errors.Is(err, ErrLocationNotFound):
		return ErrorCategoryLocationNotFound
	case errors.Is(err, ErrRateLimited):
		return ErrorCategoryRateLimited
	case errors.Is(err, ErrUpstreamFailure):
		return ErrorCategoryUpstream
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrorCategoryTimeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorCategoryTimeout
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "timeout") {
		return ErrorCategoryTimeout
	}
	if strings.Contains(errStr, "network") || strings.Contains(errStr, "connection") ||
		strings.Contains(errStr, "no such host") {
		return ErrorCategoryNetwork
	}
	if strings.Contains(errStr, "parse") || strings.Contains(errStr, "unmarshal") {
		return ErrorCategoryParsing
	}

	return ErrorCategoryUnknown
}
