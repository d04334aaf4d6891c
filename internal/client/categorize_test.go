package client

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ""},
		{"deadline exceeded", context.DeadlineExceeded, ErrorCategoryTimeout},
		{"wrapped deadline", fmt.Errorf("request timeout: %w", context.DeadlineExceeded), ErrorCategoryTimeout},
		{"canceled", context.Canceled, ErrorCategoryTimeout},
		{"connection refused", errors.New("dial tcp: connection refused"), ErrorCategoryNetwork},
		{"dns failure", errors.New("dial tcp: lookup api.example: no such host"), ErrorCategoryNetwork},
		{"invalid API key", fmt.Errorf("%w: bad", ErrInvalidAPIKey), ErrorCategoryInvalidAPIKey},
		{"location not found", ErrLocationNotFound, ErrorCategoryLocationNotFound},
		{"rate limited", ErrRateLimited, ErrorCategoryRateLimited},
		{"upstream", fmt.Errorf("%w: HTTP 503", ErrUpstreamFailure), ErrorCategoryUpstream},
		{"invalid response", fmt.Errorf("%w: missing sys", ErrInvalidResponse), ErrorCategoryInvalidResponse},
		{"invalid coordinate", fmt.Errorf("%w: lat", ErrInvalidCoordinate), ErrorCategoryInvalidCoordinate},
		{"parse", errors.New("parse response: unexpected EOF"), ErrorCategoryParsing},
		{"client timeout text", errors.New("Client.Timeout exceeded while awaiting headers"), ErrorCategoryTimeout},
		{"unknown", errors.New("something else"), ErrorCategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategorizeError(tt.err); got != tt.want {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}
