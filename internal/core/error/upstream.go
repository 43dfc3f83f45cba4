package errx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// WrapUpstream classifies a failed call to the retrieval or generation
// collaborators into timeout, rate-limited or generic upstream failures.
func WrapUpstream(err error) error {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return New(KindTimeout, err, http.StatusGatewayTimeout, TimeoutErrorMessage)
	}

	if isRateLimited(err) {
		return New(KindRateLimited, err, http.StatusTooManyRequests, RateLimitedErrorMessage)
	}

	return New(KindUpstream, err, http.StatusBadGateway, UpstreamErrorMessage)
}

func isRateLimited(err error) bool {
	var apiErr *genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	// eino-ext flattens provider errors into strings in some paths.
	msg := err.Error()
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "Error 429")
}
