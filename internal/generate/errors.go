package generate

import (
	"errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("generator not configured")
	// ErrRateLimited means the provider throttled the request.
	ErrRateLimited = errors.New("generator rate limited")
	// ErrQuotaExhausted means the account has no credits or quota left.
	ErrQuotaExhausted = errors.New("generator quota exhausted")
	// ErrEmptyResponse means the provider replied without any text.
	ErrEmptyResponse = errors.New("generator returned no text")
)

// classify maps a provider error onto one of the sentinel errors, keeping the
// original error in the chain. It returns err unchanged when nothing matches.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		switch gErr.Code {
		case http.StatusTooManyRequests:
			if mentionsQuota(gErr.Message) {
				return errors.Join(ErrQuotaExhausted, err)
			}
			return errors.Join(ErrRateLimited, err)
		case http.StatusPaymentRequired:
			return errors.Join(ErrQuotaExhausted, err)
		}
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted:
			if mentionsQuota(st.Message()) {
				return errors.Join(ErrQuotaExhausted, err)
			}
			return errors.Join(ErrRateLimited, err)
		}
	}
	return err
}

// retryable reports whether a failed call may succeed when repeated.
func retryable(err error) bool {
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrQuotaExhausted) || errors.Is(err, ErrNotConfigured) {
		return false
	}
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code >= http.StatusInternalServerError
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.Internal, codes.DeadlineExceeded, codes.Unknown:
			return true
		}
		return false
	}
	return true
}

func mentionsQuota(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "billing") || strings.Contains(msg, "credit") ||
		strings.Contains(msg, "per day") || strings.Contains(msg, "perday")
}
