package research

import (
	"context"
	"errors"
	"net"
	"strings"
)

// noResultsPhrases are provider signatures for a legitimate empty result.
// Matching any of them means "advance the plan, do not retry".
var noResultsPhrases = []string{
	"no results",
	"hasn't returned any results",
	"hasn’t returned any results", // curly apostrophe variant
	`"total_results":0`,
	`"total_results": 0`,
	`"organic_results_state":"fully empty"`,
	`"organic_results_state": "fully empty"`,
	"your search did not match any documents",
	"did not match any documents",
}

// isNoResults reports whether a raw response (or error text) carries one of
// the fixed zero-result signatures.
func isNoResults(response string) bool {
	if response == "" {
		return false
	}
	lower := strings.ToLower(response)
	for _, phrase := range noResultsPhrases {
		if strings.Contains(lower, strings.ToLower(phrase)) {
			return true
		}
	}
	return false
}

// connectionDroppedFragments mark a provider session dying mid-call. These
// are retryable, but only after invalidating the shared tool cache.
var connectionDroppedFragments = []string{
	"connection reset",
	"connection refused",
	"broken pipe",
	"use of closed network connection",
	"session terminated",
	"transport closed",
	"eof",
}

// IsConnectionDropped reports whether the error looks like the provider
// session was dropped mid-call.
func IsConnectionDropped(err error) bool {
	if err == nil {
		return false
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, frag := range connectionDroppedFragments {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}

// IsTimeout reports whether the error is a deadline or timeout of any stripe.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "timed out") ||
		strings.Contains(strings.ToLower(err.Error()), "timeout")
}
