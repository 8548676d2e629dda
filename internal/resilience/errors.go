package resilience

import (
	"errors"
	"net"
	"strings"
	"syscall"
)

// IsTransient reports whether an error looks like a passing fault (network
// trouble, timeouts) rather than a definitive answer. Provider HTTP errors
// carry a status code and are classified by IsTransientHTTPStatus instead.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	for _, target := range []error{syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ECONNABORTED} {
		if errors.Is(err, target) {
			return true
		}
	}

	// Wrapped transport errors often survive only as text.
	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"no such host",
		"temporary failure in name resolution",
		"tls handshake timeout",
		"i/o timeout",
		"server closed idle connection",
		"transport connection broken",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// IsTransientHTTPStatus reports whether a provider status code is worth
// retrying. Client errors other than timeout and throttling are definitive.
func IsTransientHTTPStatus(status int) bool {
	return status == 408 || status == 429 || (status >= 500 && status <= 599)
}

// ClassifyError labels an error for DLQ triage.
func ClassifyError(err error) string {
	if IsTransient(err) {
		return "transient"
	}
	return "permanent"
}
