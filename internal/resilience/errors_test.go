package resilience

import (
	"fmt"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"connection refused", syscall.ECONNREFUSED, true},
		{"connection reset wrapped", fmt.Errorf("post: %w", syscall.ECONNRESET), true},
		{"reset by peer text", eris.New("read tcp: connection reset by peer"), true},
		{"dns failure text", eris.New("dial tcp: lookup api.example.com: no such host"), true},
		{"io timeout text", eris.New("i/o timeout"), true},
		{"tls handshake timeout", eris.New("net/http: TLS handshake timeout"), true},
		{"plain provider error", eris.New("person not found"), false},
		{"validation error", eris.New("missing required field"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, status := range []int{408, 429, 500, 502, 503, 504, 599} {
		assert.True(t, IsTransientHTTPStatus(status), "status %d", status)
	}
	for _, status := range []int{200, 301, 400, 401, 403, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(status), "status %d", status)
	}
}

func TestClassifyError(t *testing.T) {
	assert.Equal(t, "transient", ClassifyError(eris.New("broken pipe")))
	assert.Equal(t, "permanent", ClassifyError(eris.New("bad input")))
}

func TestDLQEntry_CanRetry(t *testing.T) {
	e := &DLQEntry{RetryCount: 2, MaxRetries: 3}
	assert.True(t, e.CanRetry())

	e.RetryCount = 3
	assert.False(t, e.CanRetry())
}
