package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFTPURL(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		wantAddr string
		wantPath string
	}{
		{
			name:     "default port",
			url:      "ftp://exports.example-crm.com/contacts/2026/07/contacts.csv",
			wantAddr: "exports.example-crm.com:21",
			wantPath: "/contacts/2026/07/contacts.csv",
		},
		{
			name:     "explicit port",
			url:      "ftp://exports.example-crm.com:2121/weekly.csv",
			wantAddr: "exports.example-crm.com:2121",
			wantPath: "/weekly.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			addr, path, err := splitFTPURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, addr)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestSplitFTPURL_Errors(t *testing.T) {
	_, _, err := splitFTPURL("https://example.com/file.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected ftp scheme")

	_, _, err = splitFTPURL("ftp://example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no file path")
}

func TestNewFTPSource_Defaults(t *testing.T) {
	src := NewFTPSource(FTPOptions{})
	assert.Equal(t, "anonymous", src.opts.User)
	assert.Equal(t, "anonymous@", src.opts.Pass)
	assert.NotZero(t, src.opts.Timeout)
}
