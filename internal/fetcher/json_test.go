package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRecord struct {
	Name    string `json:"name"`
	Company string `json:"company"`
}

func TestDecodeJSONArray(t *testing.T) {
	in := `[{"name": "Jane Smith", "company": "Acme Fasteners"}, {"name": "John Doe"}]`

	items, err := DecodeJSONArray[testRecord](strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Acme Fasteners", items[0].Company)
	assert.Equal(t, "John Doe", items[1].Name)
}

func TestDecodeJSONArray_EmptyArray(t *testing.T) {
	items, err := DecodeJSONArray[testRecord](strings.NewReader(`[]`))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDecodeJSONArray_EmptyInput(t *testing.T) {
	items, err := DecodeJSONArray[testRecord](strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestDecodeJSONArray_NotAnArray(t *testing.T) {
	_, err := DecodeJSONArray[testRecord](strings.NewReader(`{"name": "Jane"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected array")
}

func TestDecodeJSONArray_MalformedElement(t *testing.T) {
	_, err := DecodeJSONArray[testRecord](strings.NewReader(`[{"name": }]`))
	require.Error(t, err)
}
