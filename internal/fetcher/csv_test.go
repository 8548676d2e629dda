package fetcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadCSV(t *testing.T) {
	in := "name,email,company\n" +
		"Jane Smith,jane@acme.com,Acme Fasteners\n" +
		"John Doe,john@widget.co,Widget Works\n"

	table, err := ReadCSV(strings.NewReader(in), CSVOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"name", "email", "company"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"Jane Smith", "jane@acme.com", "Acme Fasteners"}, table.Rows[0])
}

func TestReadCSV_TrimFields(t *testing.T) {
	in := " name , email \n Jane Smith , jane@acme.com \n"

	table, err := ReadCSV(strings.NewReader(in), CSVOptions{TrimFields: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "email"}, table.Header)
	assert.Equal(t, []string{"Jane Smith", "jane@acme.com"}, table.Rows[0])
}

func TestReadCSV_CustomDelimiterAndComment(t *testing.T) {
	in := "# exported 2026-07-01\nname;company\nJane Smith;Acme Fasteners\n"

	table, err := ReadCSV(strings.NewReader(in), CSVOptions{Delimiter: ';', Comment: '#'})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "company"}, table.Header)
	require.Len(t, table.Rows, 1)
}

func TestReadCSV_RaggedRowsKept(t *testing.T) {
	in := "name,email,company\nJane Smith,jane@acme.com\n"

	table, err := ReadCSV(strings.NewReader(in), CSVOptions{})
	require.NoError(t, err)
	require.Len(t, table.Rows, 1)
	assert.Len(t, table.Rows[0], 2)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), CSVOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestReadCSV_BadQuoting(t *testing.T) {
	in := "name\n\"unterminated\n"
	_, err := ReadCSV(strings.NewReader(in), CSVOptions{})
	require.Error(t, err)
}
