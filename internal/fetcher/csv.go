package fetcher

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
)

// CSVOptions configures CSV parsing.
type CSVOptions struct {
	Delimiter  rune // default ','
	Comment    rune // lines starting with this rune are skipped; 0 disables
	LazyQuotes bool
	TrimFields bool
}

// ReadCSV parses a CSV export. The first record is the header; every further
// record becomes a row. Ragged records are kept as-is.
func ReadCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	if opts.Comment != 0 {
		reader.Comment = opts.Comment
	}
	reader.LazyQuotes = opts.LazyQuotes
	reader.FieldsPerRecord = -1

	table := &Table{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "csv: read record")
		}
		if opts.TrimFields {
			for i := range record {
				record[i] = strings.TrimSpace(record[i])
			}
		}
		if table.Header == nil {
			table.Header = record
			continue
		}
		table.Rows = append(table.Rows, record)
	}

	if table.Header == nil {
		return nil, eris.New("csv: file is empty")
	}
	return table, nil
}
