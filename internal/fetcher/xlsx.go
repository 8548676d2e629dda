package fetcher

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// XLSXOptions selects the worksheet to read.
type XLSXOptions struct {
	Sheet      string // sheet by name; wins over SheetIndex
	SheetIndex int    // default 0
}

// ReadXLSX parses one worksheet of an XLSX export. The first row is the
// header; every further row becomes a data row.
func ReadXLSX(path string, opts XLSXOptions) (*Table, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "xlsx: open file")
	}

	var sheet *xlsx.Sheet
	switch {
	case opts.Sheet != "":
		var ok bool
		if sheet, ok = f.Sheet[opts.Sheet]; !ok {
			return nil, eris.Errorf("xlsx: sheet %q not found", opts.Sheet)
		}
	case opts.SheetIndex < len(f.Sheets):
		sheet = f.Sheets[opts.SheetIndex]
	default:
		return nil, eris.Errorf("xlsx: sheet index %d out of range (%d sheets)", opts.SheetIndex, len(f.Sheets))
	}

	table := &Table{}
	for _, row := range sheet.Rows {
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = cell.String()
		}
		if table.Header == nil {
			table.Header = cells
			continue
		}
		table.Rows = append(table.Rows, cells)
	}

	if table.Header == nil {
		return nil, eris.New("xlsx: sheet is empty")
	}
	return table, nil
}
