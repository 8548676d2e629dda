package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/contact-cli/internal/fetcher"
	"github.com/sells-group/contact-cli/internal/model"
)

// LoadContactsFile reads contacts from a CSV, XLSX, JSON, or zipped file.
// The path may be local or an http(s)/ftp URL; remote files are downloaded
// to a temp location first. Column headers are normalized to snake_case, so
// a "Company Name" column becomes the company_name field.
func LoadContactsFile(ctx context.Context, path string) ([]model.Contact, error) {
	local, cleanup, err := localize(ctx, path)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	switch strings.ToLower(filepath.Ext(local)) {
	case ".csv":
		return loadContactsCSV(local)
	case ".xlsx":
		return loadContactsXLSX(local)
	case ".json":
		return loadContactsJSON(local)
	case ".zip":
		return loadContactsZIP(ctx, local)
	default:
		return nil, eris.Errorf("unsupported contacts file type: %s", filepath.Ext(local))
	}
}

// localize downloads remote paths to a temp file and returns a local path
// plus a cleanup func.
func localize(ctx context.Context, path string) (string, func(), error) {
	noop := func() {}

	src := fetcher.ForURL(path)
	if src == nil {
		return path, noop, nil
	}

	tmp, err := os.CreateTemp("", "contacts-*"+filepath.Ext(path))
	if err != nil {
		return "", noop, eris.Wrap(err, "pipeline: create temp file")
	}
	tmp.Close()

	if _, err := src.FetchToFile(ctx, path, tmp.Name()); err != nil {
		os.Remove(tmp.Name())
		return "", noop, eris.Wrapf(err, "pipeline: download %s", path)
	}
	return tmp.Name(), func() { os.Remove(tmp.Name()) }, nil
}

func loadContactsCSV(path string) ([]model.Contact, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: open csv")
	}
	defer file.Close()

	table, err := fetcher.ReadCSV(file, fetcher.CSVOptions{TrimFields: true})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: read csv")
	}
	return tableToContacts(table), nil
}

func loadContactsXLSX(path string) ([]model.Contact, error) {
	table, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: read xlsx")
	}
	return tableToContacts(table), nil
}

func loadContactsJSON(path string) ([]model.Contact, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: open json")
	}
	defer file.Close()

	items, err := fetcher.DecodeJSONArray[model.Contact](file)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: read json")
	}

	var contacts []model.Contact
	for _, c := range items {
		if len(c) > 0 {
			contacts = append(contacts, c)
		}
	}
	return contacts, nil
}

func loadContactsZIP(ctx context.Context, path string) ([]model.Contact, error) {
	dir, err := os.MkdirTemp("", "contacts-zip-")
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create temp dir")
	}
	defer os.RemoveAll(dir)

	inner, err := fetcher.ExtractSingle(path, dir)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: extract zip")
	}
	return LoadContactsFile(ctx, inner)
}

func tableToContacts(table *fetcher.Table) []model.Contact {
	header := normalizeHeader(table.Header)

	var contacts []model.Contact
	for _, row := range table.Rows {
		if c := rowToContact(header, row); len(c) > 0 {
			contacts = append(contacts, c)
		}
	}
	return contacts
}

func normalizeHeader(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		key := strings.ToLower(strings.TrimSpace(c))
		key = strings.ReplaceAll(key, " ", "_")
		key = strings.ReplaceAll(key, "-", "_")
		out[i] = key
	}
	return out
}

func rowToContact(header, row []string) model.Contact {
	c := model.Contact{}
	for i, cell := range row {
		if i >= len(header) || header[i] == "" {
			continue
		}
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		c[header[i]] = cell
	}
	return c
}
