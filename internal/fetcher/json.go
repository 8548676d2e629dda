package fetcher

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
)

// DecodeJSONArray reads a top-level JSON array of objects, decoding each
// element into T. An empty input decodes to no elements.
func DecodeJSONArray[T any](r io.Reader) ([]T, error) {
	dec := json.NewDecoder(r)

	tok, err := dec.Token()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "json: read opening token")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, eris.Errorf("json: expected array, got %v", tok)
	}

	var items []T
	for dec.More() {
		var item T
		if err := dec.Decode(&item); err != nil {
			return nil, eris.Wrap(err, "json: decode element")
		}
		items = append(items, item)
	}

	if _, err := dec.Token(); err != nil && err != io.EOF {
		return nil, eris.Wrap(err, "json: read closing token")
	}
	return items, nil
}
