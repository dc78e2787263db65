package query

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"unicode/utf8"

	"athena-query/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Fetcher loads a result object from storage and parses it as CSV.
type Fetcher struct {
	store domain.ObjectStore
}

// NewFetcher creates a Fetcher that reads through store.
func NewFetcher(store domain.ObjectStore) *Fetcher {
	return &Fetcher{store: store}
}

// Fetch retrieves the object at location in a single request and parses it.
// The first CSV row is the header.
func (f *Fetcher) Fetch(ctx context.Context, location string) (*domain.TabularResult, error) {
	loc, err := ParseLocation(location)
	if err != nil {
		return nil, err
	}

	data, err := f.store.GetObject(ctx, loc)
	if err != nil {
		return nil, err
	}

	result, err := ParseCSV(data)
	if err != nil {
		return nil, &domain.ParseError{Location: location, Err: err}
	}
	return result, nil
}

// ParseLocation splits a "scheme://bucket/path/to/key" URI. The bucket is the
// host component and the key is the path without its leading slash.
func ParseLocation(location string) (domain.ObjectLocation, error) {
	u, err := url.Parse(location)
	if err != nil {
		return domain.ObjectLocation{}, domain.ErrValidation("parse result location %q: %v", location, err)
	}
	if u.Scheme == "" {
		return domain.ObjectLocation{}, domain.ErrValidation("missing scheme in result location %q", location)
	}
	if u.Host == "" {
		return domain.ObjectLocation{}, domain.ErrValidation("missing bucket in result location %q", location)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return domain.ObjectLocation{}, domain.ErrValidation("empty key in result location %q", location)
	}
	return domain.ObjectLocation{Scheme: u.Scheme, Bucket: u.Host, Key: key}, nil
}

// ParseCSV parses comma-separated text with a header row. Every data row must
// have as many fields as the header. Repeated header names get a ".N" suffix.
func ParseCSV(data []byte) (*domain.TabularResult, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.New("no columns to parse")
	}
	if !utf8.Valid(data) {
		return nil, errors.New("content is not valid UTF-8")
	}

	r := csv.NewReader(bytes.NewReader(data))
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	result := &domain.TabularResult{
		Columns: dedupeColumns(header),
		Rows:    [][]string{},
	}
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		result.Rows = append(result.Rows, row)
	}
	return result, nil
}

func dedupeColumns(header []string) []string {
	cols := make([]string, len(header))
	used := make(map[string]bool, len(header))
	suffix := make(map[string]int, len(header))
	for i, name := range header {
		candidate := name
		for used[candidate] {
			suffix[name]++
			candidate = name + "." + strconv.Itoa(suffix[name])
		}
		used[candidate] = true
		cols[i] = candidate
	}
	return cols
}
