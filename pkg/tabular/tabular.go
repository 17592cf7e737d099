// Package tabular parses delimited text with a header row into ordered rows.
package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row maps a column name to its cell value.
type Row map[string]string

// Table is the parsed content of a delimited file.
// Headers keeps the column order of the header row.
type Table struct {
	Headers []string
	Rows    []Row
}

// First returns the first data row, or nil when the table has none.
func (t *Table) First() Row {
	if t == nil || len(t.Rows) == 0 {
		return nil
	}
	return t.Rows[0]
}

// Option configures the parser.
type Option func(*parser)

type parser struct {
	comma    rune
	trimCell bool
}

// WithComma sets the field delimiter. Defaults to ','.
func WithComma(r rune) Option {
	return func(p *parser) {
		p.comma = r
	}
}

// WithTrimSpace trims leading and trailing whitespace from headers and cells.
func WithTrimSpace() Option {
	return func(p *parser) {
		p.trimCell = true
	}
}

// Parse parses data whose first record is the header row.
// It returns ErrEmptyInput when there is no data row after the header
// and ErrParse when the structure can't be read.
func Parse(data []byte, opts ...Option) (*Table, error) {
	return ParseReader(bytes.NewReader(data), opts...)
}

// ParseReader is like Parse but reads from r.
func ParseReader(r io.Reader, opts ...Option) (*Table, error) {
	p := &parser{comma: ','}
	for _, opt := range opts {
		opt(p)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyInput
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.Comma = p.comma
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyInput
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	headers := p.headers(header)
	table := &Table{Headers: headers}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		if isBlank(record) {
			continue
		}

		row := make(Row, len(headers))
		for _, h := range headers {
			row[h] = ""
		}
		// Later columns with a repeated name overwrite earlier ones.
		for i, name := range header {
			if i >= len(record) {
				break
			}
			row[p.clean(name)] = p.clean(record[i])
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return nil, ErrEmptyInput
	}

	return table, nil
}

// headers returns distinct column names keeping the position of the first occurrence.
func (p *parser) headers(raw []string) []string {
	headers := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, h := range raw {
		h = p.clean(h)
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		headers = append(headers, h)
	}
	return headers
}

func (p *parser) clean(s string) string {
	if p.trimCell {
		return strings.TrimSpace(s)
	}
	return s
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
