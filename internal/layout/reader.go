package layout

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Layout description CSVs use these column names, in any order.
const (
	colName  = "name"
	colSize  = "size"
	colStart = "start_column"
	colType  = "type"
)

// stripAccents decomposes characters and removes combining marks, so
// "Razão Social" slugs to razao_social.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slug normalizes a field name to a canonical identifier: lowercase ASCII
// with non-alphanumeric runs collapsed to single underscores.
func Slug(s string) string {
	if folded, _, err := transform.String(stripAccents, s); err == nil {
		s = folded
	}
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := true // suppress a leading underscore
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastUnderscore = false
		} else if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	return strings.TrimRight(b.String(), "_")
}

// ReadLayout parses a layout description CSV into a Layout.
//
// The CSV must have a header row with the columns name, size, start_column
// and type ("A" for text, "N" for numeric). start_column is 1-based; rows
// may appear in any order. Field names are slugified before storage.
func ReadLayout(r io.Reader) (*Layout, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse layout csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("layout csv has no data rows")
	}

	idx, err := headerIndex(rows[0])
	if err != nil {
		return nil, err
	}

	fields := make([]FieldSpec, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2 // 1-indexed, after header

		name := Slug(row[idx[colName]])
		if name == "" {
			return nil, fmt.Errorf("layout row %d: empty field name", line)
		}

		size, err := strconv.Atoi(strings.TrimSpace(row[idx[colSize]]))
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("layout row %d (%s): size must be a positive integer, got %q", line, name, row[idx[colSize]])
		}

		start, err := strconv.Atoi(strings.TrimSpace(row[idx[colStart]]))
		if err != nil || start <= 0 {
			return nil, fmt.Errorf("layout row %d (%s): start_column must be a positive integer, got %q", line, name, row[idx[colStart]])
		}

		var kind FieldKind
		switch strings.ToUpper(strings.TrimSpace(row[idx[colType]])) {
		case "A":
			kind = Text
		case "N":
			kind = Numeric
		default:
			return nil, fmt.Errorf("layout row %d (%s): type must be A or N, got %q", line, name, row[idx[colType]])
		}

		fields = append(fields, FieldSpec{
			Name:  name,
			Size:  size,
			Start: start - 1,
			End:   start - 1 + size,
			Kind:  kind,
		})
	}

	return New(fields)
}

// ReadLayoutFile opens and parses a layout description CSV.
func ReadLayoutFile(path string) (*Layout, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open layout %s: %w", path, err)
	}
	defer f.Close()

	l, err := ReadLayout(f)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", path, err)
	}
	return l, nil
}

// headerIndex maps the required layout columns to their positions.
func headerIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range []string{colName, colSize, colStart, colType} {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("layout csv is missing column %q", col)
		}
	}
	return idx, nil
}
