// Package layout loads and validates the field-layout descriptions that
// drive fixed-width record decoding.
//
// A layout is built once per record type at startup from a small CSV file
// (columns: name, size, start_column, type) and is immutable afterwards.
// Spans must tile the record contiguously once sorted by start column; any
// gap, overlap, or missing size is a construction error so a bad layout is
// caught before the first input line is read.
package layout

import (
	"fmt"
	"sort"
)

// FieldKind is the declared type of a field in a layout description.
type FieldKind int

const (
	// Text fields ("A" in the description) are kept as trimmed strings.
	Text FieldKind = iota
	// Numeric fields ("N" in the description) are coerced to integers.
	Numeric
)

// String returns the description code for the kind.
func (k FieldKind) String() string {
	if k == Numeric {
		return "N"
	}
	return "A"
}

// FieldSpec describes a single fixed-width field.
// Start is 0-based inclusive, End exclusive, and End-Start == Size.
type FieldSpec struct {
	Name  string
	Size  int
	Start int
	End   int
	Kind  FieldKind
}

// Layout is the ordered field-span description for one record type.
// It is immutable once constructed and is shared read-only across all lines
// of its type.
type Layout struct {
	fields []FieldSpec
}

// Fields returns the descriptors in span order.
// Callers must not modify the returned slice.
func (l *Layout) Fields() []FieldSpec {
	return l.fields
}

// Width returns the total number of bytes the layout covers.
func (l *Layout) Width() int {
	if len(l.fields) == 0 {
		return 0
	}
	return l.fields[len(l.fields)-1].End
}

// New constructs a Layout from field descriptors.
// Descriptors may be supplied in any order; they are sorted by Start.
// Returns an error if any size or position is non-positive, if a retained
// name repeats, or if the sorted spans do not tile contiguously from 0.
func New(fields []FieldSpec) (*Layout, error) {
	if len(fields) == 0 {
		return nil, fmt.Errorf("layout has no fields")
	}

	sorted := make([]FieldSpec, len(fields))
	copy(sorted, fields)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	seen := make(map[string]bool, len(sorted))
	offset := 0
	for _, f := range sorted {
		if f.Name == "" {
			return nil, fmt.Errorf("layout field at position %d has no name", f.Start+1)
		}
		if f.Size <= 0 {
			return nil, fmt.Errorf("field %q: size must be positive, got %d", f.Name, f.Size)
		}
		if f.Start < 0 {
			return nil, fmt.Errorf("field %q: start must be non-negative, got %d", f.Name, f.Start)
		}
		if f.End != f.Start+f.Size {
			return nil, fmt.Errorf("field %q: end %d does not match start %d + size %d", f.Name, f.End, f.Start, f.Size)
		}
		if f.Start != offset {
			return nil, fmt.Errorf("field %q starts at %d, expected %d (spans must tile contiguously)", f.Name, f.Start, offset)
		}
		// Filler padding may legitimately appear more than once per record;
		// every other name must be unique since decoded fields are keyed by it.
		if f.Name != "filler" {
			if seen[f.Name] {
				return nil, fmt.Errorf("duplicate field name %q", f.Name)
			}
			seen[f.Name] = true
		}
		offset = f.End
	}

	return &Layout{fields: sorted}, nil
}
