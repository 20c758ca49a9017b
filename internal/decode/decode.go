// Package decode slices raw fixed-width lines into field-keyed records
// according to a layout.
//
// Decoding is pure: given the same layout and line it always produces the
// same record or the same *ParseError. A ParseError is a recoverable,
// record-level outcome — the caller routes it to an error sink and keeps
// going. Decode never returns a partially filled record.
package decode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brdata/qsaextract/internal/layout"
)

// fillerSentinel is the only non-blank content a filler field may carry.
const fillerSentinel = "9999999999999999"

// endMarker is the required content of an end-of-record field.
const endMarker = "F"

// controlReplacer blanks the filler artifacts the source encoding leaves in
// raw lines (NUL and STX) before any slicing happens.
var controlReplacer = strings.NewReplacer("\x00", " ", "\x02", " ")

// Field names with fixed roles, matched on the canonical (slugified) name.
var (
	typeTagNames = map[string]bool{
		"tipo_de_registro": true,
		"tipo_do_registro": true,
	}
	endMarkerNames = map[string]bool{
		"fim":             true,
		"fim_registro":    true,
		"fim_de_registro": true,
	}
	updateIndicatorNames = map[string]bool{
		"indicador_full_diario": true,
		"tipo_atualizacao":      true,
		"tipo_de_atualizacao":   true,
	}
)

// ParseError is a recoverable decode failure. It carries the full original
// line and a human-readable reason, never a partially decoded record.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return e.Reason
}

// Decode slices line into a record according to l.
//
// Filler, record-type, end-marker and update-indicator fields are validated
// where required and dropped from the result. Date fields (canonical name
// starting with "data_") are reformatted to YYYY-MM-DD, with the all-zero
// date mapping to empty text. Numeric fields become integers, except that a
// value containing the mask character '*' passes through as text and an
// empty value becomes null.
func Decode(l *layout.Layout, line string) (Record, error) {
	line = controlReplacer.Replace(line)

	rec := NewRecord(len(l.Fields()))
	for _, field := range l.Fields() {
		value := strings.TrimSpace(slice(line, field.Start, field.End))

		switch {
		case field.Name == "filler":
			if value != "" && value != fillerSentinel {
				return Record{}, &ParseError{Line: line, Reason: "wrong filler"}
			}
			continue
		case typeTagNames[field.Name]:
			// Redundant with the tag already used to select the layout.
			continue
		case endMarkerNames[field.Name]:
			if value != endMarker {
				return Record{}, &ParseError{Line: line, Reason: "wrong end of record"}
			}
			continue
		case updateIndicatorNames[field.Name]:
			continue
		}

		v, err := coerce(field, value, line)
		if err != nil {
			return Record{}, err
		}
		rec.Set(field.Name, v)
	}

	return rec, nil
}

// coerce applies date and numeric handling to a trimmed raw value.
func coerce(field layout.FieldSpec, value, line string) (Value, error) {
	switch {
	case strings.HasPrefix(field.Name, "data_") && value != "":
		if len(value) != 8 {
			return Value{}, &ParseError{Line: line, Reason: "wrong date size"}
		}
		date := value[:4] + "-" + value[4:6] + "-" + value[6:8]
		if date == "0000-00-00" {
			date = ""
		}
		return TextValue(date), nil

	case field.Kind == layout.Numeric && !strings.Contains(value, "*"):
		if value == "" {
			return Null(), nil
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return Value{}, &ParseError{Line: line, Reason: fmt.Sprintf("cannot convert %q to int", value)}
		}
		return IntValue(n), nil

	default:
		// Partially masked numeric identifiers stay text as well.
		return TextValue(value), nil
	}
}

// slice extracts line[start:end], tolerating lines shorter than the layout.
// Missing bytes read as empty, which the filler/end-marker checks then
// report as a structural failure.
func slice(line string, start, end int) string {
	if start >= len(line) {
		return ""
	}
	if end > len(line) {
		end = len(line)
	}
	return line[start:end]
}
