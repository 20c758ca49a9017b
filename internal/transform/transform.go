// Package transform applies the per-record-type business rules: redaction of
// personally identifiable fields, sentinel normalization and one-to-many
// record expansion.
//
// A transform takes one decoded record and returns zero or more output
// records. Errors returned here are always *RuleError values: the input
// carried a value class the rule set does not understand, and silently
// coercing it could mis-redact personal data, so the run must abort.
package transform

import (
	"fmt"

	"github.com/brdata/qsaextract/internal/decode"
)

// Func is a per-record-type transform.
type Func func(decode.Record) ([]decode.Record, error)

// RuleError is a fatal business-rule violation. It names the offending field
// and value and, when available, the record's CNPJ so the bad input can be
// located in the dump.
type RuleError struct {
	Field string
	Value string
	CNPJ  string
}

func (e *RuleError) Error() string {
	if e.CNPJ != "" {
		return fmt.Sprintf("invalid %s: %q (cnpj: %s)", e.Field, e.Value, e.CNPJ)
	}
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// Identity emits the record unchanged. Used for header and trailer records.
func Identity(rec decode.Record) ([]decode.Record, error) {
	return []decode.Record{rec}, nil
}

// str reads a field as its output string form ("" for null or absent).
func str(rec decode.Record, name string) string {
	v, _ := rec.Get(name)
	return v.String()
}
