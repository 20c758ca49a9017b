package extract

import (
	"fmt"
	"time"
)

// RecordType is the tag carried in the first column of every dump line.
type RecordType byte

const (
	TypeHeader            RecordType = '0'
	TypeCompany           RecordType = '1'
	TypePartner           RecordType = '2'
	TypeSecondaryActivity RecordType = '6'
	TypeTrailer           RecordType = '9'
)

// All returns the known record types in tag order.
func All() []RecordType {
	return []RecordType{TypeHeader, TypeCompany, TypePartner, TypeSecondaryActivity, TypeTrailer}
}

func (t RecordType) String() string {
	switch t {
	case TypeHeader:
		return "header"
	case TypeCompany:
		return "empresa"
	case TypePartner:
		return "socio"
	case TypeSecondaryActivity:
		return "cnae-secundaria"
	case TypeTrailer:
		return "trailler"
	default:
		return fmt.Sprintf("unknown(%q)", string(t))
	}
}

// Result summarizes one completed run.
type Result struct {
	RunID    string
	Lines    int64
	Written  map[RecordType]int64
	Failures int64
	Duration time.Duration
}

// TotalWritten sums the per-type output counts.
func (r *Result) TotalWritten() int64 {
	var n int64
	for _, c := range r.Written {
		n += c
	}
	return n
}
