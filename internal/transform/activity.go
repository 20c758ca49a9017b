package transform

import (
	"strings"

	"github.com/brdata/qsaextract/internal/decode"
)

// activityCodeLen is the fixed width of one packed secondary-activity code.
const activityCodeLen = 7

// SecondaryActivity expands the packed secondary-activity (CNAE) field into
// one record per code. All-zero chunks are unused slots and are discarded,
// so the result may be empty.
func SecondaryActivity(rec decode.Record) ([]decode.Record, error) {
	packed := str(rec, "cnae")

	var out []decode.Record
	for start := 0; start < len(packed); start += activityCodeLen {
		end := min(start+activityCodeLen, len(packed))
		code := packed[start:end]
		if strings.Trim(code, "0") == "" {
			continue
		}
		next := rec.Clone()
		next.Set("cnae", decode.TextValue(code))
		out = append(out, next)
	}

	return out, nil
}
