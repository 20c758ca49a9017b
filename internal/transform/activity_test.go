package transform

import (
	"strings"
	"testing"

	"github.com/brdata/qsaextract/internal/decode"
)

func activityRecord(packed string) decode.Record {
	rec := decode.NewRecord(2)
	rec.Set("cnpj", decode.IntValue(12345678000195))
	rec.Set("cnae", decode.TextValue(packed))
	return rec
}

func TestSecondaryActivity_ExpandsAndDropsZeroChunks(t *testing.T) {
	// Three 7-character chunks; the middle one is an unused all-zero slot.
	out, err := SecondaryActivity(activityRecord("123456700000000123450"))
	if err != nil {
		t.Fatalf("SecondaryActivity() error = %v", err)
	}

	if len(out) != 2 {
		t.Fatalf("got %d records, want 2", len(out))
	}
	if got := str(out[0], "cnae"); got != "1234567" {
		t.Errorf("first code = %q, want %q", got, "1234567")
	}
	if got := str(out[1], "cnae"); got != "0123450" {
		t.Errorf("second code = %q, want %q", got, "0123450")
	}

	// All other fields are shared between the expanded records.
	for _, rec := range out {
		if got := str(rec, "cnpj"); got != "12345678000195" {
			t.Errorf("cnpj = %q, want shared value", got)
		}
	}
}

func TestSecondaryActivity_AllZeroYieldsNothing(t *testing.T) {
	out, err := SecondaryActivity(activityRecord(strings.Repeat("0", 21)))
	if err != nil {
		t.Fatalf("SecondaryActivity() error = %v", err)
	}
	if len(out) != 0 {
		t.Errorf("got %d records, want 0", len(out))
	}
}

func TestSecondaryActivity_ExpandedRecordsAreIndependent(t *testing.T) {
	out, err := SecondaryActivity(activityRecord("12345670234567"))
	if err != nil {
		t.Fatalf("SecondaryActivity() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d records, want 2", len(out))
	}

	out[0].Set("cnpj", decode.TextValue("mutated"))
	if got := str(out[1], "cnae"); got != "0234567" {
		t.Errorf("second record cnae = %q", got)
	}
	if got := str(out[1], "cnpj"); got != "12345678000195" {
		t.Errorf("records share storage; cnpj = %q", got)
	}
}

func TestIdentity(t *testing.T) {
	rec := decode.NewRecord(1)
	rec.Set("a", decode.TextValue("x"))

	out, err := Identity(rec)
	if err != nil {
		t.Fatalf("Identity() error = %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d records, want 1", len(out))
	}
	if got := str(out[0], "a"); got != "x" {
		t.Errorf("a = %q, want passthrough", got)
	}
}
