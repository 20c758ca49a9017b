package extract

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brdata/qsaextract/internal/decode"
	"github.com/brdata/qsaextract/internal/layout"
	"github.com/brdata/qsaextract/internal/transform"
)

type memSink struct {
	records []decode.Record
	closed  bool
}

func (m *memSink) WriteRecord(rec decode.Record) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memSink) Close() error {
	m.closed = true
	return nil
}

type memFailures struct {
	reasons []string
	lines   []string
	closed  bool
}

func (m *memFailures) WriteFailure(reason, line string) error {
	m.reasons = append(m.reasons, reason)
	m.lines = append(m.lines, line)
	return nil
}

func (m *memFailures) Close() error {
	m.closed = true
	return nil
}

func mustLayout(t *testing.T, fields ...layout.FieldSpec) *layout.Layout {
	t.Helper()
	l, err := layout.New(fields)
	if err != nil {
		t.Fatalf("layout.New() error = %v", err)
	}
	return l
}

func field(name string, start, size int, kind layout.FieldKind) layout.FieldSpec {
	return layout.FieldSpec{Name: name, Start: start, Size: size, End: start + size, Kind: kind}
}

// testFixture wires two narrow record types: a header-like identity type
// with tag '0' and a company type with tag '1' so rule violations can be
// provoked.
func testFixture(t *testing.T) (*Extractor, *memSink, *memSink, *memFailures) {
	t.Helper()

	headerLayout := mustLayout(t,
		field("tipo_de_registro", 0, 1, layout.Text),
		field("nome_do_arquivo", 1, 5, layout.Text),
		field("fim", 6, 1, layout.Text),
	)
	companyLayout := mustLayout(t,
		field("tipo_de_registro", 0, 1, layout.Text),
		field("cnpj", 1, 4, layout.Numeric),
		field("opcao_pelo_simples", 5, 1, layout.Text),
		field("opcao_pelo_mei", 6, 1, layout.Text),
		field("fim", 7, 1, layout.Text),
	)

	headerSink := &memSink{}
	companySink := &memSink{}
	failures := &memFailures{}

	reg, err := NewRegistry(
		&Entry{Type: TypeHeader, OutputName: "header", Layout: headerLayout, Transform: transform.Identity, Sink: headerSink},
		&Entry{Type: TypeCompany, OutputName: "empresa", Layout: companyLayout, Transform: transform.Company, Sink: companySink},
	)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return New(reg, failures, 0), headerSink, companySink, failures
}

func TestRun_DispatchAndCounts(t *testing.T) {
	ex, headerSink, companySink, failures := testFixture(t)

	input := strings.Join([]string{
		"0ALFA F",
		"112340NF",
		"143210NF",
		"",
	}, "\n")

	res, err := ex.Run(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if res.Lines != 3 {
		t.Errorf("Lines = %d, want 3 (blank lines skipped)", res.Lines)
	}
	if len(headerSink.records) != 1 || len(companySink.records) != 2 {
		t.Errorf("sinks got %d/%d records, want 1/2", len(headerSink.records), len(companySink.records))
	}
	if res.Written[TypeHeader] != 1 || res.Written[TypeCompany] != 2 {
		t.Errorf("Written = %v", res.Written)
	}
	if res.Failures != 0 || len(failures.reasons) != 0 {
		t.Errorf("unexpected failures: %v", failures.reasons)
	}

	v, ok := companySink.records[0].Get("cnpj")
	if !ok || v.String() != "1234" {
		t.Errorf("first company cnpj = %v", v)
	}
}

func TestRun_BadLineIsIsolated(t *testing.T) {
	ex, _, companySink, failures := testFixture(t)

	// The middle line has a corrupt end marker; its neighbours must still
	// come through.
	input := strings.Join([]string{
		"112340NF",
		"143210NX",
		"156780NF",
	}, "\n")

	res, err := ex.Run(context.Background(), strings.NewReader(input))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(companySink.records) != 2 {
		t.Fatalf("got %d company records, want 2", len(companySink.records))
	}
	if res.Failures != 1 {
		t.Errorf("Failures = %d, want 1", res.Failures)
	}
	if len(failures.reasons) != 1 || failures.reasons[0] != "wrong end of record" {
		t.Errorf("failure reasons = %v", failures.reasons)
	}
	if failures.lines[0] != "143210NX" {
		t.Errorf("failure line = %q, want the original line", failures.lines[0])
	}
}

func TestRun_UnknownTagIsFatal(t *testing.T) {
	ex, _, _, _ := testFixture(t)

	res, err := ex.Run(context.Background(), strings.NewReader("512340NF\n"))
	if err == nil {
		t.Fatal("Run() accepted an unknown record type")
	}
	if !strings.Contains(err.Error(), "unknown record type") {
		t.Errorf("error = %v", err)
	}
	if res == nil || res.Lines != 1 {
		t.Errorf("result should report how far the run got: %+v", res)
	}
}

func TestRun_RuleViolationIsFatal(t *testing.T) {
	ex, _, companySink, _ := testFixture(t)

	// Second line carries tax regime '3', which has no mapping.
	input := "112340NF\n143213NF\n156780NF\n"

	_, err := ex.Run(context.Background(), strings.NewReader(input))
	var rerr *transform.RuleError
	if err == nil {
		t.Fatal("Run() did not abort on a rule violation")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error = %v, should name the failing line", err)
	}
	if !errors.As(err, &rerr) {
		t.Errorf("error chain = %v, want *transform.RuleError", err)
	}
	// The line after the violation is never processed.
	if len(companySink.records) != 1 {
		t.Errorf("got %d company records, want 1", len(companySink.records))
	}
}

func TestRun_CancelledContext(t *testing.T) {
	ex, _, _, _ := testFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Enough lines to hit a cancellation check.
	var sb strings.Builder
	for i := 0; i < 2000; i++ {
		sb.WriteString("112340NF\n")
	}

	_, err := ex.Run(ctx, strings.NewReader(sb.String()))
	if err == nil {
		t.Fatal("Run() ignored a cancelled context")
	}
	if !strings.Contains(err.Error(), "interrupted") {
		t.Errorf("error = %v", err)
	}
}

func TestClose_ClosesEverySink(t *testing.T) {
	ex, headerSink, companySink, failures := testFixture(t)

	if err := ex.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !headerSink.closed || !companySink.closed || !failures.closed {
		t.Error("not every sink was closed")
	}
}

func TestNewRegistry_RejectsIncompleteEntries(t *testing.T) {
	l := mustLayout(t, field("tipo_de_registro", 0, 1, layout.Text))

	_, err := NewRegistry(&Entry{Type: TypeHeader, Layout: l, Transform: transform.Identity})
	if err == nil || !strings.Contains(err.Error(), "missing sink") {
		t.Errorf("NewRegistry() error = %v, want missing sink", err)
	}

	_, err = NewRegistry(
		&Entry{Type: TypeHeader, Layout: l, Transform: transform.Identity, Sink: &memSink{}},
		&Entry{Type: TypeHeader, Layout: l, Transform: transform.Identity, Sink: &memSink{}},
	)
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("NewRegistry() error = %v, want duplicate entry", err)
	}
}

func TestLoadLayouts_ShippedDefaults(t *testing.T) {
	entries := Defaults()
	if err := LoadLayouts(filepath.Join("..", "..", "layouts"), entries); err != nil {
		t.Fatalf("LoadLayouts() error = %v", err)
	}
	for _, e := range entries {
		if e.Layout == nil {
			t.Errorf("entry %s has no layout", e.Type)
			continue
		}
		if e.Layout.Width() != 1200 {
			t.Errorf("entry %s: layout width = %d, want 1200", e.Type, e.Layout.Width())
		}
	}
}

func TestDefaults_CoverEveryRecordType(t *testing.T) {
	byType := make(map[RecordType]*Entry)
	for _, e := range Defaults() {
		byType[e.Type] = e
	}
	for _, rt := range All() {
		e, ok := byType[rt]
		if !ok {
			t.Errorf("no default entry for record type %s", rt)
			continue
		}
		if e.LayoutFile == "" || e.OutputName == "" || e.Transform == nil {
			t.Errorf("incomplete default entry for %s: %+v", rt, e)
		}
	}
}
