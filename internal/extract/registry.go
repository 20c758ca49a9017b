package extract

import (
	"fmt"
	"path/filepath"

	"github.com/brdata/qsaextract/internal/layout"
	"github.com/brdata/qsaextract/internal/sink"
	"github.com/brdata/qsaextract/internal/transform"
)

// Entry binds one record type to its layout, its transform and its
// destination. LayoutFile and OutputName describe where the pieces come
// from and go to; Layout and Sink are filled in during assembly.
type Entry struct {
	Type       RecordType
	LayoutFile string
	OutputName string

	Layout    *layout.Layout
	Transform transform.Func
	Sink      sink.Sink
}

// Registry holds the fully assembled entries for a run.
type Registry struct {
	entries map[RecordType]*Entry
}

// NewRegistry validates and indexes the entries. Every entry must be
// complete; the dispatcher never checks again.
func NewRegistry(entries ...*Entry) (*Registry, error) {
	byType := make(map[RecordType]*Entry, len(entries))
	for _, e := range entries {
		if _, dup := byType[e.Type]; dup {
			return nil, fmt.Errorf("duplicate entry for record type %s", e.Type)
		}
		if e.Layout == nil {
			return nil, fmt.Errorf("record type %s: missing layout", e.Type)
		}
		if e.Transform == nil {
			return nil, fmt.Errorf("record type %s: missing transform", e.Type)
		}
		if e.Sink == nil {
			return nil, fmt.Errorf("record type %s: missing sink", e.Type)
		}
		byType[e.Type] = e
	}
	return &Registry{entries: byType}, nil
}

// Get returns the entry for a tag.
func (r *Registry) Get(t RecordType) (*Entry, bool) {
	e, ok := r.entries[t]
	return e, ok
}

// Entries returns the registered entries in tag order.
func (r *Registry) Entries() []*Entry {
	var out []*Entry
	for _, t := range All() {
		if e, ok := r.entries[t]; ok {
			out = append(out, e)
		}
	}
	return out
}

// LoadLayouts fills each entry's Layout from its LayoutFile under dir.
func LoadLayouts(dir string, entries []*Entry) error {
	for _, e := range entries {
		l, err := layout.ReadLayoutFile(filepath.Join(dir, e.LayoutFile))
		if err != nil {
			return fmt.Errorf("layout for %s records: %w", e.Type, err)
		}
		e.Layout = l
	}
	return nil
}

// Defaults describes the five record types of the dump: layout file,
// output name and transform. The caller loads the layouts and attaches
// sinks before building the registry.
func Defaults() []*Entry {
	return []*Entry{
		{Type: TypeHeader, LayoutFile: "header.csv", OutputName: "header", Transform: transform.Identity},
		{Type: TypeCompany, LayoutFile: "empresa.csv", OutputName: "empresa", Transform: transform.Company},
		{Type: TypePartner, LayoutFile: "socio.csv", OutputName: "socio", Transform: transform.Partner},
		{Type: TypeSecondaryActivity, LayoutFile: "cnae-secundaria.csv", OutputName: "cnae-secundaria", Transform: transform.SecondaryActivity},
		{Type: TypeTrailer, LayoutFile: "trailler.csv", OutputName: "trailler", Transform: transform.Identity},
	}
}
