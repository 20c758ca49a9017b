package decode

// Record is a decoded fixed-width line: field values keyed by canonical
// field name, with the output order preserved from the layout.
//
// Records are transient. One is created per input line, transformed, written
// to a sink and discarded; nothing references it afterwards.
type Record struct {
	names  []string
	values map[string]Value
}

// NewRecord returns an empty record with capacity for n fields.
func NewRecord(n int) Record {
	return Record{
		names:  make([]string, 0, n),
		values: make(map[string]Value, n),
	}
}

// Fields returns the field names in output order.
// Callers must not modify the returned slice.
func (r Record) Fields() []string {
	return r.names
}

// Len returns the number of fields.
func (r Record) Len() int {
	return len(r.names)
}

// Get returns the value for name and whether the field exists.
func (r Record) Get(name string) (Value, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Set replaces the value for name, appending the field if it is new.
func (r *Record) Set(name string, v Value) {
	if _, ok := r.values[name]; !ok {
		r.names = append(r.names, name)
	}
	r.values[name] = v
}

// Delete removes the field if present.
func (r *Record) Delete(name string) {
	if _, ok := r.values[name]; !ok {
		return
	}
	delete(r.values, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i], r.names[i+1:]...)
			break
		}
	}
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	out := Record{
		names:  make([]string, len(r.names)),
		values: make(map[string]Value, len(r.values)),
	}
	copy(out.names, r.names)
	for k, v := range r.values {
		out.values[k] = v
	}
	return out
}
