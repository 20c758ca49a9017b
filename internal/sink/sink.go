// Package sink routes output records to their destinations.
//
// Each record type gets exactly one sink for the lifetime of a run; records
// are written in the order they are produced. CSV sinks derive their header
// from the first record written (the layout order survives decoding and
// transformation), so nothing is emitted for a record type that never
// appears in the input.
package sink

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/brdata/qsaextract/internal/decode"
)

// Sink receives output records for one record type.
type Sink interface {
	WriteRecord(rec decode.Record) error
	Close() error
}

// csvFile is the shared plumbing for CSV destinations: a file, an optional
// gzip layer, and the CSV framing on top.
type csvFile struct {
	file *os.File
	gz   *gzip.Writer
	w    *csv.Writer
}

func newCSVFile(path string, compress bool) (*csvFile, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}

	cf := &csvFile{file: f}
	var out io.Writer = f
	if compress {
		cf.gz = gzip.NewWriter(f)
		out = cf.gz
	}
	cf.w = csv.NewWriter(out)
	return cf, nil
}

func (c *csvFile) write(row []string) error {
	return c.w.Write(row)
}

// close flushes the CSV framing, the gzip layer and the file, reporting the
// first error while still releasing everything.
func (c *csvFile) close() error {
	c.w.Flush()
	errs := []error{c.w.Error()}
	if c.gz != nil {
		errs = append(errs, c.gz.Close())
	}
	errs = append(errs, c.file.Close())
	return errors.Join(errs...)
}

// CSVSink writes records as CSV rows, one destination file per record type.
type CSVSink struct {
	cf     *csvFile
	header []string
}

// NewCSVSink creates the destination file immediately; the header row is
// written lazily with the first record.
func NewCSVSink(path string, compress bool) (*CSVSink, error) {
	cf, err := newCSVFile(path, compress)
	if err != nil {
		return nil, err
	}
	return &CSVSink{cf: cf}, nil
}

// WriteRecord appends one record. The first record fixes the column set;
// later records are projected onto it (missing fields write as empty).
func (s *CSVSink) WriteRecord(rec decode.Record) error {
	if s.header == nil {
		s.header = append([]string(nil), rec.Fields()...)
		if err := s.cf.write(s.header); err != nil {
			return err
		}
	}

	row := make([]string, len(s.header))
	for i, name := range s.header {
		if v, ok := rec.Get(name); ok {
			row[i] = v.String()
		}
	}
	return s.cf.write(row)
}

// Close flushes and closes the destination.
func (s *CSVSink) Close() error {
	return s.cf.close()
}

// ErrorSink collects decode failures as {error, line} CSV rows in encounter
// order.
type ErrorSink struct {
	cf          *csvFile
	wroteHeader bool
}

// NewErrorSink creates the error destination.
func NewErrorSink(path string, compress bool) (*ErrorSink, error) {
	cf, err := newCSVFile(path, compress)
	if err != nil {
		return nil, err
	}
	return &ErrorSink{cf: cf}, nil
}

// WriteFailure appends one failure with its cause and the original line.
func (s *ErrorSink) WriteFailure(reason, line string) error {
	if !s.wroteHeader {
		if err := s.cf.write([]string{"error", "line"}); err != nil {
			return err
		}
		s.wroteHeader = true
	}
	return s.cf.write([]string{reason, line})
}

// Close flushes and closes the destination.
func (s *ErrorSink) Close() error {
	return s.cf.close()
}
