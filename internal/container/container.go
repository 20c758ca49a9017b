// Package container opens the bulk dump for reading. The dump ships as a
// zip archive holding exactly one fixed-width file encoded in latin-1; a
// plain uncompressed file is accepted too, which is convenient for samples
// cut out of the full dump.
package container

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// Stream is an open input positioned at the first byte. Reads yield UTF-8;
// the latin-1 transcoding happens below the counter, so Progress reports
// against the raw byte size.
type Stream struct {
	r       io.Reader
	count   *CountingReader
	closers []io.Closer
}

// Open opens a dump by path, picking the container format from the
// extension.
func Open(path string) (*Stream, error) {
	if strings.EqualFold(filepath.Ext(path), ".zip") {
		return openZip(path)
	}
	return openPlain(path)
}

func openPlain(path string) (*Stream, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	count := NewCountingReader(f, info.Size())
	return &Stream{
		r:       charmap.ISO8859_1.NewDecoder().Reader(count),
		count:   count,
		closers: []io.Closer{f},
	}, nil
}

func openZip(path string) (*Stream, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if len(zr.File) != 1 {
		zr.Close()
		return nil, fmt.Errorf("%s: expected a single file in the archive, found %d", path, len(zr.File))
	}

	inner := zr.File[0]
	rc, err := inner.Open()
	if err != nil {
		zr.Close()
		return nil, fmt.Errorf("open %s in %s: %w", inner.Name, path, err)
	}

	count := NewCountingReader(rc, int64(inner.UncompressedSize64))
	return &Stream{
		r:       charmap.ISO8859_1.NewDecoder().Reader(count),
		count:   count,
		closers: []io.Closer{rc, zr},
	}, nil
}

// Read implements io.Reader over the decoded stream.
func (s *Stream) Read(p []byte) (int, error) {
	return s.r.Read(p)
}

// Progress reports the fraction of raw input bytes consumed so far.
func (s *Stream) Progress() float64 {
	return s.count.Progress()
}

// BytesRead reports the raw input bytes consumed so far.
func (s *Stream) BytesRead() int64 {
	return s.count.BytesRead()
}

// Close releases the underlying file handles.
func (s *Stream) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
