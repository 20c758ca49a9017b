// Package extract drives one pass over the dump: read lines, dispatch by
// record type, decode, transform and write. Lines that fail to decode go to
// the failure sink and the pass continues; rule violations and sink errors
// abort the run.
package extract

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/brdata/qsaextract/internal/decode"
	"github.com/brdata/qsaextract/internal/logging"
)

// contextCheckInterval is how many lines pass between cancellation checks.
const contextCheckInterval = 1000

// maxLineBytes bounds the scanner buffer. Dump lines are 1200 bytes; the
// headroom covers corrupt joins of several lines, which should surface as a
// decode failure rather than a scanner error.
const maxLineBytes = 1 << 20

// progresser is what the input container's stream provides; when the reader
// has one, progress log lines include the percentage of input consumed.
type progresser interface {
	Progress() float64
}

// FailureSink receives lines that could not be decoded.
type FailureSink interface {
	WriteFailure(reason, line string) error
}

// Extractor runs extractions against an assembled registry.
type Extractor struct {
	registry      *Registry
	failures      FailureSink
	progressEvery int64
}

// New builds an extractor. progressEvery controls how often a progress line
// is logged; zero or negative disables it.
func New(registry *Registry, failures FailureSink, progressEvery int64) *Extractor {
	return &Extractor{
		registry:      registry,
		failures:      failures,
		progressEvery: progressEvery,
	}
}

// Run consumes the decoded input line by line until EOF or a fatal error.
// The returned result is valid even on error, so callers can report how far
// the run got.
func (e *Extractor) Run(ctx context.Context, r io.Reader) (*Result, error) {
	log := logging.FromContext(ctx)
	start := time.Now()
	res := &Result{
		RunID:   logging.RunID(ctx),
		Written: make(map[RecordType]int64),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		res.Lines++

		if res.Lines%contextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				res.Duration = time.Since(start)
				return res, fmt.Errorf("run interrupted at line %d: %w", res.Lines, err)
			}
		}

		tag := RecordType(line[0])
		entry, ok := e.registry.Get(tag)
		if !ok {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("line %d: unknown record type %q", res.Lines, string(tag))
		}

		rec, err := decode.Decode(entry.Layout, line)
		if err != nil {
			var perr *decode.ParseError
			if !errors.As(err, &perr) {
				res.Duration = time.Since(start)
				return res, fmt.Errorf("line %d: %w", res.Lines, err)
			}
			if werr := e.failures.WriteFailure(perr.Reason, perr.Line); werr != nil {
				res.Duration = time.Since(start)
				return res, fmt.Errorf("record failure at line %d: %w", res.Lines, werr)
			}
			res.Failures++
			continue
		}

		outs, err := entry.Transform(rec)
		if err != nil {
			res.Duration = time.Since(start)
			return res, fmt.Errorf("%s record at line %d: %w", tag, res.Lines, err)
		}
		for _, out := range outs {
			if err := entry.Sink.WriteRecord(out); err != nil {
				res.Duration = time.Since(start)
				return res, fmt.Errorf("write %s record from line %d: %w", tag, res.Lines, err)
			}
			res.Written[tag]++
		}

		if e.progressEvery > 0 && res.Lines%e.progressEvery == 0 {
			args := []any{
				"lines", res.Lines,
				"written", res.TotalWritten(),
				"failures", res.Failures,
			}
			if p, ok := r.(progresser); ok {
				args = append(args, "pct", fmt.Sprintf("%.1f", p.Progress()*100))
			}
			log.Info("progress", args...)
		}
	}
	if err := scanner.Err(); err != nil {
		res.Duration = time.Since(start)
		return res, fmt.Errorf("read input: %w", err)
	}

	res.Duration = time.Since(start)
	return res, nil
}

// Close closes every registered sink and the failure sink. Safe to call
// after a failed run; every sink gets its chance to flush.
func (e *Extractor) Close() error {
	var errs []error
	for _, entry := range e.registry.Entries() {
		errs = append(errs, entry.Sink.Close())
	}
	if c, ok := e.failures.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
