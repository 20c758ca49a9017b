package sink

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brdata/qsaextract/internal/database"
	"github.com/brdata/qsaextract/internal/decode"
)

// PostgresSink loads records into one table per record type using COPY in
// batches. Like the CSV sink, the column set is fixed by the first record,
// and the table is only created once a record actually arrives.
type PostgresSink struct {
	ctx       context.Context
	pool      *pgxpool.Pool
	table     string
	batchSize int

	columns []string
	rows    [][]any
}

// NewPostgresSink prepares a sink for the given table. The pool is shared
// across sinks and closed by the caller, not here.
func NewPostgresSink(ctx context.Context, pool *pgxpool.Pool, table string, batchSize int) *PostgresSink {
	return &PostgresSink{
		ctx:       ctx,
		pool:      pool,
		table:     table,
		batchSize: batchSize,
	}
}

// WriteRecord buffers one record, flushing a COPY batch when full.
func (s *PostgresSink) WriteRecord(rec decode.Record) error {
	if s.columns == nil {
		s.columns = append([]string(nil), rec.Fields()...)
		if err := database.EnsureTable(s.ctx, s.pool, s.table, s.columns); err != nil {
			return err
		}
	}

	row := make([]any, len(s.columns))
	for i, name := range s.columns {
		v, ok := rec.Get(name)
		if !ok || v.IsNull() {
			continue
		}
		row[i] = v.String()
	}

	s.rows = append(s.rows, row)
	if len(s.rows) >= s.batchSize {
		return s.flush()
	}
	return nil
}

func (s *PostgresSink) flush() error {
	if len(s.rows) == 0 {
		return nil
	}

	n, err := s.pool.CopyFrom(
		s.ctx,
		pgx.Identifier{s.table},
		s.columns,
		pgx.CopyFromRows(s.rows),
	)
	if err != nil {
		return fmt.Errorf("copy into %s: %w", s.table, err)
	}
	if n != int64(len(s.rows)) {
		return fmt.Errorf("copy into %s: wrote %d of %d rows", s.table, n, len(s.rows))
	}
	s.rows = s.rows[:0]
	return nil
}

// Close flushes the remaining batch. The pool stays open for other sinks.
func (s *PostgresSink) Close() error {
	return s.flush()
}
