package container

import "io"

// CountingReader wraps a reader and tracks how many bytes have passed
// through, so long-running extractions can report progress against the
// known input size.
type CountingReader struct {
	r     io.Reader
	total int64
	read  int64
}

// NewCountingReader wraps r. Pass total <= 0 when the size is unknown;
// Progress then reports 0.
func NewCountingReader(r io.Reader, total int64) *CountingReader {
	return &CountingReader{r: r, total: total}
}

// Read implements io.Reader.
func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	return n, err
}

// BytesRead returns the bytes consumed so far.
func (c *CountingReader) BytesRead() int64 {
	return c.read
}

// Total returns the expected size, or 0 when unknown.
func (c *CountingReader) Total() int64 {
	if c.total < 0 {
		return 0
	}
	return c.total
}

// Progress returns the consumed fraction in [0, 1], or 0 when the size is
// unknown.
func (c *CountingReader) Progress() float64 {
	if c.total <= 0 {
		return 0
	}
	p := float64(c.read) / float64(c.total)
	if p > 1 {
		p = 1
	}
	return p
}
