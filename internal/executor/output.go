package executor

import "strings"

const (
	defaultMaxOutputSize = 16 * 1024 // 16KB
	truncatedPrefix      = "... output truncated ...\n"
)

// limitedBuffer is a ring buffer that retains the last N bytes of command output.
type limitedBuffer struct {
	data         []byte
	head         int   // write index
	totalWritten int64 // total bytes written
}

func newLimitedBuffer(limit int) *limitedBuffer {
	if limit <= 0 {
		limit = defaultMaxOutputSize
	}
	return &limitedBuffer{
		data: make([]byte, limit),
	}
}

func (l *limitedBuffer) Write(p []byte) (n int, err error) {
	n = len(p)
	l.totalWritten += int64(n)

	// Only the tail of an oversized write can survive.
	if len(p) > len(l.data) {
		p = p[len(p)-len(l.data):]
	}
	for len(p) > 0 {
		c := copy(l.data[l.head:], p)
		l.head = (l.head + c) % len(l.data)
		p = p[c:]
	}
	return n, nil
}

func (l *limitedBuffer) WriteString(s string) (int, error) {
	return l.Write([]byte(s))
}

func (l *limitedBuffer) Truncated() bool {
	return l.totalWritten > int64(len(l.data))
}

func (l *limitedBuffer) String() string {
	if !l.Truncated() {
		return string(l.data[:l.totalWritten])
	}

	// head points at the oldest retained byte.
	var b strings.Builder
	b.Grow(len(truncatedPrefix) + len(l.data))
	b.WriteString(truncatedPrefix)
	b.Write(l.data[l.head:])
	b.Write(l.data[:l.head])
	return b.String()
}
