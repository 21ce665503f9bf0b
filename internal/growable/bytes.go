package growable

import (
	"github.com/willabides/yamlstream/internal/yamlh"
)

// Bytes is a growable byte buffer.
type Bytes struct {
	buf []byte

	// Limit is the maximum length in bytes. Zero means no limit beyond the
	// package default.
	Limit int
}

func NewBytes(size, limit int) *Bytes {
	if size <= 0 {
		size = yamlh.InitialStringSize
	}
	return &Bytes{buf: make([]byte, 0, size), Limit: limit}
}

func (b *Bytes) reserve(n int) error {
	need := len(b.buf) + n
	if need <= cap(b.buf) {
		return nil
	}
	c, ok := nextCap(cap(b.buf), need, yamlh.InitialStringSize, b.Limit)
	if !ok {
		return newMemoryError("string buffer")
	}
	buf := make([]byte, len(b.buf), c)
	copy(buf, b.buf)
	b.buf = buf
	return nil
}

// Write appends p. It implements io.Writer.
func (b *Bytes) Write(p []byte) (int, error) {
	if err := b.reserve(len(p)); err != nil {
		return 0, err
	}
	b.buf = append(b.buf, p...)
	return len(p), nil
}

func (b *Bytes) WriteByte(c byte) error {
	if err := b.reserve(1); err != nil {
		return err
	}
	b.buf = append(b.buf, c)
	return nil
}

func (b *Bytes) WriteString(s string) (int, error) {
	if err := b.reserve(len(s)); err != nil {
		return 0, err
	}
	b.buf = append(b.buf, s...)
	return len(s), nil
}

// Join appends the contents of other to b and resets other. The bytes
// already in b stay where they are unless b has to grow.
func (b *Bytes) Join(other *Bytes) error {
	if other == nil || len(other.buf) == 0 {
		return nil
	}
	if err := b.reserve(len(other.buf)); err != nil {
		return err
	}
	b.buf = append(b.buf, other.buf...)
	other.Reset()
	return nil
}

// Bytes returns the buffered bytes. The slice aliases the buffer until the
// next write or Reset.
func (b *Bytes) Bytes() []byte {
	return b.buf
}

func (b *Bytes) Len() int {
	return len(b.buf)
}

func (b *Bytes) Cap() int {
	return cap(b.buf)
}

// Available returns how many bytes can be written without growing.
func (b *Bytes) Available() int {
	return cap(b.buf) - len(b.buf)
}

func (b *Bytes) Reset() {
	b.buf = b.buf[:0]
}

func (b *Bytes) Release() {
	b.buf = nil
}
