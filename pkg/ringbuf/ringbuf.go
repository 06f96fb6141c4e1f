package ringbuf

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// MaxCapacity bounds the size accepted by New.
const MaxCapacity = 1 << 30

var (
	ErrInvalidCapacity   = errors.New("ringbuf: invalid capacity")
	ErrNilBuffer         = errors.New("ringbuf: nil buffer")
	ErrClosed            = errors.New("ringbuf: buffer is closed")
	ErrInsufficientSpace = errors.New("ringbuf: insufficient space")
)

// ------|++++++++++++++++|--------------------|
//     head              tail               capacity
// head == tail means empty, so at least one byte always stays free.

// RingBuffer is a fixed size circular byte buffer. It is not safe for
// concurrent use; wrap it in a Locked when sharing between goroutines.
type RingBuffer struct {
	buff     []byte
	capacity int
	head     int
	tail     int
	closed   bool
}

var _ io.Reader = &RingBuffer{}
var _ io.Writer = &RingBuffer{}
var _ io.Closer = &RingBuffer{}

// New allocates a buffer of exactly capacity bytes with head and tail at 0.
func New(capacity int) (*RingBuffer, error) {
	if capacity < 1 || capacity > MaxCapacity {
		return nil, errors.Wrapf(ErrInvalidCapacity, "capacity %d not in [1, %d]", capacity, MaxCapacity)
	}
	return &RingBuffer{
		buff:     make([]byte, capacity),
		capacity: capacity,
	}, nil
}

// Capacity returns the fixed size of the storage.
func (rb *RingBuffer) Capacity() int {
	if rb == nil {
		return 0
	}
	return rb.capacity
}

// Readable returns the number of bytes waiting to be read.
func (rb *RingBuffer) Readable() int {
	if rb == nil {
		return 0
	}
	if rb.head == rb.tail {
		return 0
	}
	if rb.head < rb.tail {
		return rb.tail - rb.head
	}
	return rb.capacity - (rb.head - rb.tail)
}

// Writable returns the free space. A write must be strictly smaller than it.
func (rb *RingBuffer) Writable() int {
	if rb == nil {
		return 0
	}
	return rb.capacity - rb.Readable()
}

// IsEmpty reports whether head == tail.
func (rb *RingBuffer) IsEmpty() bool {
	return rb == nil || rb.head == rb.tail
}

// Read copies up to len(p) bytes into p and advances the head. Reading an
// empty buffer returns 0 and a nil error.
func (rb *RingBuffer) Read(p []byte) (int, error) {
	if rb == nil {
		return 0, ErrNilBuffer
	}
	if rb.closed {
		return 0, ErrClosed
	}

	n := min(len(p), rb.Readable())
	if n == 0 {
		return 0, nil
	}
	rb.copyOut(p[:n])
	rb.advance(n)
	return n, nil
}

// Write copies all of p into the buffer or nothing at all. It fails with
// ErrInsufficientSpace when len(p) >= Writable().
func (rb *RingBuffer) Write(p []byte) (int, error) {
	if rb == nil {
		return 0, ErrNilBuffer
	}
	if rb.closed {
		return 0, ErrClosed
	}

	count := len(p)
	if count >= rb.Writable() {
		return 0, errors.Wrapf(ErrInsufficientSpace, "write of %d bytes, %d writable", count, rb.Writable())
	}

	tailSpace := rb.capacity - rb.tail
	if count <= tailSpace {
		copy(rb.buff[rb.tail:], p)
	} else { // wraps: fill to the end, then continue from 0
		copy(rb.buff[rb.tail:], p[:tailSpace])
		copy(rb.buff, p[tailSpace:])
	}
	rb.tail = (rb.tail + count) % rb.capacity
	return count, nil
}

// Discard drops up to n readable bytes without copying them out.
func (rb *RingBuffer) Discard(n int) (int, error) {
	if rb == nil {
		return 0, ErrNilBuffer
	}
	if rb.closed {
		return 0, ErrClosed
	}
	if n < 0 {
		return 0, errors.Errorf("ringbuf: negative discard count %d", n)
	}

	n = min(n, rb.Readable())
	rb.advance(n)
	return n, nil
}

// Bytes returns a copy of the readable bytes without consuming them.
func (rb *RingBuffer) Bytes() []byte {
	n := rb.Readable()
	if n == 0 {
		return nil
	}
	buf := make([]byte, n)
	rb.copyOut(buf)
	return buf
}

// Reset empties the buffer.
func (rb *RingBuffer) Reset() {
	if rb == nil {
		return
	}
	rb.head = 0
	rb.tail = 0
}

// Close releases the storage. Later reads, writes and closes return ErrClosed.
func (rb *RingBuffer) Close() error {
	if rb == nil {
		return ErrNilBuffer
	}
	if rb.closed {
		return ErrClosed
	}
	rb.closed = true
	rb.buff = nil
	rb.head = 0
	rb.tail = 0
	return nil
}

// String summarizes the cursors for debugging.
func (rb *RingBuffer) String() string {
	if rb == nil {
		return "ringbuf<nil>"
	}
	return fmt.Sprintf("cap=%d head=%d tail=%d readable=%d", rb.capacity, rb.head, rb.tail, rb.Readable())
}

// copyOut fills buf from head onwards. len(buf) must not exceed Readable().
func (rb *RingBuffer) copyOut(buf []byte) {
	end := rb.head + len(buf)
	if end <= rb.capacity {
		copy(buf, rb.buff[rb.head:end])
		return
	}
	headBytes := copy(buf, rb.buff[rb.head:rb.capacity])
	copy(buf[headBytes:], rb.buff[:end-rb.capacity])
}

func (rb *RingBuffer) advance(n int) {
	rb.head = (rb.head + n) % rb.capacity
}
