package backlog

import (
	"ringbuf-nora-yu/pkg/ringbuf"

	deque "github.com/gammazero/deque"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var ErrBacklogFull = errors.New("backlog: pending limit reached")

// Writer is the all-or-nothing write side of a ring buffer.
type Writer interface {
	Write(p []byte) (int, error)
	Capacity() int
}

var _ Writer = &ringbuf.RingBuffer{}
var _ Writer = &ringbuf.Locked{}

// Backlog queues writes rejected for lack of space and replays them in
// order on Flush. It is not safe for concurrent use.
type Backlog struct {
	dst     Writer
	limit   int // max pending bytes, 0 means unlimited
	pending int
	queue   *deque.Deque[[]byte]
	logger  *zap.SugaredLogger
}

func New(dst Writer, limit int, logger *zap.SugaredLogger) *Backlog {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Backlog{
		dst:    dst,
		limit:  limit,
		queue:  deque.New[[]byte](),
		logger: logger,
	}
}

// Write hands p to the destination, or queues a copy of it when the
// destination has no room or older chunks are still waiting. The returned
// count is what reached the destination right away. A chunk that could not
// fit even into an empty destination is rejected instead of queued.
func (b *Backlog) Write(p []byte) (int, error) {
	if len(p) >= b.dst.Capacity() {
		return 0, errors.Wrapf(ringbuf.ErrInsufficientSpace, "write of %d bytes, capacity %d", len(p), b.dst.Capacity())
	}
	if b.queue.Len() == 0 {
		n, err := b.dst.Write(p)
		if err == nil {
			return n, nil
		}
		if !errors.Is(err, ringbuf.ErrInsufficientSpace) {
			return 0, err
		}
	}
	if err := b.enqueue(p); err != nil {
		return 0, err
	}
	return 0, nil
}

func (b *Backlog) enqueue(p []byte) error {
	if b.limit > 0 && b.pending+len(p) > b.limit {
		return errors.Wrapf(ErrBacklogFull, "%d pending, %d more", b.pending, len(p))
	}
	chunk := make([]byte, len(p))
	copy(chunk, p)
	b.queue.PushBack(chunk)
	b.pending += len(chunk)
	b.logger.Debugf("queued %d bytes, %d pending in %d chunks", len(chunk), b.pending, b.queue.Len())
	return nil
}

// Flush writes queued chunks front first until one is rejected, and returns
// the number of bytes moved into the destination.
func (b *Backlog) Flush() (int, error) {
	flushed := 0
	for b.queue.Len() > 0 {
		chunk := b.queue.Front()
		n, err := b.dst.Write(chunk)
		if err != nil {
			if errors.Is(err, ringbuf.ErrInsufficientSpace) {
				break
			}
			return flushed, err
		}
		b.queue.PopFront()
		b.pending -= n
		flushed += n
	}
	if flushed > 0 {
		b.logger.Debugf("flushed %d bytes, %d pending", flushed, b.pending)
	}
	return flushed, nil
}

// Pending returns the number of queued bytes.
func (b *Backlog) Pending() int {
	return b.pending
}

// Len returns the number of queued chunks.
func (b *Backlog) Len() int {
	return b.queue.Len()
}

// Drop discards everything queued.
func (b *Backlog) Drop() {
	b.queue.Clear()
	b.pending = 0
}
