package ringbuf

import "sync"

// Locked serializes every call on a RingBuffer with a mutex, for one
// producer and one consumer running on different goroutines.
type Locked struct {
	rb   *RingBuffer
	lock sync.Mutex
}

func NewLocked(capacity int) (*Locked, error) {
	rb, err := New(capacity)
	if err != nil {
		return nil, err
	}
	return &Locked{rb: rb}, nil
}

// Wrap guards an existing buffer. The caller must stop using rb directly.
func Wrap(rb *RingBuffer) *Locked {
	return &Locked{rb: rb}
}

func (l *Locked) Capacity() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.rb.Capacity()
}

func (l *Locked) Readable() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.rb.Readable()
}

func (l *Locked) Writable() int {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.rb.Writable()
}

func (l *Locked) IsEmpty() bool {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.rb.IsEmpty()
}

func (l *Locked) Read(p []byte) (int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.rb.Read(p)
}

func (l *Locked) Write(p []byte) (int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.rb.Write(p)
}

func (l *Locked) Discard(n int) (int, error) {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.rb.Discard(n)
}

func (l *Locked) Bytes() []byte {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.rb.Bytes()
}

func (l *Locked) Reset() {
	l.lock.Lock()
	defer l.lock.Unlock()
	l.rb.Reset()
}

func (l *Locked) Close() error {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.rb.Close()
}

func (l *Locked) String() string {
	l.lock.Lock()
	defer l.lock.Unlock()
	return l.rb.String()
}
