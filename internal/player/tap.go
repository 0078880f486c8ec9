package player

import "sync"

// Tap is a bounded ring of the most recent PCM bytes pulled by the
// audio device. The audio goroutine writes, the UI reads; both hold
// the mutex only long enough to copy.
type Tap struct {
	buf  []byte
	size int
	w    int
	len  int
	mu   sync.Mutex
}

func newTap(size int) *Tap {
	return &Tap{
		buf:  make([]byte, size),
		size: size,
	}
}

// write appends PCM bytes, overwriting the oldest when full.
func (t *Tap) write(p []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, b := range p {
		t.buf[t.w] = b
		t.w = (t.w + 1) % t.size
	}
	t.len += len(p)
	if t.len > t.size {
		t.len = t.size
	}
}

// samples decodes up to n of the most recent interleaved 16-bit
// little-endian samples.
func (t *Tap) samples(n int) []int16 {
	t.mu.Lock()
	defer t.mu.Unlock()

	avail := t.len / 2
	if n > avail {
		n = avail
	}
	if n == 0 {
		return nil
	}

	out := make([]int16, n)
	start := (t.w - n*2 + t.size) % t.size
	for i := 0; i < n; i++ {
		lo := t.buf[(start+i*2)%t.size]
		hi := t.buf[(start+i*2+1)%t.size]
		out[i] = int16(uint16(lo) | uint16(hi)<<8)
	}
	return out
}

// clear drops all buffered audio (used on seek, so the VU does not
// replay stale samples).
func (t *Tap) clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.w = 0
	t.len = 0
}
