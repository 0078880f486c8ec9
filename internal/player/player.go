// Package player plays local audio files through oto and exposes the
// playback clock the lyrics stage animates against.
package player

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// tapBytes is how much recent PCM the tap retains for the VU strip
// (a quarter second of 16-bit stereo at 44.1kHz).
const tapBytes = 44100

// countingReader wraps the decoder, tracks output bytes read for the
// position clock, and copies everything through the PCM tap.
type countingReader struct {
	reader io.ReadSeeker
	tap    *Tap
	pos    int64
	mu     sync.Mutex
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.reader.Read(p)
	if n > 0 && cr.tap != nil {
		cr.tap.write(p[:n])
	}
	cr.mu.Lock()
	cr.pos += int64(n)
	cr.mu.Unlock()
	return n, err
}

func (cr *countingReader) Pos() int64 {
	cr.mu.Lock()
	defer cr.mu.Unlock()
	return cr.pos
}

func (cr *countingReader) SetPos(pos int64) {
	cr.mu.Lock()
	cr.pos = pos
	cr.mu.Unlock()
}

// Player decodes one local file and manages its oto playback. The
// position clock is derived from bytes pulled by the audio device, so
// it tracks what is actually audible rather than what was decoded
// ahead.
type Player struct {
	file        *os.File
	decoder     audioDecoder
	counter     *countingReader
	tap         *Tap
	otoCtx      *oto.Context
	otoPlayer   *oto.Player
	duration    time.Duration
	bytesPerSec int
	volume      float64
	paused      bool
	done        chan struct{}
	doneClosed  bool
	mu          sync.Mutex
	closed      bool
}

var (
	globalOtoCtx *oto.Context
	otoOnce      sync.Once
	otoInitErr   error
)

// initOto creates the process-wide audio context on first use; oto
// allows exactly one per process, so the first track's rate wins.
func initOto(sampleRate, channels int) (*oto.Context, error) {
	otoOnce.Do(func() {
		op := &oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatSignedInt16LE,
		}
		var ready chan struct{}
		globalOtoCtx, ready, otoInitErr = oto.NewContext(op)
		if otoInitErr == nil {
			<-ready
		}
	})
	return globalOtoCtx, otoInitErr
}

// New opens path, picks a decoder by extension and starts playback.
func New(path string) (*Player, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	dec, err := newDecoder(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	ctx, err := initOto(dec.SampleRate(), dec.ChannelCount())
	if err != nil {
		f.Close()
		return nil, err
	}

	bytesPerSec := dec.SampleRate() * dec.ChannelCount() * 2
	if bytesPerSec == 0 {
		bytesPerSec = 44100 * 2 * 2
	}
	dur := time.Duration(float64(dec.Length()) / float64(bytesPerSec) * float64(time.Second))

	tap := newTap(tapBytes)
	p := &Player{
		file:        f,
		decoder:     dec,
		counter:     &countingReader{reader: dec, tap: tap},
		tap:         tap,
		otoCtx:      ctx,
		duration:    dur,
		bytesPerSec: bytesPerSec,
		volume:      0.8,
		done:        make(chan struct{}),
	}

	p.otoPlayer = ctx.NewPlayer(p.counter)
	p.otoPlayer.SetVolume(p.volume)
	p.otoPlayer.Play()

	go p.monitor(p.done)

	return p, nil
}

// monitor closes done when the decoder has been fully consumed. The
// close happens under the mutex so it cannot race a concurrent Close.
func (p *Player) monitor(done chan struct{}) {
	for {
		p.mu.Lock()
		if p.closed || p.done != done {
			p.mu.Unlock()
			return
		}
		pos := p.counter.Pos()
		total := p.decoder.Length()
		if !p.paused && pos >= total {
			if !p.doneClosed {
				close(done)
				p.doneClosed = true
			}
			p.mu.Unlock()
			return
		}
		p.mu.Unlock()
		time.Sleep(200 * time.Millisecond)
	}
}

// Done returns a channel that closes when playback finishes.
func (p *Player) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Restart seeks to the beginning and resumes playback with a fresh
// done channel (repeat-one).
func (p *Player) Restart() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.decoder.Seek(0, io.SeekStart)
	p.counter.SetPos(0)
	p.tap.clear()

	p.otoPlayer.Pause()
	p.otoPlayer = p.otoCtx.NewPlayer(p.counter)
	p.otoPlayer.SetVolume(p.volume)

	p.done = make(chan struct{})
	p.doneClosed = false
	p.paused = false
	p.otoPlayer.Play()

	go p.monitor(p.done)
}

// TogglePause toggles between play and pause.
func (p *Player) TogglePause() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.paused {
		p.otoPlayer.Play()
		p.paused = false
	} else {
		p.otoPlayer.Pause()
		p.paused = true
	}
}

// Paused returns whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Position returns the current playback position. This is the clock
// every lyric animation derives from; it jumps on seeks and is
// otherwise monotonic within a track.
func (p *Player) Position() time.Duration {
	pos := p.counter.Pos()
	return time.Duration(float64(pos) / float64(p.bytesPerSec) * float64(time.Second))
}

// Duration returns the total duration of the track.
func (p *Player) Duration() time.Duration {
	return p.duration
}

// SeekBy moves playback by delta from the current position.
func (p *Player) SeekBy(delta time.Duration) {
	p.SeekTo(p.Position() + delta)
}

// SeekTo moves playback to an absolute position, clamped into the
// track and aligned to a sample frame. The oto player is recreated to
// flush its buffered audio; without that the old position keeps
// playing for a buffer's worth of time.
func (p *Player) SeekTo(pos time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	offset := clampSeekByteOffset(pos, p.bytesPerSec, p.decoder.Length(), 4)
	if _, err := p.decoder.Seek(offset, io.SeekStart); err != nil {
		return
	}
	p.counter.SetPos(offset)
	p.tap.clear()

	wasPaused := p.paused
	p.otoPlayer.Pause()
	p.otoPlayer = p.otoCtx.NewPlayer(p.counter)
	p.otoPlayer.SetVolume(p.volume)
	if !wasPaused {
		p.otoPlayer.Play()
	}
}

// clampSeekByteOffset converts a position to an output byte offset,
// clamped into [0, total] and aligned down to a sample frame.
func clampSeekByteOffset(pos time.Duration, bytesPerSec int, total int64, frameSize int64) int64 {
	offset := int64(pos.Seconds() * float64(bytesPerSec))
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	return offset - offset%frameSize
}

// Volume returns current volume (0.0 to 1.0).
func (p *Player) Volume() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// SetVolume sets volume (clamped to 0.0 - 1.0).
func (p *Player) SetVolume(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	p.volume = v
	p.otoPlayer.SetVolume(v)
}

// AdjustVolume adjusts volume by delta.
func (p *Player) AdjustVolume(delta float64) {
	p.mu.Lock()
	v := p.volume + delta
	p.mu.Unlock()
	p.SetVolume(v)
}

// Samples returns up to n recent interleaved 16-bit samples from the
// PCM tap, for the VU strip.
func (p *Player) Samples(n int) []int16 {
	if p.tap == nil {
		return nil
	}
	return p.tap.samples(n)
}

// Close releases all resources and releases anyone waiting on Done;
// without that, a watcher from a replaced track would block forever.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return
	}
	p.closed = true
	if p.done != nil && !p.doneClosed {
		close(p.done)
		p.doneClosed = true
	}
	if p.otoPlayer != nil {
		p.otoPlayer.Pause()
	}
	if p.file != nil {
		p.file.Close()
	}
}
