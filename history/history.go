// Package history keeps a bounded, in-memory log of rendered frames.
//
// A Recorder plugs into a session with retouch.WithHistory. Each frame is
// identified by an xxHash64 digest of its pixels and edit stack, so
// repeated renders of the same state are stored once.
//
// Example:
//
//	rec := history.NewRecorder(32)
//	s := retouch.NewSession(retouch.WithHistory(rec))
//	...
//	for _, e := range rec.Entries() {
//	    fmt.Println(e.Seq, e.Hash(), e.Stack)
//	}
package history

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/gogpu/retouch"
	"github.com/gogpu/retouch/pixel"
)

// DefaultLimit is the number of entries kept when NewRecorder gets a
// non-positive limit.
const DefaultLimit = 64

// Entry is one recorded frame.
type Entry struct {
	// Seq numbers frames in recording order, starting at 1.
	Seq int

	// Digest identifies the pixels and stack of the frame.
	Digest uint64

	Stack *retouch.EditStack
	Image *pixel.Image
	Time  time.Time
}

// Hash returns Digest as 16 hex characters.
func (e Entry) Hash() string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], e.Digest)
	return hex.EncodeToString(b[:])
}

// Recorder implements retouch.HistoryRecorder. It is safe for concurrent
// use.
type Recorder struct {
	mu      sync.Mutex
	limit   int
	seq     int
	entries []Entry

	now func() time.Time
}

var _ retouch.HistoryRecorder = (*Recorder)(nil)

// NewRecorder returns a Recorder keeping the newest limit entries.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Recorder{limit: limit, now: time.Now}
}

// Record appends a frame unless it repeats the latest one. The oldest
// entry is dropped once the limit is reached. img and stack are stored by
// reference and must not be modified afterwards.
func (r *Recorder) Record(img *pixel.Image, stack *retouch.EditStack) {
	d := Digest(img, stack)

	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.entries); n > 0 && r.entries[n-1].Digest == d {
		return
	}
	r.seq++
	if len(r.entries) == r.limit {
		copy(r.entries, r.entries[1:])
		r.entries = r.entries[:len(r.entries)-1]
	}
	r.entries = append(r.entries, Entry{
		Seq:    r.seq,
		Digest: d,
		Stack:  stack,
		Image:  img,
		Time:   r.now(),
	})
}

// Len returns the number of stored entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Entries returns the stored entries, oldest first.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Latest returns the newest entry.
func (r *Recorder) Latest() (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return Entry{}, false
	}
	return r.entries[len(r.entries)-1], true
}

// Find returns the newest entry with the given digest.
func (r *Recorder) Find(digest uint64) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Digest == digest {
			return r.entries[i], true
		}
	}
	return Entry{}, false
}

// Clear drops every entry. Sequence numbers keep counting.
func (r *Recorder) Clear() {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
}

// Digest hashes the shape, pixels and stack of a frame.
func Digest(img *pixel.Image, stack *retouch.EditStack) uint64 {
	h := xxhash.New()
	var hdr [16]byte
	binary.LittleEndian.PutUint32(hdr[0:], uint32(img.Width))
	binary.LittleEndian.PutUint32(hdr[4:], uint32(img.Height))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(img.Channels))
	binary.LittleEndian.PutUint32(hdr[12:], uint32(img.Depth))
	_, _ = h.Write(hdr[:])

	switch img.Depth {
	case pixel.U8:
		_, _ = h.Write(img.Pix8)
	case pixel.U16:
		buf := make([]byte, 0, 4096)
		for _, v := range img.Pix16 {
			buf = binary.LittleEndian.AppendUint16(buf, v)
			if len(buf) == cap(buf) {
				_, _ = h.Write(buf)
				buf = buf[:0]
			}
		}
		_, _ = h.Write(buf)
	case pixel.F32:
		buf := make([]byte, 0, 4096)
		for _, v := range img.PixF {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
			if len(buf) == cap(buf) {
				_, _ = h.Write(buf)
				buf = buf[:0]
			}
		}
		_, _ = h.Write(buf)
	}

	if stack != nil {
		_, _ = h.WriteString(stack.String())
	}
	return h.Sum64()
}
