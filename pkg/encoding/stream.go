// Package encoding provides the little-endian binary stream used by the mesh
// file format.
//
// Writer and Reader keep the first error they hit and turn every later call
// into a no-op, so a sequence of fields can be written or read and checked
// once with Err.
package encoding

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
	"golang.org/x/text/unicode/norm"
)

// Stream errors.
var (
	ErrTruncated   = errors.New("truncated stream")
	ErrLengthLimit = errors.New("length prefix exceeds limit")
)

// MaxElements bounds any length prefix accepted by Reader.
const MaxElements = 1 << 28

// Writer writes little-endian values to an io.Writer.
type Writer struct {
	w   io.Writer
	buf [8]byte
	err error
	n   int64
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Err returns the first error encountered.
func (w *Writer) Err() error { return w.err }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int64 { return w.n }

func (w *Writer) write(p []byte) {
	if w.err != nil {
		return
	}
	n, err := w.w.Write(p)
	w.n += int64(n)
	w.err = err
}

// Uint32 writes v.
func (w *Writer) Uint32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[:4], v)
	w.write(w.buf[:4])
}

// Int32 writes v.
func (w *Writer) Int32(v int32) { w.Uint32(uint32(v)) }

// Float32 writes v.
func (w *Writer) Float32(v float32) { w.Uint32(math.Float32bits(v)) }

// Float64 writes v.
func (w *Writer) Float64(v float64) {
	binary.LittleEndian.PutUint64(w.buf[:8], math.Float64bits(v))
	w.write(w.buf[:8])
}

// Bool writes v as a single byte.
func (w *Writer) Bool(v bool) {
	w.buf[0] = 0
	if v {
		w.buf[0] = 1
	}
	w.write(w.buf[:1])
}

// String writes a length-prefixed NFC-normalized UTF-8 string.
func (w *Writer) String(s string) {
	b := norm.NFC.Bytes([]byte(s))
	w.Uint32(uint32(len(b)))
	w.write(b)
}

// Floats writes a length-prefixed float32 slice.
func (w *Writer) Floats(v []float32) {
	w.Uint32(uint32(len(v)))
	if w.err != nil || len(v) == 0 {
		return
	}
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	w.write(b)
}

// Uint32s writes a length-prefixed uint32 slice.
func (w *Writer) Uint32s(v []uint32) {
	w.Uint32(uint32(len(v)))
	if w.err != nil || len(v) == 0 {
		return
	}
	b := make([]byte, 4*len(v))
	for i, u := range v {
		binary.LittleEndian.PutUint32(b[4*i:], u)
	}
	w.write(b)
}

// Ints writes a length-prefixed int slice as int32 values.
func (w *Writer) Ints(v []int) {
	w.Uint32(uint32(len(v)))
	for _, i := range v {
		w.Int32(int32(i))
	}
}

// Reader reads little-endian values from an io.Reader.
type Reader struct {
	r   io.Reader
	buf [8]byte
	err error
}

// NewReader returns a Reader on r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// Err returns the first error encountered.
func (r *Reader) Err() error { return r.err }

func (r *Reader) read(p []byte) bool {
	if r.err != nil {
		return false
	}
	if _, err := io.ReadFull(r.r, p); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			err = ErrTruncated
		}
		r.err = err
		return false
	}
	return true
}

// Uint32 reads a uint32.
func (r *Reader) Uint32() uint32 {
	if !r.read(r.buf[:4]) {
		return 0
	}
	return binary.LittleEndian.Uint32(r.buf[:4])
}

// Int32 reads an int32.
func (r *Reader) Int32() int32 { return int32(r.Uint32()) }

// Float32 reads a float32.
func (r *Reader) Float32() float32 { return math.Float32frombits(r.Uint32()) }

// Float64 reads a float64.
func (r *Reader) Float64() float64 {
	if !r.read(r.buf[:8]) {
		return 0
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(r.buf[:8]))
}

// Bool reads a single-byte boolean.
func (r *Reader) Bool() bool {
	if !r.read(r.buf[:1]) {
		return false
	}
	return r.buf[0] != 0
}

// Len reads a length prefix and checks it against MaxElements.
func (r *Reader) Len() int {
	n := r.Uint32()
	if r.err == nil && n > MaxElements {
		r.err = errors.Wrapf(ErrLengthLimit, "%d", n)
		return 0
	}
	return int(n)
}

// String reads a length-prefixed string.
func (r *Reader) String() string {
	n := r.Len()
	if n == 0 {
		return ""
	}
	b := make([]byte, n)
	if !r.read(b) {
		return ""
	}
	return string(b)
}

// Floats reads a length-prefixed float32 slice. An empty slice reads as nil.
func (r *Reader) Floats() []float32 {
	n := r.Len()
	if n == 0 {
		return nil
	}
	b := make([]byte, 4*n)
	if !r.read(b) {
		return nil
	}
	v := make([]float32, n)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v
}

// Uint32s reads a length-prefixed uint32 slice. An empty slice reads as nil.
func (r *Reader) Uint32s() []uint32 {
	n := r.Len()
	if n == 0 {
		return nil
	}
	b := make([]byte, 4*n)
	if !r.read(b) {
		return nil
	}
	v := make([]uint32, n)
	for i := range v {
		v[i] = binary.LittleEndian.Uint32(b[4*i:])
	}
	return v
}

// Ints reads a length-prefixed int32 slice.
func (r *Reader) Ints() []int {
	n := r.Len()
	if n == 0 {
		return nil
	}
	v := make([]int, 0, min(n, 4096))
	for i := 0; i < n && r.err == nil; i++ {
		v = append(v, int(r.Int32()))
	}
	if r.err != nil {
		return nil
	}
	return v
}
