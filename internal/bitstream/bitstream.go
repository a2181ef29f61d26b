package bitstream

import (
	"bufio"
	"errors"
	"io"

	"github.com/icza/bitio"
)

// MaxBits is the widest code a single WriteBits call accepts.
const MaxBits = 64

// ErrTooManyBits is returned when a write asks for more than MaxBits bits.
var ErrTooManyBits = errors.New("bitstream: too many bits")

// Writer accumulates bits MSB-first and flushes whole bytes to the sink.
// Close pads the last partial byte with zeros. It does not close the sink.
type Writer struct {
	buf    *bufio.Writer
	w      *bitio.Writer
	nbits  uint64
	closed bool
}

// NewWriter returns a Writer that emits bytes to w.
func NewWriter(w io.Writer) *Writer {
	buf := bufio.NewWriter(w)
	return &Writer{
		buf: buf,
		w:   bitio.NewWriter(buf),
	}
}

// WriteBits writes the low n bits of code, most significant first.
func (w *Writer) WriteBits(code uint64, n uint8) error {
	if w.closed {
		return io.ErrClosedPipe
	}
	if n > MaxBits {
		return ErrTooManyBits
	}
	if n == 0 {
		return nil
	}
	if n < MaxBits {
		code &= (uint64(1) << n) - 1
	}
	if err := w.w.WriteBits(code, n); err != nil {
		return err
	}
	w.nbits += uint64(n)
	return nil
}

// WriteBit writes a single bit.
func (w *Writer) WriteBit(bit bool) error {
	if w.closed {
		return io.ErrClosedPipe
	}
	if err := w.w.WriteBool(bit); err != nil {
		return err
	}
	w.nbits++
	return nil
}

// BitsWritten returns the number of payload bits written so far (padding excluded).
func (w *Writer) BitsWritten() uint64 {
	return w.nbits
}

// Close pads the final byte with zero bits and flushes everything to the sink.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.w.Close(); err != nil {
		return err
	}
	return w.buf.Flush()
}

// Reader yields bits MSB-first, pulling bytes from the source on demand.
type Reader struct {
	r   *bitio.Reader
	eof bool
}

// NewReader returns a Reader over r. If r is an io.ByteReader it is used
// directly, so callers can keep reading whole bytes before handing it over.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bitio.NewReader(r)}
}

// ReadBit returns the next bit. When the source is exhausted it returns
// ok == false with a nil error; any other failure is returned as err.
func (r *Reader) ReadBit() (bit uint8, ok bool, err error) {
	if r.eof {
		return 0, false, nil
	}
	b, err := r.r.ReadBool()
	if err != nil {
		if errors.Is(err, io.EOF) {
			r.eof = true
			return 0, false, nil
		}
		return 0, false, err
	}
	if b {
		return 1, true, nil
	}
	return 0, true, nil
}
