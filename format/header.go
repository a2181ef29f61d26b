package format

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/pkcc/codebook"
)

// Magic identifies a PKCC container.
const Magic = "PKCC"

// Version is the container version written by this package.
const Version uint16 = 3

// HeaderSize is the size of the fixed header in bytes.
const HeaderSize = 18

var (
	// ErrBadMagic is returned when a stream does not start with Magic.
	ErrBadMagic = errors.New("format: bad magic")
	// ErrTruncated is returned when a stream ends before the container does.
	ErrTruncated = errors.New("format: truncated stream")
	// ErrInvalidHeader is returned for header fields that cannot describe a valid image.
	ErrInvalidHeader = errors.New("format: invalid header")
	// ErrUnsupported is returned when an image cannot be represented in the container.
	ErrUnsupported = errors.New("format: image not representable")
)

// Header is the fixed-size container prefix.
type Header struct {
	Version      uint16 `json:"version"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	BlockWidth   int    `json:"block_width"`
	BlockHeight  int    `json:"block_height"`
	CodebookSize int    `json:"codebook_size"`
}

// BlocksX returns the number of full block columns.
func (h *Header) BlocksX() int { return h.Width / h.BlockWidth }

// BlocksY returns the number of full block rows.
func (h *Header) BlocksY() int { return h.Height / h.BlockHeight }

// TotalBlocks returns the number of coded blocks.
func (h *Header) TotalBlocks() int { return h.BlocksX() * h.BlocksY() }

// VectorLength returns BlockWidth*BlockHeight.
func (h *Header) VectorLength() int { return h.BlockWidth * h.BlockHeight }

func (h *Header) validate() error {
	if h.Width < 0 || h.Height < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrInvalidHeader, h.Width, h.Height)
	}
	if h.BlockWidth <= 0 || h.BlockHeight <= 0 {
		return fmt.Errorf("%w: block size %dx%d", ErrInvalidHeader, h.BlockWidth, h.BlockHeight)
	}
	if h.CodebookSize < 1 || h.CodebookSize > codebook.MaxSize {
		return fmt.Errorf("%w: codebook size %d not in [1,%d]", ErrInvalidHeader, h.CodebookSize, codebook.MaxSize)
	}
	return nil
}

func (h *Header) marshal() []byte {
	buf := make([]byte, HeaderSize)
	copy(buf, Magic)
	binary.BigEndian.PutUint16(buf[4:], h.Version)
	binary.BigEndian.PutUint32(buf[6:], uint32(int32(h.Width)))
	binary.BigEndian.PutUint32(buf[10:], uint32(int32(h.Height)))
	buf[14] = uint8(h.BlockWidth)
	buf[15] = uint8(h.BlockHeight)
	binary.BigEndian.PutUint16(buf[16:], uint16(h.CodebookSize))
	return buf
}

// ReadHeader reads and validates the fixed header. It does not check the
// version; see Read for the mismatch policy.
func ReadHeader(r io.Reader) (*Header, error) {
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(r, buf[:len(Magic)]); err != nil {
		return nil, truncated("magic", err)
	}
	if string(buf[:len(Magic)]) != Magic {
		return nil, fmt.Errorf("%w: %q", ErrBadMagic, buf[:len(Magic)])
	}
	if _, err := io.ReadFull(r, buf[len(Magic):]); err != nil {
		return nil, truncated("header", err)
	}
	h := &Header{
		Version:      binary.BigEndian.Uint16(buf[4:]),
		Width:        int(int32(binary.BigEndian.Uint32(buf[6:]))),
		Height:       int(int32(binary.BigEndian.Uint32(buf[10:]))),
		BlockWidth:   int(buf[14]),
		BlockHeight:  int(buf[15]),
		CodebookSize: int(binary.BigEndian.Uint16(buf[16:])),
	}
	if err := h.validate(); err != nil {
		return nil, err
	}
	return h, nil
}

func headerFor(width, height, blockWidth, blockHeight, size int) (*Header, error) {
	if width > math.MaxInt32 || height > math.MaxInt32 {
		return nil, fmt.Errorf("%w: size %dx%d exceeds int32", ErrUnsupported, width, height)
	}
	if blockWidth > math.MaxUint8 || blockHeight > math.MaxUint8 {
		return nil, fmt.Errorf("%w: block size %dx%d exceeds %d", ErrUnsupported, blockWidth, blockHeight, math.MaxUint8)
	}
	h := &Header{
		Version:      Version,
		Width:        width,
		Height:       height,
		BlockWidth:   blockWidth,
		BlockHeight:  blockHeight,
		CodebookSize: size,
	}
	if err := h.validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupported, err)
	}
	return h, nil
}

// truncated maps a short read to ErrTruncated and passes other errors through.
func truncated(what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: reading %s", ErrTruncated, what)
	}
	return fmt.Errorf("format: reading %s: %w", what, err)
}
