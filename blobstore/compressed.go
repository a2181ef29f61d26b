package blobstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// CompressionType selects the codec of a CompressedStore.
type CompressionType uint8

const (
	// CompressionNone stores payloads as-is.
	CompressionNone CompressionType = 0
	// CompressionLZ4 uses LZ4 block compression (fast).
	CompressionLZ4 CompressionType = 1
	// CompressionZSTD uses zstd (better ratio).
	CompressionZSTD CompressionType = 2
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// ParseCompressionType maps "none", "lz4" or "zstd" to a CompressionType.
func ParseCompressionType(s string) (CompressionType, error) {
	switch s {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZSTD, nil
	default:
		return 0, fmt.Errorf("blobstore: unknown compression %q", s)
	}
}

// ErrCorruptFrame is returned when a stored frame cannot be decoded.
var ErrCorruptFrame = errors.New("blobstore: corrupt compressed frame")

// frameHeaderSize is [codec u8][raw length u32].
const frameHeaderSize = 5

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() *zstd.Encoder {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder)
	}
	enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	return enc
}

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

// CompressedStore wraps a BlobStore and compresses every blob as one frame:
// [codec u8][raw length u32 big-endian][payload]. Frames whose compressed
// payload would not save at least 10% are stored with codec none.
type CompressedStore struct {
	inner       BlobStore
	compression CompressionType
}

// NewCompressedStore wraps inner.
func NewCompressedStore(inner BlobStore, compression CompressionType) *CompressedStore {
	return &CompressedStore{inner: inner, compression: compression}
}

// Open reads and decompresses the whole blob.
func (s *CompressedStore) Open(ctx context.Context, name string) (Blob, error) {
	frame, err := ReadAll(ctx, s.inner, name)
	if err != nil {
		return nil, err
	}
	data, err := DecodeFrame(frame)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &bytesBlob{data: data}, nil
}

// Create buffers writes and stores the compressed frame on Close.
func (s *CompressedStore) Create(ctx context.Context, name string) (WritableBlob, error) {
	return &compressedWritableBlob{ctx: ctx, store: s, name: name}, nil
}

// Put compresses data and writes it to the inner store.
func (s *CompressedStore) Put(ctx context.Context, name string, data []byte) error {
	frame, err := EncodeFrame(data, s.compression)
	if err != nil {
		return err
	}
	return s.inner.Put(ctx, name, frame)
}

// Delete removes a blob.
func (s *CompressedStore) Delete(ctx context.Context, name string) error {
	return s.inner.Delete(ctx, name)
}

// List lists the inner store.
func (s *CompressedStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

type compressedWritableBlob struct {
	ctx     context.Context
	store   *CompressedStore
	name    string
	buf     bytes.Buffer
	aborted bool
}

func (w *compressedWritableBlob) Write(p []byte) (int, error) {
	return w.buf.Write(p)
}

func (w *compressedWritableBlob) Sync() error {
	return nil
}

func (w *compressedWritableBlob) Close() error {
	if w.aborted {
		return os.ErrClosed
	}
	return w.store.Put(w.ctx, w.name, w.buf.Bytes())
}

// Abort drops the buffered payload; nothing reaches the inner store.
func (w *compressedWritableBlob) Abort() error {
	w.aborted = true
	w.buf.Reset()
	return nil
}

// EncodeFrame compresses data into a single frame.
func EncodeFrame(data []byte, compression CompressionType) ([]byte, error) {
	var payload []byte
	switch compression {
	case CompressionNone:
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, fmt.Errorf("blobstore: lz4: %w", err)
		}
		// n == 0 means incompressible.
		payload = buf[:n]
	case CompressionZSTD:
		enc := getZstdEncoder()
		payload = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	default:
		return nil, fmt.Errorf("blobstore: unknown compression %d", compression)
	}

	if compression == CompressionNone || len(payload) == 0 || float64(len(payload)) > float64(len(data))*0.9 {
		compression = CompressionNone
		payload = data
	}

	frame := make([]byte, frameHeaderSize+len(payload))
	frame[0] = byte(compression)
	binary.BigEndian.PutUint32(frame[1:], uint32(len(data)))
	copy(frame[frameHeaderSize:], payload)
	return frame, nil
}

// DecodeFrame reverses EncodeFrame.
func DecodeFrame(frame []byte) ([]byte, error) {
	if len(frame) < frameHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrCorruptFrame, len(frame))
	}
	rawLen := int(binary.BigEndian.Uint32(frame[1:]))
	payload := frame[frameHeaderSize:]

	switch CompressionType(frame[0]) {
	case CompressionNone:
		if len(payload) != rawLen {
			return nil, fmt.Errorf("%w: raw payload is %d bytes, header says %d", ErrCorruptFrame, len(payload), rawLen)
		}
		return payload, nil
	case CompressionLZ4:
		out := make([]byte, rawLen)
		n, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("%w: lz4: %w", ErrCorruptFrame, err)
		}
		if n != rawLen {
			return nil, fmt.Errorf("%w: lz4 produced %d bytes, want %d", ErrCorruptFrame, n, rawLen)
		}
		return out, nil
	case CompressionZSTD:
		dec := getZstdDecoder()
		defer zstdDecoderPool.Put(dec)
		out, err := dec.DecodeAll(payload, make([]byte, 0, min(rawLen, 1<<26)))
		if err != nil {
			return nil, fmt.Errorf("%w: zstd: %w", ErrCorruptFrame, err)
		}
		if len(out) != rawLen {
			return nil, fmt.Errorf("%w: zstd produced %d bytes, want %d", ErrCorruptFrame, len(out), rawLen)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown codec %d", ErrCorruptFrame, frame[0])
	}
}
