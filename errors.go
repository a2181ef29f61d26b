package pkcc

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pkcc/codebook"
	"github.com/hupe1980/pkcc/format"
	"github.com/hupe1980/pkcc/internal/huffman"
	"github.com/hupe1980/pkcc/internal/kmeans"
	"github.com/hupe1980/pkcc/internal/sampling"
	"github.com/hupe1980/pkcc/model"
)

var (
	// ErrMalformedInput marks errors caused by a container or encoded image
	// that cannot be decoded. The underlying error stays in the chain.
	ErrMalformedInput = errors.New("pkcc: malformed input")

	// ErrInvalidArgument marks precondition violations such as an empty
	// training set or an out-of-range parameter.
	ErrInvalidArgument = errors.New("pkcc: invalid argument")
)

// Sentinels of internal packages that callers may want to match.
var (
	ErrEmptyTrainingSet  = kmeans.ErrEmptyTrainingSet
	ErrInvalidBlockSize  = sampling.ErrInvalidBlockSize
	ErrInvalidSampleRate = sampling.ErrInvalidSampleRate
	ErrUnexpectedEOF     = huffman.ErrUnexpectedEOF
	ErrCorruptCode       = huffman.ErrCorrupt
	ErrIndexOutOfRange   = model.ErrIndexOutOfRange
)

// ErrDimensionMismatch indicates a vector whose length differs from the
// codebook's block size.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	// Malformed input.
	switch {
	case errors.Is(err, format.ErrBadMagic),
		errors.Is(err, format.ErrTruncated),
		errors.Is(err, format.ErrInvalidHeader),
		errors.Is(err, huffman.ErrUnexpectedEOF),
		errors.Is(err, huffman.ErrCorrupt),
		errors.Is(err, model.ErrIndexOutOfRange):
		return fmt.Errorf("%w: %w", ErrMalformedInput, err)
	}

	var dm *codebook.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}

	// Preconditions.
	switch {
	case errors.Is(err, kmeans.ErrEmptyTrainingSet),
		errors.Is(err, kmeans.ErrInvalidConfig),
		errors.Is(err, sampling.ErrInvalidBlockSize),
		errors.Is(err, sampling.ErrInvalidSampleRate),
		errors.Is(err, huffman.ErrNoSymbols),
		errors.Is(err, huffman.ErrCodeTooLong),
		errors.Is(err, codebook.ErrInvalidCodebook),
		errors.Is(err, model.ErrInvalidImage),
		errors.Is(err, format.ErrUnsupported):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	return err
}
