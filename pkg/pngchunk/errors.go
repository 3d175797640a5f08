package pngchunk

import (
	"errors"
	"fmt"

	"github.com/jpfielding/pngchunk.go/pkg/pngchunk/tag"
)

// Format violations without extra context
var (
	ErrInvalidSignature  = errors.New("png: invalid signature")
	ErrImageDimensions   = errors.New("png: image width and height must be nonzero")
	ErrCompressionMethod = errors.New("png: compression method must be 0")
	ErrFilterMethod      = errors.New("png: filter method must be 0")
	ErrInterlaceMethod   = errors.New("png: interlace method must be 0 or 1")
	ErrTextTerminator    = errors.New("png: text keyword is missing its terminator")
	ErrTextKeyword       = errors.New("png: text keyword contains a NUL byte")
)

// ChunkLengthError is returned when a declared length exceeds the decoder's bound.
// It is raised before any body byte is read.
type ChunkLengthError struct {
	Tag    tag.Tag
	Length uint32
	Max    int
}

func (e *ChunkLengthError) Error() string {
	return fmt.Sprintf("png: chunk %s length %d exceeds maximum %d", e.Tag, e.Length, e.Max)
}

// ChunkSizeError is returned when a body length does not fit the chunk's grammar
type ChunkSizeError struct {
	Tag    tag.Tag
	Length int
}

func (e *ChunkSizeError) Error() string {
	return fmt.Sprintf("png: chunk %s has invalid body length %d", e.Tag, e.Length)
}

// CRCError is returned when the stored checksum does not match the computed one
type CRCError struct {
	Tag      tag.Tag
	Stored   uint32
	Computed uint32
}

func (e *CRCError) Error() string {
	return fmt.Sprintf("png: chunk %s crc mismatch: stored %08x, computed %08x", e.Tag, e.Stored, e.Computed)
}

// DimensionError carries the offending image dimensions, it matches ErrImageDimensions
type DimensionError struct {
	Width, Height uint32
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%v: %dx%d", ErrImageDimensions, e.Width, e.Height)
}

func (e *DimensionError) Unwrap() error { return ErrImageDimensions }

// RawSizeError is returned when the image buffer size of a header does not fit in 64 bits
type RawSizeError struct {
	Width, Height uint32
	BitsPerPixel  int
}

func (e *RawSizeError) Error() string {
	return fmt.Sprintf("png: raw size of %dx%d at %d bits per pixel overflows", e.Width, e.Height, e.BitsPerPixel)
}

// BitDepthError is returned for a bit depth outside 1..16
type BitDepthError struct {
	BitDepth uint8
}

func (e *BitDepthError) Error() string {
	return fmt.Sprintf("png: invalid bit depth %d", e.BitDepth)
}

// ColorTypeError is returned for an unrecognized color type byte
type ColorTypeError struct {
	Value uint8
}

func (e *ColorTypeError) Error() string {
	return fmt.Sprintf("png: invalid color type %d", e.Value)
}

// ColorModeError is returned for a color type / bit depth pairing the format forbids
type ColorModeError struct {
	ColorType ColorType
	BitDepth  uint8
}

func (e *ColorModeError) Error() string {
	return fmt.Sprintf("png: bit depth %d not allowed for color type %s", e.BitDepth, e.ColorType)
}

// KeySizeError is returned when a text keyword is not 1..79 bytes long
type KeySizeError struct {
	Size int
}

func (e *KeySizeError) Error() string {
	return fmt.Sprintf("png: text keyword length %d outside 1..%d", e.Size, maxKeySize)
}

// ValueError is returned when a single byte field holds a value its chunk does not define
type ValueError struct {
	Tag   tag.Tag
	Field string
	Value uint8
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("png: chunk %s: invalid %s %d", e.Tag, e.Field, e.Value)
}
