package pngchunk

import (
	"math/bits"

	"github.com/jpfielding/pngchunk.go/pkg/pngchunk/tag"
)

// ColorType is the IHDR color type byte
type ColorType uint8

const (
	// Grey allows bit depths 1, 2, 4, 8, 16
	Grey ColorType = 0
	// Rgb allows bit depths 8, 16
	Rgb ColorType = 2
	// PaletteColor allows bit depths 1, 2, 4, 8
	PaletteColor ColorType = 3
	// GreyAlpha allows bit depths 8, 16
	GreyAlpha ColorType = 4
	// Rgba allows bit depths 8, 16
	Rgba ColorType = 6
)

// String returns the color type name
func (c ColorType) String() string {
	switch c {
	case Grey:
		return "Grey"
	case Rgb:
		return "Rgb"
	case PaletteColor:
		return "Palette"
	case GreyAlpha:
		return "GreyAlpha"
	case Rgba:
		return "Rgba"
	default:
		return "Unknown"
	}
}

// MarshalText lets the color type show by name in JSON output
func (c ColorType) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func parseColorType(b uint8) (ColorType, error) {
	switch c := ColorType(b); c {
	case Grey, Rgb, PaletteColor, GreyAlpha, Rgba:
		return c, nil
	}
	return 0, &ColorTypeError{Value: b}
}

// Channels returns the samples per pixel
func (c ColorType) Channels() int {
	switch c {
	case GreyAlpha:
		return 2
	case Rgb:
		return 3
	case Rgba:
		return 4
	default:
		return 1
	}
}

// BitsPerPixel returns channels times bits per channel. Multi channel types
// only come in 8 or 16 bits per channel.
func (c ColorType) BitsPerPixel(bitDepth uint8) int {
	ch := c.Channels()
	if ch == 1 {
		return int(bitDepth)
	}
	if bitDepth == 8 {
		return ch * 8
	}
	return ch * 16
}

// CheckBitDepth returns a *ColorModeError if the pairing is not in the format's validity matrix
func (c ColorType) CheckBitDepth(bd uint8) error {
	var ok bool
	switch c {
	case Grey:
		ok = bd == 1 || bd == 2 || bd == 4 || bd == 8 || bd == 16
	case PaletteColor:
		ok = bd == 1 || bd == 2 || bd == 4 || bd == 8
	case Rgb, GreyAlpha, Rgba:
		ok = bd == 8 || bd == 16
	}
	if !ok {
		return &ColorModeError{ColorType: c, BitDepth: bd}
	}
	return nil
}

// ImageHeader is the IHDR chunk
type ImageHeader struct {
	Width     uint32    `json:"width"`
	Height    uint32    `json:"height"`
	ColorType ColorType `json:"color_type"`
	BitDepth  uint8     `json:"bit_depth"`
	// Interlace is true for Adam7
	Interlace bool `json:"interlace"`
}

func (h *ImageHeader) Tag() tag.Tag { return tag.ImageHeader }

// Validate applies the same checks as decoding, in the same order
func (h *ImageHeader) Validate() error {
	if h.Width == 0 || h.Height == 0 {
		return &DimensionError{Width: h.Width, Height: h.Height}
	}
	if h.BitDepth == 0 || h.BitDepth > 16 {
		return &BitDepthError{BitDepth: h.BitDepth}
	}
	if _, err := parseColorType(uint8(h.ColorType)); err != nil {
		return err
	}
	return h.ColorType.CheckBitDepth(h.BitDepth)
}

// BitsPerPixel returns the bits one pixel occupies in the raw buffer
func (h *ImageHeader) BitsPerPixel() int {
	return h.ColorType.BitsPerPixel(h.BitDepth)
}

// RowSize returns the bytes in one unfiltered scanline, rounded up to a whole
// byte. It cannot overflow: a 32 bit width times at most 64 bits per pixel
// fits in 38 bits.
func (h *ImageHeader) RowSize() uint64 {
	return (uint64(h.Width)*uint64(h.BitsPerPixel()) + 7) / 8
}

// RawSize returns the byte size of the unfiltered, non interlaced image
// buffer. Each scanline is padded to a byte boundary on its own. A size past
// 64 bits returns a *RawSizeError.
func (h *ImageHeader) RawSize() (uint64, error) {
	hi, lo := bits.Mul64(uint64(h.Height), h.RowSize())
	if hi != 0 {
		return 0, &RawSizeError{Width: h.Width, Height: h.Height, BitsPerPixel: h.BitsPerPixel()}
	}
	return lo, nil
}

// FlatRawSize treats the image as one continuous bit stream, with only the
// last byte padded. It differs from RawSize for sub byte depths when rows do
// not end on a byte boundary.
func (h *ImageHeader) FlatRawSize() (uint64, error) {
	bpp := uint64(h.BitsPerPixel())
	n := uint64(h.Width) * uint64(h.Height)
	hi, whole := bits.Mul64(n/8, bpp)
	size, carry := bits.Add64(whole, ((n&7)*bpp+7)/8, 0)
	if hi != 0 || carry != 0 {
		return 0, &RawSizeError{Width: h.Width, Height: h.Height, BitsPerPixel: h.BitsPerPixel()}
	}
	return size, nil
}

// parseImageHeader decodes the 13 byte IHDR body, failing on the first violated constraint
func parseImageHeader(p *parser) (Chunk, error) {
	if p.len() != imageHeaderSize {
		return nil, &ChunkSizeError{Tag: tag.ImageHeader, Length: p.len()}
	}
	width, err := p.u32()
	if err != nil {
		return nil, err
	}
	height, err := p.u32()
	if err != nil {
		return nil, err
	}
	if width == 0 || height == 0 {
		return nil, &DimensionError{Width: width, Height: height}
	}
	bitDepth, err := p.u8()
	if err != nil {
		return nil, err
	}
	if bitDepth == 0 || bitDepth > 16 {
		return nil, &BitDepthError{BitDepth: bitDepth}
	}
	b, err := p.u8()
	if err != nil {
		return nil, err
	}
	colorType, err := parseColorType(b)
	if err != nil {
		return nil, err
	}
	if err := colorType.CheckBitDepth(bitDepth); err != nil {
		return nil, err
	}
	if b, err = p.u8(); err != nil {
		return nil, err
	} else if b != 0 {
		return nil, ErrCompressionMethod
	}
	if b, err = p.u8(); err != nil {
		return nil, err
	} else if b != 0 {
		return nil, ErrFilterMethod
	}
	if b, err = p.u8(); err != nil {
		return nil, err
	}
	var interlace bool
	switch b {
	case 0:
	case 1:
		interlace = true
	default:
		return nil, ErrInterlaceMethod
	}
	return &ImageHeader{
		Width:     width,
		Height:    height,
		ColorType: colorType,
		BitDepth:  bitDepth,
		Interlace: interlace,
	}, nil
}

func (h *ImageHeader) writeBody(e *enc) error {
	if err := h.Validate(); err != nil {
		return err
	}
	var interlace uint8
	if h.Interlace {
		interlace = 1
	}
	if err := e.prepare(imageHeaderSize, tag.ImageHeader); err != nil {
		return err
	}
	if err := e.u32(h.Width); err != nil {
		return err
	}
	if err := e.u32(h.Height); err != nil {
		return err
	}
	for _, b := range []uint8{h.BitDepth, uint8(h.ColorType), 0, 0, interlace} {
		if err := e.u8(b); err != nil {
			return err
		}
	}
	return e.writeCRC()
}
