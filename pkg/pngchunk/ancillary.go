package pngchunk

import (
	"github.com/jpfielding/pngchunk.go/pkg/pngchunk/tag"
)

// ImageData is one IDAT chunk. Data is the compressed payload as found on the wire.
type ImageData struct {
	Data []byte `json:"data"`
}

func (d *ImageData) Tag() tag.Tag { return tag.ImageData }

func parseImageData(p *parser) (Chunk, error) {
	data, err := p.raw()
	if err != nil {
		return nil, err
	}
	return &ImageData{Data: data}, nil
}

func (d *ImageData) writeBody(e *enc) error {
	if err := e.prepare(len(d.Data), tag.ImageData); err != nil {
		return err
	}
	if err := e.write(d.Data); err != nil {
		return err
	}
	return e.writeCRC()
}

// ImageEnd is the empty IEND chunk
type ImageEnd struct{}

func (*ImageEnd) Tag() tag.Tag { return tag.ImageEnd }

func parseImageEnd(p *parser) (Chunk, error) {
	if p.len() != 0 {
		return nil, &ChunkSizeError{Tag: tag.ImageEnd, Length: p.len()}
	}
	return &ImageEnd{}, nil
}

func (*ImageEnd) writeBody(e *enc) error {
	if err := e.prepare(0, tag.ImageEnd); err != nil {
		return err
	}
	return e.writeCRC()
}

// Gamma is the gAMA chunk, the image gamma times 100000
type Gamma struct {
	Value uint32 `json:"value"`
}

func (g *Gamma) Tag() tag.Tag { return tag.Gamma }

// Float returns the gamma as a fraction
func (g *Gamma) Float() float64 {
	return float64(g.Value) / 100000
}

func parseGamma(p *parser) (Chunk, error) {
	if p.len() != 4 {
		return nil, &ChunkSizeError{Tag: tag.Gamma, Length: p.len()}
	}
	v, err := p.u32()
	if err != nil {
		return nil, err
	}
	return &Gamma{Value: v}, nil
}

func (g *Gamma) writeBody(e *enc) error {
	if err := e.prepare(4, tag.Gamma); err != nil {
		return err
	}
	if err := e.u32(g.Value); err != nil {
		return err
	}
	return e.writeCRC()
}

// RenderingIntent is the sRGB chunk's single byte
type RenderingIntent uint8

const (
	Perceptual RenderingIntent = iota
	RelativeColorimetric
	Saturation
	AbsoluteColorimetric
)

// SRGB is the sRGB chunk
type SRGB struct {
	Intent RenderingIntent `json:"intent"`
}

func (s *SRGB) Tag() tag.Tag { return tag.SRGB }

func parseSRGB(p *parser) (Chunk, error) {
	if p.len() != 1 {
		return nil, &ChunkSizeError{Tag: tag.SRGB, Length: p.len()}
	}
	b, err := p.u8()
	if err != nil {
		return nil, err
	}
	if RenderingIntent(b) > AbsoluteColorimetric {
		return nil, &ValueError{Tag: tag.SRGB, Field: "rendering intent", Value: b}
	}
	return &SRGB{Intent: RenderingIntent(b)}, nil
}

func (s *SRGB) writeBody(e *enc) error {
	if s.Intent > AbsoluteColorimetric {
		return &ValueError{Tag: tag.SRGB, Field: "rendering intent", Value: uint8(s.Intent)}
	}
	if err := e.prepare(1, tag.SRGB); err != nil {
		return err
	}
	if err := e.u8(uint8(s.Intent)); err != nil {
		return err
	}
	return e.writeCRC()
}
