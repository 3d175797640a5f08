package pngchunk

import (
	"image/color"

	"github.com/jpfielding/pngchunk.go/pkg/pngchunk/tag"
)

// Palette is the PLTE chunk
type Palette struct {
	Entries []color.RGBA `json:"entries"`
}

func (p *Palette) Tag() tag.Tag { return tag.Palette }

// parsePalette decodes 1 to 256 RGB triples and marks the session as palette bearing
func parsePalette(p *parser) (Chunk, error) {
	n := p.len()
	if n == 0 || n%3 != 0 || n/3 > 256 {
		return nil, &ChunkSizeError{Tag: tag.Palette, Length: n}
	}
	body, err := p.raw()
	if err != nil {
		return nil, err
	}
	plte := &Palette{Entries: make([]color.RGBA, n/3)}
	for i := range plte.Entries {
		plte.Entries[i] = color.RGBA{R: body[i*3], G: body[i*3+1], B: body[i*3+2], A: 0xFF}
	}
	p.setPalette(len(plte.Entries))
	return plte, nil
}

func (p *Palette) writeBody(e *enc) error {
	if len(p.Entries) == 0 || len(p.Entries) > 256 {
		return &ChunkSizeError{Tag: tag.Palette, Length: len(p.Entries) * 3}
	}
	if err := e.prepare(len(p.Entries)*3, tag.Palette); err != nil {
		return err
	}
	body := make([]byte, 0, len(p.Entries)*3)
	for _, c := range p.Entries {
		body = append(body, c.R, c.G, c.B)
	}
	if err := e.write(body); err != nil {
		return err
	}
	return e.writeCRC()
}

// Transparency is the tRNS chunk. Which form it takes depends on whether a
// palette preceded it in the stream:
//   - palette images: Alpha holds one value per leading palette entry
//   - greyscale: Key holds a single 16 bit grey sample
//   - truecolor: Key holds 16 bit red, green, blue samples
type Transparency struct {
	Alpha []uint8  `json:"alpha,omitempty"`
	Key   []uint16 `json:"key,omitempty"`
}

func (t *Transparency) Tag() tag.Tag { return tag.Transparency }

// IsPalette reports whether this is the per palette entry form
func (t *Transparency) IsPalette() bool {
	return t.Key == nil
}

func parseTransparency(p *parser) (Chunk, error) {
	n := p.len()
	if p.hasPalette() {
		if n > p.paletteSize {
			return nil, &ChunkSizeError{Tag: tag.Transparency, Length: n}
		}
		alpha, err := p.raw()
		if err != nil {
			return nil, err
		}
		return &Transparency{Alpha: alpha}, nil
	}
	if n != 2 && n != 6 {
		return nil, &ChunkSizeError{Tag: tag.Transparency, Length: n}
	}
	trns := &Transparency{Key: make([]uint16, n/2)}
	for i := range trns.Key {
		b, err := p.bytes(2)
		if err != nil {
			return nil, err
		}
		trns.Key[i] = uint16(b[0])<<8 | uint16(b[1])
	}
	return trns, nil
}

func (t *Transparency) writeBody(e *enc) error {
	if t.IsPalette() {
		if len(t.Alpha) > 256 {
			return &ChunkSizeError{Tag: tag.Transparency, Length: len(t.Alpha)}
		}
		if err := e.prepare(len(t.Alpha), tag.Transparency); err != nil {
			return err
		}
		if err := e.write(t.Alpha); err != nil {
			return err
		}
		return e.writeCRC()
	}
	if len(t.Key) != 1 && len(t.Key) != 3 {
		return &ChunkSizeError{Tag: tag.Transparency, Length: len(t.Key) * 2}
	}
	if err := e.prepare(len(t.Key)*2, tag.Transparency); err != nil {
		return err
	}
	for _, k := range t.Key {
		if err := e.write([]byte{byte(k >> 8), byte(k)}); err != nil {
			return err
		}
	}
	return e.writeCRC()
}
