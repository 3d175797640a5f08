package pngchunk

import (
	"errors"
	"io"
	"iter"

	"github.com/jpfielding/pngchunk.go/pkg/pngchunk/tag"
)

// handler decodes one chunk body. The parser is positioned at the first body byte.
type handler func(p *parser, o *options) (Chunk, error)

var handlers = map[tag.Tag]handler{
	tag.ImageHeader:    func(p *parser, _ *options) (Chunk, error) { return parseImageHeader(p) },
	tag.Palette:        func(p *parser, _ *options) (Chunk, error) { return parsePalette(p) },
	tag.ImageData:      func(p *parser, _ *options) (Chunk, error) { return parseImageData(p) },
	tag.ImageEnd:       func(p *parser, _ *options) (Chunk, error) { return parseImageEnd(p) },
	tag.Transparency:   func(p *parser, _ *options) (Chunk, error) { return parseTransparency(p) },
	tag.Gamma:          func(p *parser, _ *options) (Chunk, error) { return parseGamma(p) },
	tag.SRGB:           func(p *parser, _ *options) (Chunk, error) { return parseSRGB(p) },
	tag.Text:           func(p *parser, o *options) (Chunk, error) { return parseText(p, o.text) },
	tag.CompressedText: func(p *parser, o *options) (Chunk, error) { return parseCompressedText(p, o.text) },
}

type state int

const (
	streaming state = iota
	done
	failed
)

// Chunks is a lazy, single pass sequence of decoded chunks. Each call to Next
// reads exactly one chunk, and a chunk is only returned once its CRC has been
// verified. The first error ends the sequence. Chunks is not safe for
// concurrent use and cannot be restarted; reopen the source to decode again.
type Chunks struct {
	p     *parser
	opts  options
	state state
	err   error
	count int
}

// Next returns the next chunk, or io.EOF once the stream has ended cleanly.
// A decode error is returned once; every later call returns io.EOF and the
// error stays available from Err.
func (c *Chunks) Next() (Chunk, error) {
	if c.state != streaming {
		return nil, io.EOF
	}
	name, ok, err := c.p.prepare()
	if err != nil {
		return nil, c.fail(err)
	}
	if !ok {
		c.state = done
		c.opts.logger.Debug("png stream ended", "chunks", c.count, "palette", c.p.hasPalette())
		return nil, io.EOF
	}

	var chunk Chunk
	if h, known := handlers[name]; known {
		chunk, err = h(c.p, &c.opts)
	} else {
		var data []byte
		data, err = c.p.unknownChunk()
		chunk = &Unknown{Name: name, Data: data}
		c.opts.logger.Debug("passing through unknown chunk", "tag", name, "length", len(data), "critical", name.IsCritical())
	}
	if err != nil {
		return nil, c.fail(c.bodyError(name, err))
	}
	if err := c.p.drain(); err != nil {
		return nil, c.fail(err)
	}
	if err := c.p.checkCRC(name); err != nil {
		return nil, c.fail(err)
	}
	c.count++
	return chunk, nil
}

// bodyError settles which error a failed body decode surfaces. The rest of
// the body is consumed so the CRC can still be checked; a CRC mismatch takes
// precedence over the body error.
func (c *Chunks) bodyError(name tag.Tag, err error) error {
	if derr := c.p.drain(); derr != nil {
		return err
	}
	var crcErr *CRCError
	if cerr := c.p.checkCRC(name); errors.As(cerr, &crcErr) {
		return cerr
	}
	return err
}

func (c *Chunks) fail(err error) error {
	c.state = failed
	c.err = err
	c.opts.logger.Debug("png decode failed", "chunks", c.count, "error", err)
	return err
}

// All adapts the sequence for range loops. Iteration stops after the first error.
func (c *Chunks) All() iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		for {
			chunk, err := c.Next()
			if err == io.EOF {
				return
			}
			if !yield(chunk, err) || err != nil {
				return
			}
		}
	}
}

// Err returns the error that ended the sequence, nil after a clean end
func (c *Chunks) Err() error {
	return c.err
}

// HasPalette reports whether a PLTE chunk has been decoded so far
func (c *Chunks) HasPalette() bool {
	return c.p.hasPalette()
}

// Count returns the number of chunks returned so far
func (c *Chunks) Count() int {
	return c.count
}
