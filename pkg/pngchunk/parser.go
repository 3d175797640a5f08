package pngchunk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/jpfielding/pngchunk.go/pkg/pngchunk/tag"
)

// parser frames a PNG stream into chunks. It owns the running checksum for
// the current chunk and the palette flag for the whole session; one parser
// maps to exactly one underlying reader.
type parser struct {
	r   io.Reader
	max int

	// per chunk
	name      tag.Tag
	length    uint32
	remaining int
	crc       crc

	// per session, entries in the last PLTE seen
	paletteSize int
}

func newParser(r io.Reader, limit int) *parser {
	return &parser{r: r, max: limit}
}

// prepare reads the next chunk header and returns its tag. ok is false only
// when the stream ends cleanly where the next length field would start.
func (p *parser) prepare() (name tag.Tag, ok bool, err error) {
	var hdr [8]byte
	if _, err := io.ReadFull(p.r, hdr[:]); err != nil {
		if err == io.EOF {
			return name, false, nil
		}
		return name, false, fmt.Errorf("png: reading chunk header: %w", err)
	}
	copy(name[:], hdr[4:])
	p.name = name
	p.length = binary.BigEndian.Uint32(hdr[:4])
	p.remaining = 0
	p.crc = newCRC()
	p.crc.update(hdr[4:])
	if int64(p.length) > int64(p.max) {
		return name, false, &ChunkLengthError{Tag: name, Length: p.length, Max: p.max}
	}
	p.remaining = int(p.length)
	return name, true, nil
}

// setPalette records that a PLTE chunk with n entries was seen. The flag is
// never cleared.
func (p *parser) setPalette(n int) {
	p.paletteSize = n
}

func (p *parser) hasPalette() bool {
	return p.paletteSize > 0
}

// len returns the declared body length of the current chunk
func (p *parser) len() int {
	return int(p.length)
}

// bytes reads exactly n body bytes and folds them into the checksum
func (p *parser) bytes(n int) ([]byte, error) {
	if n > p.remaining {
		return nil, &ChunkSizeError{Tag: p.name, Length: p.len()}
	}
	buf := make([]byte, n)
	if err := p.read(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (p *parser) read(buf []byte) error {
	if _, err := io.ReadFull(p.r, buf); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("png: reading chunk %s: %w", p.name, err)
	}
	p.crc.update(buf)
	p.remaining -= len(buf)
	return nil
}

func (p *parser) u8() (uint8, error) {
	b, err := p.bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (p *parser) u32() (uint32, error) {
	b, err := p.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// raw reads the rest of the chunk body
func (p *parser) raw() ([]byte, error) {
	return p.bytes(p.remaining)
}

// unknownChunk captures the body of a chunk without interpreting it
func (p *parser) unknownChunk() ([]byte, error) {
	return p.raw()
}

// drain consumes whatever body bytes a codec left unread, in bounded steps
func (p *parser) drain() error {
	var scratch [4096]byte
	for p.remaining > 0 {
		n := min(p.remaining, len(scratch))
		if err := p.read(scratch[:n]); err != nil {
			return err
		}
	}
	return nil
}

// checkCRC reads the trailing checksum field and compares it to the running value
func (p *parser) checkCRC(name tag.Tag) error {
	var field [4]byte
	if _, err := io.ReadFull(p.r, field[:]); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("png: reading chunk %s crc: %w", name, err)
	}
	stored := binary.BigEndian.Uint32(field[:])
	if computed := p.crc.sum(); stored != computed {
		return &CRCError{Tag: name, Stored: stored, Computed: computed}
	}
	return nil
}
