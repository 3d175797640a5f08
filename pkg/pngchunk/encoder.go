package pngchunk

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"github.com/jpfielding/pngchunk.go/pkg/pngchunk/tag"
)

// WriteFile writes the signature and chunks to a new PNG file
func WriteFile(path string, chunks ...Chunk) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return Encode(f, chunks...)
}

// Encode writes the signature followed by each chunk
func Encode(w io.Writer, chunks ...Chunk) (int64, error) {
	e, err := NewEncoder(w)
	if err != nil {
		return e.Written(), err
	}
	for _, c := range chunks {
		if err := e.WriteChunk(c); err != nil {
			return e.Written(), err
		}
	}
	return e.Written(), nil
}

// Encoder writes a PNG stream chunk by chunk
type Encoder struct {
	cw     *CountingWriter
	enc    enc
	logger *slog.Logger
}

// NewEncoder writes the PNG signature to w and returns an Encoder for the chunks
func NewEncoder(w io.Writer, opts ...Option) (*Encoder, error) {
	cw := &CountingWriter{Writer: w}
	e := &Encoder{cw: cw, enc: enc{w: cw}, logger: newOptions(opts).logger}
	if _, err := cw.Write(Signature[:]); err != nil {
		return e, fmt.Errorf("png: writing signature: %w", err)
	}
	return e, nil
}

// WriteChunk frames and writes a single chunk
func (e *Encoder) WriteChunk(c Chunk) error {
	if err := c.writeBody(&e.enc); err != nil {
		return fmt.Errorf("png: writing chunk %s: %w", c.Tag(), err)
	}
	e.logger.Debug("wrote chunk", "tag", c.Tag(), "offset", e.cw.Count.Load())
	return nil
}

// Written returns the number of bytes written so far, signature included
func (e *Encoder) Written() int64 {
	return e.cw.Count.Load()
}

// enc is the encode side framer: length and tag, body, then the CRC over tag and body
type enc struct {
	w         io.Writer
	name      tag.Tag
	remaining int
	crc       crc
}

// prepare writes the chunk header and starts the checksum over the tag
func (e *enc) prepare(length int, name tag.Tag) error {
	if length < 0 || length > LimitChunkSize {
		return &ChunkLengthError{Tag: name, Length: uint32(length), Max: LimitChunkSize}
	}
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], uint32(length))
	copy(hdr[4:], name[:])
	if _, err := e.w.Write(hdr[:]); err != nil {
		return err
	}
	e.name = name
	e.remaining = length
	e.crc = newCRC()
	e.crc.update(name[:])
	return nil
}

// write emits body bytes, they may not exceed the length given to prepare
func (e *enc) write(p []byte) error {
	if len(p) > e.remaining {
		return &ChunkSizeError{Tag: e.name, Length: len(p) - e.remaining}
	}
	if _, err := e.w.Write(p); err != nil {
		return err
	}
	e.crc.update(p)
	e.remaining -= len(p)
	return nil
}

func (e *enc) u8(v uint8) error {
	return e.write([]byte{v})
}

func (e *enc) u32(v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return e.write(b[:])
}

// str writes a NUL terminated string
func (e *enc) str(s string) error {
	if err := e.write([]byte(s)); err != nil {
		return err
	}
	return e.u8(0)
}

// writeCRC closes the chunk
func (e *enc) writeCRC() error {
	if e.remaining != 0 {
		return &ChunkSizeError{Tag: e.name, Length: e.remaining}
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], e.crc.sum())
	_, err := e.w.Write(b[:])
	return err
}

// CountingWriter tracks the bytes successfully written through it
type CountingWriter struct {
	Count  atomic.Int64
	Writer io.Writer
}

func (c *CountingWriter) Write(p []byte) (int, error) {
	n, err := c.Writer.Write(p)
	if err == nil {
		c.Count.Add(int64(n))
	}
	return n, err
}
