package pngchunk

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Option configures a Decoder or an Encoder. Encoders only use WithLogger.
type Option func(*options)

type options struct {
	maxChunkSize int
	text         TextEncoding
	logger       *slog.Logger
}

// WithMaxChunkSize bounds the body length accepted for any chunk. Values
// outside 1..LimitChunkSize fall back to the nearest bound.
func WithMaxChunkSize(n int) Option {
	return func(o *options) {
		o.maxChunkSize = max(1, min(n, LimitChunkSize))
	}
}

// WithTextEncoding selects how tEXt and zTXt keywords and values are decoded
func WithTextEncoding(te TextEncoding) Option {
	return func(o *options) {
		o.text = te
	}
}

func newOptions(opts []Option) options {
	o := options{maxChunkSize: DefaultMaxChunkSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// WithLogger sets the logger used for debug output, slog.Default() otherwise
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Decoder is a PNG stream whose signature has been validated
type Decoder struct {
	r      io.Reader
	opts   options
	chunks *Chunks
}

// NewDecoder reads and checks the 8 byte signature. A mismatch returns
// ErrInvalidSignature; the reader is left just past the signature either way.
func NewDecoder(r io.Reader, opts ...Option) (*Decoder, error) {
	o := newOptions(opts)
	var sig [8]byte
	if _, err := io.ReadFull(r, sig[:]); err != nil {
		return nil, fmt.Errorf("png: reading signature: %w", err)
	}
	if sig != Signature {
		return nil, ErrInvalidSignature
	}
	return &Decoder{r: r, opts: o}, nil
}

// Chunks returns the chunk sequence for this stream. There is only one
// sequence per Decoder; repeated calls return the same value.
func (d *Decoder) Chunks() *Chunks {
	if d.chunks == nil {
		d.chunks = &Chunks{
			p:    newParser(d.r, d.opts.maxChunkSize),
			opts: d.opts,
		}
	}
	return d.chunks
}

// Decode reads a whole PNG stream, returning the chunks read before any error
func Decode(r io.Reader, opts ...Option) ([]Chunk, error) {
	d, err := NewDecoder(r, opts...)
	if err != nil {
		return nil, err
	}
	var out []Chunk
	for c, err := range d.Chunks().All() {
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ReadFile decodes every chunk of a PNG file
func ReadFile(path string, opts ...Option) ([]Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f, opts...)
}
