// Package pngchunk provides a streaming, chunk level codec for PNG files.
//
// The package validates the PNG signature, frames the stream into length
// prefixed, CRC-32 checked chunks, and decodes the chunk bodies it knows
// about. Pixel payloads are never inflated or unfiltered; IDAT data is handed
// to the caller as opaque bytes together with the palette-seen signal.
//
// Basic usage:
//
//	dec, err := pngchunk.NewDecoder(f)
//	if err != nil {
//		log.Fatal(err)
//	}
//	chunks := dec.Chunks()
//	for c, err := range chunks.All() {
//		if err != nil {
//			log.Fatal(err)
//		}
//		switch c := c.(type) {
//		case *pngchunk.ImageHeader:
//			fmt.Println(c.Width, c.Height)
//		case *pngchunk.Text:
//			fmt.Println(c.Key, c.Val)
//		}
//	}
//
// Writing mirrors reading:
//
//	enc, err := pngchunk.NewEncoder(w)
//	err = enc.WriteChunk(&pngchunk.Text{Key: "Title", Val: "x"})
package pngchunk

import "github.com/jpfielding/pngchunk.go/pkg/pngchunk/tag"

// Signature is the fixed 8 byte magic every PNG stream starts with
var Signature = [8]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1A, '\n'}

const (
	// DefaultMaxChunkSize bounds the body length a decoder will accept
	DefaultMaxChunkSize = 1 << 24
	// LimitChunkSize is the largest length the format allows (2^31 - 1)
	LimitChunkSize = 1<<31 - 1

	// maxKeySize is the longest keyword a text chunk may carry
	maxKeySize = 79
	// imageHeaderSize is the fixed IHDR body length
	imageHeaderSize = 13
)

// Chunk is one decoded chunk. The set of implementations is closed:
// every tag without a dedicated type decodes to *Unknown.
type Chunk interface {
	// Tag returns the chunk type code
	Tag() tag.Tag
	// writeBody serializes the body through the encode framer
	writeBody(e *enc) error
}

// Unknown carries the raw body of a chunk this package does not interpret
type Unknown struct {
	Name tag.Tag `json:"name"`
	Data []byte  `json:"data"`
}

func (u *Unknown) Tag() tag.Tag { return u.Name }

func (u *Unknown) writeBody(e *enc) error {
	if err := e.prepare(len(u.Data), u.Name); err != nil {
		return err
	}
	if err := e.write(u.Data); err != nil {
		return err
	}
	return e.writeCRC()
}
