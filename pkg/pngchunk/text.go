package pngchunk

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/jpfielding/pngchunk.go/pkg/pngchunk/tag"
)

// TextEncoding selects how keyword and value bytes become Go strings
type TextEncoding int

const (
	// TextUTF8 keeps valid UTF-8 and replaces invalid sequences with U+FFFD
	TextUTF8 TextEncoding = iota
	// TextLatin1 decodes ISO-8859-1, the encoding the format defines for tEXt
	TextLatin1
)

func (t TextEncoding) decoder() *encoding.Decoder {
	if t == TextLatin1 {
		return charmap.ISO8859_1.NewDecoder()
	}
	return unicode.UTF8.NewDecoder()
}

// encode is the inverse of decode for Latin-1. UTF-8 strings are written as
// is, so a value that was decoded lossily does not restore its original bytes.
func (t TextEncoding) encode(s string) ([]byte, error) {
	if t == TextLatin1 {
		return charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	}
	return []byte(s), nil
}

// decode never fails: both decoders substitute rather than reject
func (t TextEncoding) decode(b []byte) string {
	s, err := t.decoder().Bytes(b)
	if err != nil {
		return string(bytes.ToValidUTF8(b, []byte("\uFFFD")))
	}
	return string(s)
}

// Text is the tEXt chunk
type Text struct {
	// Key names the value, e.g. Title or Author; 1 to 79 bytes
	Key string `json:"key"`
	Val string `json:"val"`
	// Encoding is set by the decoder and used again when the chunk is written
	Encoding TextEncoding `json:"-"`
}

func (t *Text) Tag() tag.Tag { return tag.Text }

// splitKeyword locates the keyword terminator within the first 80 bytes of body
func splitKeyword(body []byte) (key, rest []byte, err error) {
	i := bytes.IndexByte(body[:min(len(body), maxKeySize+1)], 0)
	switch {
	case i < 0 && len(body) > maxKeySize:
		size := bytes.IndexByte(body, 0)
		if size < 0 {
			size = len(body)
		}
		return nil, nil, &KeySizeError{Size: size}
	case i < 0:
		return nil, nil, ErrTextTerminator
	case i == 0:
		return nil, nil, &KeySizeError{Size: 0}
	}
	return body[:i], body[i+1:], nil
}

func checkKeyword(key string) error {
	if len(key) < 1 || len(key) > maxKeySize {
		return &KeySizeError{Size: len(key)}
	}
	if strings.IndexByte(key, 0) >= 0 {
		return ErrTextKeyword
	}
	return nil
}

func parseText(p *parser, te TextEncoding) (Chunk, error) {
	body, err := p.raw()
	if err != nil {
		return nil, err
	}
	key, val, err := splitKeyword(body)
	if err != nil {
		return nil, err
	}
	return &Text{Key: te.decode(key), Val: te.decode(val), Encoding: te}, nil
}

// encodeKeyword converts key to its stored bytes and checks them
func encodeKeyword(te TextEncoding, key string) (string, error) {
	b, err := te.encode(key)
	if err != nil {
		return "", fmt.Errorf("keyword %q: %w", key, err)
	}
	return string(b), checkKeyword(string(b))
}

func (t *Text) writeBody(e *enc) error {
	key, err := encodeKeyword(t.Encoding, t.Key)
	if err != nil {
		return err
	}
	val, err := t.Encoding.encode(t.Val)
	if err != nil {
		return fmt.Errorf("value of %q: %w", t.Key, err)
	}
	if err := e.prepare(len(key)+len(val)+1, tag.Text); err != nil {
		return err
	}
	if err := e.str(key); err != nil {
		return err
	}
	if err := e.write(val); err != nil {
		return err
	}
	return e.writeCRC()
}

// CompressedText is the zTXt chunk. The value stays compressed; inflating it
// is left to the caller.
type CompressedText struct {
	Key string `json:"key"`
	// Method is the compression method byte, only 0 (zlib) is defined
	Method uint8  `json:"method"`
	Data   []byte `json:"data"`
	// Encoding applies to Key, see Text.Encoding
	Encoding TextEncoding `json:"-"`
}

func (z *CompressedText) Tag() tag.Tag { return tag.CompressedText }

func parseCompressedText(p *parser, te TextEncoding) (Chunk, error) {
	body, err := p.raw()
	if err != nil {
		return nil, err
	}
	key, rest, err := splitKeyword(body)
	if err != nil {
		return nil, err
	}
	if len(rest) < 1 {
		return nil, &ChunkSizeError{Tag: tag.CompressedText, Length: len(body)}
	}
	if rest[0] != 0 {
		return nil, ErrCompressionMethod
	}
	return &CompressedText{Key: te.decode(key), Method: rest[0], Data: rest[1:], Encoding: te}, nil
}

func (z *CompressedText) writeBody(e *enc) error {
	key, err := encodeKeyword(z.Encoding, z.Key)
	if err != nil {
		return err
	}
	if z.Method != 0 {
		return ErrCompressionMethod
	}
	if err := e.prepare(len(key)+2+len(z.Data), tag.CompressedText); err != nil {
		return err
	}
	if err := e.str(key); err != nil {
		return err
	}
	if err := e.u8(z.Method); err != nil {
		return err
	}
	if err := e.write(z.Data); err != nil {
		return err
	}
	return e.writeCRC()
}
