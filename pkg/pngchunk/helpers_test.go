package pngchunk

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"
)

// rawChunk frames body by hand, independently of the encoder
func rawChunk(name string, body []byte) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.BigEndian, uint32(len(body)))
	buf.WriteString(name)
	buf.Write(body)
	binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(append([]byte(name), body...)))
	return buf.Bytes()
}

func stream(chunks ...[]byte) []byte {
	out := append([]byte{}, Signature[:]...)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

func ihdrBody(width, height uint32, bitDepth, colorType, compression, filter, interlace uint8) []byte {
	b := make([]byte, 13)
	binary.BigEndian.PutUint32(b[0:], width)
	binary.BigEndian.PutUint32(b[4:], height)
	b[8] = bitDepth
	b[9] = colorType
	b[10] = compression
	b[11] = filter
	b[12] = interlace
	return b
}

// countingReader records how many bytes were pulled from the source
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}
