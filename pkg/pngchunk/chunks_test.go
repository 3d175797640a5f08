package pngchunk

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/pngchunk.go/pkg/pngchunk/tag"
)

func TestInvalidSignature(t *testing.T) {
	data := stream(rawChunk("IEND", nil))
	data[1] = 'Q'
	_, err := NewDecoder(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrInvalidSignature)

	_, err = Decode(bytes.NewReader([]byte("GIF89a\x00\x00rest")))
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestShortSignature(t *testing.T) {
	_, err := NewDecoder(bytes.NewReader(Signature[:5]))
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestMixedStream(t *testing.T) {
	data := stream(
		rawChunk("IHDR", ihdrBody(4, 4, 8, 6, 0, 0, 0)),
		rawChunk("tEXt", []byte("Title\x00Test image")),
		rawChunk("prVt", []byte{1, 2, 3}),
	)
	dec, err := NewDecoder(bytes.NewReader(data))
	require.NoError(t, err)
	chunks := dec.Chunks()

	c, err := chunks.Next()
	require.NoError(t, err)
	assert.Equal(t, &ImageHeader{Width: 4, Height: 4, ColorType: Rgba, BitDepth: 8}, c)

	c, err = chunks.Next()
	require.NoError(t, err)
	assert.Equal(t, &Text{Key: "Title", Val: "Test image"}, c)

	c, err = chunks.Next()
	require.NoError(t, err)
	assert.Equal(t, &Unknown{Name: tag.New("prVt"), Data: []byte{1, 2, 3}}, c)

	_, err = chunks.Next()
	assert.Equal(t, io.EOF, err)
	assert.NoError(t, chunks.Err())
	assert.Equal(t, 3, chunks.Count())
	assert.False(t, chunks.HasPalette())
}

func TestEmptyStreamEndsCleanly(t *testing.T) {
	chunks, err := Decode(bytes.NewReader(Signature[:]))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestTruncation(t *testing.T) {
	full := stream(rawChunk("tEXt", []byte("Title\x00abc")))
	// every cut inside the chunk is an I/O failure, never a clean end
	for cut := len(Signature) + 1; cut < len(full); cut++ {
		t.Run(fmt.Sprint(cut), func(t *testing.T) {
			chunks, err := Decode(bytes.NewReader(full[:cut]))
			assert.Empty(t, chunks)
			assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
		})
	}
}

func TestBitFlipFailsCRC(t *testing.T) {
	first := rawChunk("IHDR", ihdrBody(16, 16, 8, 3, 0, 0, 0))
	for _, tc := range []struct {
		name string
		body []byte
	}{
		{"tEXt", []byte("Title\x00abc")},
		{"IHDR", ihdrBody(16, 16, 8, 3, 0, 0, 0)},
		{"PLTE", []byte{1, 2, 3, 4, 5, 6}},
		{"abCd", []byte{9, 8, 7}},
	} {
		second := rawChunk(tc.name, tc.body)
		for i := range tc.body {
			for bit := 0; bit < 8; bit++ {
				t.Run(fmt.Sprintf("%s/%d/%d", tc.name, i, bit), func(t *testing.T) {
					corrupt := append([]byte{}, second...)
					corrupt[8+i] ^= 1 << bit
					data := stream(first, corrupt, rawChunk("IEND", nil))

					chunks, err := Decode(bytes.NewReader(data))
					var crcErr *CRCError
					require.ErrorAs(t, err, &crcErr)
					assert.Equal(t, tag.New(tc.name), crcErr.Tag)
					require.Len(t, chunks, 1, "chunks before the corrupt one survive")
					assert.IsType(t, &ImageHeader{}, chunks[0])
				})
			}
		}
	}
}

func TestCRCFieldMismatch(t *testing.T) {
	c := rawChunk("IEND", nil)
	c[len(c)-1] ^= 0xFF
	_, err := Decode(bytes.NewReader(stream(c)))
	var crcErr *CRCError
	require.ErrorAs(t, err, &crcErr)
	assert.Equal(t, tag.ImageEnd, crcErr.Tag)
	assert.Equal(t, uint32(0xAE426082), crcErr.Computed)
}

func TestChunkLengthRejectedBeforeBody(t *testing.T) {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], 17)
	copy(hdr[4:], "IDAT")
	data := append(stream(hdr[:]), make([]byte, 64)...)

	cr := &countingReader{r: bytes.NewReader(data)}
	_, err := Decode(cr, WithMaxChunkSize(16))
	var le *ChunkLengthError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, tag.ImageData, le.Tag)
	assert.Equal(t, uint32(17), le.Length)
	assert.Equal(t, 16, le.Max)
	assert.Equal(t, len(Signature)+8, cr.n, "no body byte may be consumed")
}

func TestChunkLengthDefaultBound(t *testing.T) {
	var hdr [8]byte
	binary.BigEndian.PutUint32(hdr[:4], 0xFFFFFFFF)
	copy(hdr[4:], "IDAT")
	_, err := Decode(bytes.NewReader(stream(hdr[:])))
	var le *ChunkLengthError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, DefaultMaxChunkSize, le.Max)
}

func TestSequenceStopsAfterError(t *testing.T) {
	data := stream(
		rawChunk("IHDR", ihdrBody(0, 1, 8, 0, 0, 0, 0)),
		rawChunk("IEND", nil),
	)
	dec, err := NewDecoder(bytes.NewReader(data))
	require.NoError(t, err)
	chunks := dec.Chunks()
	_, err = chunks.Next()
	assert.ErrorIs(t, err, ErrImageDimensions)
	_, err = chunks.Next()
	assert.Equal(t, io.EOF, err)
	assert.ErrorIs(t, chunks.Err(), ErrImageDimensions)
	assert.Same(t, chunks, dec.Chunks())
}

func TestAllYieldsErrorOnce(t *testing.T) {
	bad := rawChunk("IEND", nil)
	bad[len(bad)-2] ^= 1
	dec, err := NewDecoder(bytes.NewReader(stream(rawChunk("IHDR", ihdrBody(1, 1, 1, 0, 0, 0, 0)), bad)))
	require.NoError(t, err)

	var got []Chunk
	var errs []error
	for c, err := range dec.Chunks().All() {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		got = append(got, c)
	}
	assert.Len(t, got, 1)
	require.Len(t, errs, 1)
	var crcErr *CRCError
	assert.ErrorAs(t, errs[0], &crcErr)
}

func TestPaletteThreading(t *testing.T) {
	t.Run("PaletteForm", func(t *testing.T) {
		data := stream(
			rawChunk("IHDR", ihdrBody(2, 2, 8, 3, 0, 0, 0)),
			rawChunk("PLTE", []byte{255, 0, 0, 0, 255, 0, 0, 0, 255}),
			rawChunk("tRNS", []byte{0, 128}),
			rawChunk("IDAT", []byte{0x78, 0x01}),
			rawChunk("IEND", nil),
		)
		dec, err := NewDecoder(bytes.NewReader(data))
		require.NoError(t, err)
		chunks := dec.Chunks()
		var all []Chunk
		for c, err := range chunks.All() {
			require.NoError(t, err)
			all = append(all, c)
		}
		require.Len(t, all, 5)
		assert.True(t, chunks.HasPalette())
		plte := all[1].(*Palette)
		assert.Len(t, plte.Entries, 3)
		assert.Equal(t, uint8(255), plte.Entries[0].R)
		trns := all[2].(*Transparency)
		assert.True(t, trns.IsPalette())
		assert.Equal(t, []uint8{0, 128}, trns.Alpha)
		assert.Equal(t, &ImageData{Data: []byte{0x78, 0x01}}, all[3])
		assert.Equal(t, &ImageEnd{}, all[4])
	})
	t.Run("GreyKey", func(t *testing.T) {
		chunks, err := Decode(bytes.NewReader(stream(
			rawChunk("IHDR", ihdrBody(2, 2, 16, 0, 0, 0, 0)),
			rawChunk("tRNS", []byte{0x12, 0x34}),
		)))
		require.NoError(t, err)
		trns := chunks[1].(*Transparency)
		assert.False(t, trns.IsPalette())
		assert.Equal(t, []uint16{0x1234}, trns.Key)
	})
	t.Run("AlphaBoundedByPaletteEntries", func(t *testing.T) {
		plte := rawChunk("PLTE", []byte{255, 0, 0, 0, 255, 0, 0, 0, 255})
		chunks, err := Decode(bytes.NewReader(stream(plte, rawChunk("tRNS", []byte{0, 128, 255}))))
		require.NoError(t, err)
		assert.Equal(t, []uint8{0, 128, 255}, chunks[1].(*Transparency).Alpha)

		chunks, err = Decode(bytes.NewReader(stream(plte, rawChunk("tRNS", []byte{0, 128, 255, 7}))))
		var se *ChunkSizeError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, tag.Transparency, se.Tag)
		assert.Equal(t, 4, se.Length)
		assert.Len(t, chunks, 1)
	})
	t.Run("RgbKeyWrongSize", func(t *testing.T) {
		_, err := Decode(bytes.NewReader(stream(rawChunk("tRNS", []byte{1, 2, 3}))))
		var se *ChunkSizeError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, tag.Transparency, se.Tag)
	})
}

func TestFixedSizeChunks(t *testing.T) {
	chunks, err := Decode(bytes.NewReader(stream(
		rawChunk("gAMA", []byte{0, 0, 0xB1, 0x8F}),
		rawChunk("sRGB", []byte{0}),
	)))
	require.NoError(t, err)
	assert.Equal(t, &Gamma{Value: 45455}, chunks[0])
	assert.InDelta(t, 0.45455, chunks[0].(*Gamma).Float(), 1e-9)
	assert.Equal(t, &SRGB{Intent: Perceptual}, chunks[1])

	_, err = Decode(bytes.NewReader(stream(rawChunk("sRGB", []byte{4}))))
	var ve *ValueError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, uint8(4), ve.Value)

	_, err = Decode(bytes.NewReader(stream(rawChunk("IEND", []byte{0}))))
	var se *ChunkSizeError
	assert.ErrorAs(t, err, &se)

	_, err = Decode(bytes.NewReader(stream(rawChunk("PLTE", []byte{1, 2}))))
	assert.ErrorAs(t, err, &se)
}
