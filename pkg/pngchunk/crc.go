package pngchunk

import "hash/crc32"

// crcInit seeds the accumulator and is XORed back in before comparison
const crcInit uint32 = 0xFFFFFFFF

// crc is a running CRC-32 over a chunk's tag and body, folded one byte at a
// time so chunk bodies never need to be buffered to be checked.
type crc uint32

func newCRC() crc { return crc(crcInit) }

// update folds p into the accumulator
func (c *crc) update(p []byte) {
	acc := uint32(*c)
	for _, b := range p {
		acc = crc32.IEEETable[byte(acc)^b] ^ (acc >> 8)
	}
	*c = crc(acc)
}

// sum returns the value stored on the wire
func (c crc) sum() uint32 {
	return uint32(c) ^ crcInit
}
