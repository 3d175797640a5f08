// Package tag defines PNG chunk type codes
package tag

// Tag is the 4 byte chunk type code, e.g. IHDR
type Tag [4]byte

// New creates a Tag from a 4 character string, panics on any other length
func New(s string) Tag {
	if len(s) != 4 {
		panic("tag: chunk type must be 4 bytes: " + s)
	}
	return Tag{s[0], s[1], s[2], s[3]}
}

// Equals compares two tags
func (t Tag) Equals(other Tag) bool {
	return t == other
}

// IsCritical returns true when the ancillary bit (bit 5 of the first byte) is clear
func (t Tag) IsCritical() bool {
	return t[0]&0x20 == 0
}

// IsPublic returns true when the private bit (bit 5 of the second byte) is clear
func (t Tag) IsPublic() bool {
	return t[1]&0x20 == 0
}

// IsSafeToCopy returns true when editors may copy the chunk without understanding it
func (t Tag) IsSafeToCopy() bool {
	return t[3]&0x20 != 0
}

// IsValid returns true if every byte is an ASCII letter
func (t Tag) IsValid() bool {
	for _, b := range t {
		if !(b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z') {
			return false
		}
	}
	return true
}

// Critical chunks
var (
	ImageHeader = New("IHDR")
	Palette     = New("PLTE")
	ImageData   = New("IDAT")
	ImageEnd    = New("IEND")
)

// Ancillary chunks
var (
	Transparency   = New("tRNS")
	Gamma          = New("gAMA")
	SRGB           = New("sRGB")
	Text           = New("tEXt")
	CompressedText = New("zTXt")
)
