package tag

import (
	"encoding/json"
	"fmt"
)

// String returns the tag as text, escaping non printable bytes
func (t Tag) String() string {
	if t.IsValid() {
		return string(t[:])
	}
	return fmt.Sprintf("%q", string(t[:]))
}

// MarshalJSON returns a JSON representation of the Tag
func (t Tag) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}
