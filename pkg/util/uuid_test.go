package util

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashUUIDStable(t *testing.T) {
	v := map[string]any{"tag": "IHDR", "length": 13}
	a := HashUUID(v)
	require.NotEmpty(t, a)
	assert.Equal(t, a, HashUUID(v))
	assert.NotEqual(t, a, HashUUID(map[string]any{"tag": "IEND"}))
	assert.Empty(t, HashUUID(make(chan int)))
}

func TestSessionID(t *testing.T) {
	id := SessionID()
	_, err := uuid.Parse(id)
	assert.NoError(t, err)
	assert.NotEqual(t, id, SessionID())
}

func TestMd5ThenHex(t *testing.T) {
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", Md5ThenHex(nil))
}
