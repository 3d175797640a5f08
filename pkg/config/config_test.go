package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jpfielding/pngchunk.go/pkg/pngchunk"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, "log_level: debug\nlog_format: json\nmax_chunk_size: 4096\ntext_encoding: latin1\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{LogLevel: "debug", LogFormat: "json", MaxChunkSize: 4096, TextEncoding: "latin1"}, cfg)
	assert.Len(t, cfg.DecoderOptions(), 2)
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
	assert.Len(t, cfg.DecoderOptions(), 1)
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"Syntax", "log_level: [unclosed"},
		{"Encoding", "text_encoding: ebcdic"},
		{"Format", "log_format: xml"},
		{"ChunkSize", "max_chunk_size: -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestParseTextEncoding(t *testing.T) {
	te, err := ParseTextEncoding("ISO-8859-1")
	require.NoError(t, err)
	assert.Equal(t, pngchunk.TextLatin1, te)
	te, err = ParseTextEncoding("")
	require.NoError(t, err)
	assert.Equal(t, pngchunk.TextUTF8, te)
}
