package areafile

import (
	"bytes"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeBody_identity(t *testing.T) {
	payload := []byte(`{"type":"FeatureCollection","features":[]}`)

	for _, encoding := range []string{"", "identity"} {
		got, err := DecodeBody(bytes.NewReader(payload), encoding)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	}
}

func TestDecodeBody_gzip(t *testing.T) {
	payload := []byte("code,name\nz-1,zone\n")

	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	_, err := writer.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	got, err := DecodeBody(&buf, "gzip")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDecodeBody_zstd(t *testing.T) {
	payload := []byte("code,name\nz-1,zone\n")

	var buf bytes.Buffer
	writer, err := zstd.NewWriter(&buf)
	require.NoError(t, err)
	_, err = writer.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	got, err := DecodeBody(&buf, "zstd")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDecodeBody_brotli(t *testing.T) {
	payload := []byte("code,name\nz-1,zone\n")

	var buf bytes.Buffer
	writer := brotli.NewWriter(&buf)
	_, err := writer.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	got, err := DecodeBody(&buf, "br")
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestDecodeBody_unsupported(t *testing.T) {
	_, err := DecodeBody(bytes.NewReader(nil), "deflate")
	assert.Error(t, err)
}

func TestDecodeBody_corruptGzip(t *testing.T) {
	_, err := DecodeBody(bytes.NewReader([]byte("not gzip")), "gzip")
	assert.Error(t, err)
}
