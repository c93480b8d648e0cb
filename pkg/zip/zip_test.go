package zip

import (
	stdzip "archive/zip"
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArchiveRoundTrip(t *testing.T) {
	data, err := Archive([]Entry{
		{Name: "spells/first.json", Data: []byte(`{"title":"one"}`)},
		{Name: "spells/first.png", Data: []byte{0x89, 0x50}},
	})
	require.NoError(t, err)

	zr, err := stdzip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	assert.Equal(t, "spells/first.json", zr.File[0].Name)
	rc, err := zr.File[0].Open()
	require.NoError(t, err)
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"one"}`, string(content))
}

func TestArchiveEmpty(t *testing.T) {
	data, err := Archive(nil)
	require.NoError(t, err)

	zr, err := stdzip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	assert.Empty(t, zr.File)
}
