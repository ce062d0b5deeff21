package jsonutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarshalKeepsMarkup(t *testing.T) {
	out, err := Marshal(map[string]string{"content": `<document a="b">x & y</document>`})
	require.NoError(t, err)
	require.Equal(t, "{\n  \"content\": \"<document a=\\\"b\\\">x & y</document>\"\n}", string(out))
}

func TestWriteRaw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thread.json")
	require.NoError(t, WriteRaw(path, []byte(`{"id":1,"title":"<b>"}`)))

	written, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "{\n  \"id\": 1,\n  \"title\": \"<b>\"\n}", string(written))

	require.Error(t, WriteRaw(path, []byte(`{"id":`)))
}
