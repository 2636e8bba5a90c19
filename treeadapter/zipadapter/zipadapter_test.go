package zipadapter

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildArchive(t *testing.T, files map[string]string) *Adapter {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	a, err := Open(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	return a
}

func TestZipEnumerateAndStructure(t *testing.T) {
	a := buildArchive(t, map[string]string{
		"img/a.jpg":          "binary",
		"img/a.jpg_meta.json": `{"type":"object"}`,
	})

	paths, err := a.Enumerate()
	require.NoError(t, err)
	require.Contains(t, paths, "")
	require.Contains(t, paths, "img")
	require.Contains(t, paths, "img/a.jpg")
	require.Contains(t, paths, "img/a.jpg_meta.json")

	require.True(t, a.IsDir("img"))
	require.True(t, a.IsFile("img/a.jpg"))
	require.False(t, a.IsDir("img/a.jpg"))
	require.False(t, a.Exists("img/missing"))
}

func TestZipLoadJSON(t *testing.T) {
	a := buildArchive(t, map[string]string{
		"meta.json": `{"ok": true}`,
	})

	v, err := a.LoadJSON("meta.json")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"ok": true}, v)

	_, err = a.LoadJSON("img/a.jpg")
	require.Error(t, err)
}

func TestZipLoadJSONRejectsNonJSON(t *testing.T) {
	a := buildArchive(t, map[string]string{
		"notes.txt": "not json",
	})

	_, err := a.LoadJSON("notes.txt")
	require.Error(t, err)
}
