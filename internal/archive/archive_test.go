package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	gzip "github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCoversSupportedSuffixes(t *testing.T) {
	assert.Equal(t, Zip, Detect("node-v20.tar.zip"))
	assert.Equal(t, Zip, Detect("NODE.ZIP"))
	assert.Equal(t, TarGz, Detect("go1.24.2.linux-amd64.tar.gz"))
	assert.Equal(t, TarXz, Detect("node-v20.11.1-linux-x64.tar.xz"))
}

func TestDetectRejectsEverythingElse(t *testing.T) {
	for _, name := range []string{"archive.tar.bz2", "archive.tar", "archive.7z", "noextension"} {
		assert.Equal(t, Unknown, Detect(name), name)
	}
}

func TestExtractUnknownTypeFails(t *testing.T) {
	dir := t.TempDir()
	err := Extract(Unknown, filepath.Join(dir, "a.7z"), filepath.Join(dir, "out"))
	var unknownErr *ErrUnknownType
	require.ErrorAs(t, err, &unknownErr)
}

func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "a.zip")

	f, err := os.Create(archivePath)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	w, err := zw.Create("bin/tool")
	require.NoError(t, err)
	_, err = w.Write([]byte("#!/bin/sh\necho hi\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	outDir := filepath.Join(dir, "out")
	require.NoError(t, Extract(Zip, archivePath, outDir))

	content, err := os.ReadFile(filepath.Join(outDir, "bin", "tool"))
	require.NoError(t, err)
	assert.Equal(t, "#!/bin/sh\necho hi\n", string(content))
}

func TestExtractTarGz(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "a.tar.gz")

	f, err := os.Create(archivePath)
	require.NoError(t, err)
	gzw := gzip.NewWriter(f)
	tw := tar.NewWriter(gzw)

	content := []byte("package main")
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "go/src/main.go",
		Mode: 0o644,
		Size: int64(len(content)),
	}))
	_, err = tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gzw.Close())
	require.NoError(t, f.Close())

	outDir := filepath.Join(dir, "out")
	require.NoError(t, Extract(TarGz, archivePath, outDir))

	got, err := os.ReadFile(filepath.Join(outDir, "go", "src", "main.go"))
	require.NoError(t, err)
	assert.True(t, bytes.Equal(content, got))
}

func TestExtractRejectsPathTraversal(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "evil.tar.gz")

	f, err := os.Create(archivePath)
	require.NoError(t, err)
	gzw := gzip.NewWriter(f)
	tw := tar.NewWriter(gzw)
	require.NoError(t, tw.WriteHeader(&tar.Header{
		Name: "../../etc/passwd",
		Mode: 0o644,
		Size: 0,
	}))
	require.NoError(t, tw.Close())
	require.NoError(t, gzw.Close())
	require.NoError(t, f.Close())

	outDir := filepath.Join(dir, "out")
	err = Extract(TarGz, archivePath, outDir)
	assert.Error(t, err)
}
