package install

import (
	"archive/tar"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avmtools/avm/internal/hashverify"
	"github.com/avmtools/avm/internal/httputil"
	"github.com/avmtools/avm/internal/log"
	"github.com/avmtools/avm/internal/tool"
	"github.com/avmtools/avm/internal/version"
	gzip "github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdapter struct {
	down tool.DownInfo
	err  error
}

func (f *fakeAdapter) Info() tool.Info { return tool.Info{Name: "go"} }
func (f *fakeAdapter) FetchVersions(context.Context, string, string, version.Filter) ([]tool.Version, error) {
	return nil, nil
}
func (f *fakeAdapter) GetDownInfo(context.Context, string, string, version.Filter) (tool.DownInfo, error) {
	return f.down, f.err
}
func (f *fakeAdapter) ExePath(tagDir string) string { return filepath.Join(tagDir, "bin", "go") }

func buildTarGz(t *testing.T, name string, content []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gzw)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}))
	_, err := tw.Write(content)
	require.NoError(t, err)
	require.NoError(t, tw.Close())
	require.NoError(t, gzw.Close())
	return buf.Bytes()
}

func TestStartComposesTargetTagAndMovesExtractedTree(t *testing.T) {
	archiveBytes := buildTarGz(t, "go/bin/go", []byte("binary"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-tar")
		w.Write(archiveBytes)
	}))
	t.Cleanup(srv.Close)

	mirror := httputil.NewMirrorClient(srv.Client(), nil, log.NewNoop())
	adapter := &fakeAdapter{down: tool.DownInfo{
		Version: tool.Version{Raw: "1.24.2"},
		URL:     srv.URL + "/go1.24.2.linux-amd64.tar.gz",
		Hash:    hashverify.Declared{},
	}}

	toolsBase := t.TempDir()
	targetTag, p, err := Start(context.Background(), mirror, Request{
		Tool:      adapter,
		ToolsBase: toolsBase,
		Platform:  "x64-linux",
		SetDefault: true,
	}, log.NewNoop())
	require.NoError(t, err)
	assert.Equal(t, "x64-linux_1.24.2", targetTag)

	for i := 0; i < 10_000 && !p.Status().Stopped; i++ {
		require.NoError(t, p.Advance(context.Background()))
	}
	require.True(t, p.Status().Stopped)

	tagDir := filepath.Join(toolsBase, "go", targetTag)
	content, err := os.ReadFile(filepath.Join(tagDir, "bin", "go"))
	require.NoError(t, err)
	assert.Equal(t, "binary", string(content))

	defaultPath, err := os.Readlink(filepath.Join(toolsBase, "go", "default"))
	require.NoError(t, err)
	assert.Equal(t, tagDir, defaultPath)
}

func TestStartFailsWhenTagAlreadyExistsWithoutUpdate(t *testing.T) {
	archiveBytes := buildTarGz(t, "f", []byte("x"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archiveBytes)
	}))
	t.Cleanup(srv.Close)
	mirror := httputil.NewMirrorClient(srv.Client(), nil, log.NewNoop())

	toolsBase := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(toolsBase, "go", "x64-linux_1.24.2"), 0o755))

	adapter := &fakeAdapter{down: tool.DownInfo{Version: tool.Version{Raw: "1.24.2"}, URL: srv.URL}}
	_, _, err := Start(context.Background(), mirror, Request{Tool: adapter, ToolsBase: toolsBase, Platform: "x64-linux"}, log.NewNoop())

	var toolErr *tool.Error
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, tool.ErrKindConflict, toolErr.Kind)
}

func TestStartUpdateReplacesExistingTag(t *testing.T) {
	archiveBytes := buildTarGz(t, "newfile", []byte("new"))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archiveBytes)
	}))
	t.Cleanup(srv.Close)
	mirror := httputil.NewMirrorClient(srv.Client(), nil, log.NewNoop())

	toolsBase := t.TempDir()
	existing := filepath.Join(toolsBase, "go", "x64-linux_1.24.2")
	require.NoError(t, os.MkdirAll(existing, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(existing, "stale"), []byte("old"), 0o644))

	adapter := &fakeAdapter{down: tool.DownInfo{Version: tool.Version{Raw: "1.24.2"}, URL: srv.URL + "/x.tar.gz"}}
	_, p, err := Start(context.Background(), mirror, Request{Tool: adapter, ToolsBase: toolsBase, Platform: "x64-linux", Update: true}, log.NewNoop())
	require.NoError(t, err)

	for i := 0; i < 10_000 && !p.Status().Stopped; i++ {
		require.NoError(t, p.Advance(context.Background()))
	}

	_, err = os.Stat(filepath.Join(existing, "stale"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(existing, "newfile"))
	assert.NoError(t, err)
}

func TestStartFailsWhenInstallAlreadyInFlight(t *testing.T) {
	toolsBase := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(toolsBase, "go", ".tmp.x64-linux_1.24.2"), 0o755))

	adapter := &fakeAdapter{down: tool.DownInfo{Version: tool.Version{Raw: "1.24.2"}, URL: "http://example.invalid"}}
	mirror := httputil.NewMirrorClient(http.DefaultClient, nil, log.NewNoop())
	_, _, err := Start(context.Background(), mirror, Request{Tool: adapter, ToolsBase: toolsBase, Platform: "x64-linux"}, log.NewNoop())

	var toolErr *tool.Error
	require.ErrorAs(t, err, &toolErr)
	assert.Contains(t, toolErr.Error(), "is installing")
}

func TestStartClassifiesBlockedAddressAsInvalidInput(t *testing.T) {
	toolsBase := t.TempDir()
	adapter := &fakeAdapter{err: fmt.Errorf("fetching release metadata: %w", httputil.ErrBlockedAddress)}
	mirror := httputil.NewMirrorClient(http.DefaultClient, nil, log.NewNoop())

	_, _, err := Start(context.Background(), mirror, Request{Tool: adapter, ToolsBase: toolsBase, Platform: "x64-linux"}, log.NewNoop())

	var toolErr *tool.Error
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, tool.ErrKindInvalidInput, toolErr.Kind)
}

func TestStartLocalVerifiesHashBeforeExtracting(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "a.tar.gz")
	require.NoError(t, os.WriteFile(archivePath, buildTarGz(t, "bin/node", []byte("nodebin")), 0o644))

	toolsBase := t.TempDir()
	adapter := &fakeAdapter{}

	_, _, err := StartLocal(LocalRequest{
		Tool:        adapter,
		ToolsBase:   toolsBase,
		Platform:    "x64-linux",
		Version:     "20.11.1",
		ArchivePath: archivePath,
		Hash:        hashverify.Declared{SHA256: strings.Repeat("0", 64)},
	}, log.NewNoop())

	var toolErr *tool.Error
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, tool.ErrKindVerification, toolErr.Kind)
}

func TestStartLocalMovesExtractedTreeOnSuccess(t *testing.T) {
	dir := t.TempDir()
	archivePath := filepath.Join(dir, "a.tar.gz")
	require.NoError(t, os.WriteFile(archivePath, buildTarGz(t, "bin/node", []byte("nodebin")), 0o644))

	toolsBase := t.TempDir()
	adapter := &fakeAdapter{}

	targetTag, p, err := StartLocal(LocalRequest{
		Tool:        adapter,
		ToolsBase:   toolsBase,
		Platform:    "x64-linux",
		Version:     "20.11.1",
		ArchivePath: archivePath,
	}, log.NewNoop())
	require.NoError(t, err)
	assert.Equal(t, "x64-linux_20.11.1", targetTag)

	for i := 0; i < 10_000 && !p.Status().Stopped; i++ {
		require.NoError(t, p.Advance(context.Background()))
	}

	// The archive's only top-level entry is the "bin" directory, so that
	// directory itself is promoted to the tag directory.
	content, err := os.ReadFile(filepath.Join(toolsBase, "go", targetTag, "node"))
	require.NoError(t, err)
	assert.Equal(t, "nodebin", string(content))
}
