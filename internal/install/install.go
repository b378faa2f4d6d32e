// Package install implements the installer orchestrator: resolving a
// release through a tool adapter, composing its on-disk target tag, and
// driving a download-extract pipeline whose callbacks verify the archive
// hash and place the extracted tree into the tag store.
package install

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avmtools/avm/internal/archive"
	"github.com/avmtools/avm/internal/hashverify"
	"github.com/avmtools/avm/internal/httputil"
	"github.com/avmtools/avm/internal/log"
	"github.com/avmtools/avm/internal/pipeline"
	"github.com/avmtools/avm/internal/tagstore"
	"github.com/avmtools/avm/internal/tool"
	"github.com/avmtools/avm/internal/version"
)

// Request describes a networked install: resolve the highest-ranked
// release matching Filter and download it.
type Request struct {
	Tool      tool.Adapter
	ToolsBase string
	Platform  string
	Flavor    string
	Filter    version.Filter
	Update    bool
	SetDefault bool
}

// LocalRequest describes install-local: the archive is already on disk, so
// only a version label (used for the target tag) and an optional declared
// hash are needed.
type LocalRequest struct {
	Tool        tool.Adapter
	ToolsBase   string
	Platform    string
	Flavor      string
	Version     string
	ArchivePath string
	Hash        hashverify.Declared
	Update      bool
	SetDefault  bool
}

// info is threaded through the pipeline's callbacks.
type info struct {
	targetTag string
	tagDir    string
	toolDir   string
	hash      hashverify.Declared
	setDefault bool
	logger    log.Logger
}

// composeTargetTag builds "{platform_?}{flavor_?}{version}", matching the
// tag-store naming convention.
func composeTargetTag(platformID, flavor, rawVersion string) string {
	var b strings.Builder
	if platformID != "" {
		b.WriteString(platformID)
		b.WriteByte('_')
	}
	if flavor != "" {
		b.WriteString(flavor)
		b.WriteByte('_')
	}
	b.WriteString(rawVersion)
	return b.String()
}

func precheck(op, targetTag, tagDir, tmpDir string, update bool) error {
	if strings.HasPrefix(targetTag, tagstore.ScratchPrefix) {
		return &tool.Error{Kind: tool.ErrKindInvalidInput, Op: op, Tag: targetTag, Err: fmt.Errorf("target tag may not begin with %q", tagstore.ScratchPrefix)}
	}
	if _, err := os.Stat(tmpDir); err == nil {
		return &tool.Error{Kind: tool.ErrKindConflict, Op: op, Tag: targetTag, Err: fmt.Errorf("is installing")}
	}
	if !update {
		if _, err := os.Stat(tagDir); err == nil {
			return &tool.Error{Kind: tool.ErrKindConflict, Op: op, Tag: targetTag, Err: fmt.Errorf("already exists")}
		}
	}
	return nil
}

func onDownloaded(ctx context.Context, i *info, archivePath string) error {
	if err := hashverify.Verify(archivePath, i.hash); err != nil {
		return &tool.Error{Kind: tool.ErrKindVerification, Op: "install", Tag: i.targetTag, Err: err}
	}
	return nil
}

func onExtracted(ctx context.Context, i *info, extractedDir string) error {
	moveSource, err := pickMoveSource(extractedDir)
	if err != nil {
		return fmt.Errorf("install: inspecting extracted tree: %w", err)
	}

	if _, err := os.Stat(i.tagDir); err == nil {
		if err := os.RemoveAll(i.tagDir); err != nil {
			return fmt.Errorf("install: replacing existing tag %q: %w", i.targetTag, err)
		}
	}
	if err := os.MkdirAll(filepath.Dir(i.tagDir), 0o755); err != nil {
		return fmt.Errorf("install: creating tool directory: %w", err)
	}
	if err := os.Rename(moveSource, i.tagDir); err != nil {
		return fmt.Errorf("install: moving extracted tree into place: %w", err)
	}

	if i.setDefault {
		store := tagstore.New(i.toolDir, i.logger)
		if err := store.Alias(i.targetTag, tagstore.DefaultAlias); err != nil {
			return fmt.Errorf("install: setting default alias: %w", err)
		}
	}
	return nil
}

// pickMoveSource returns the extracted directory's sole child directory if
// it produced exactly one, otherwise the extraction directory itself.
func pickMoveSource(extractedDir string) (string, error) {
	entries, err := os.ReadDir(extractedDir)
	if err != nil {
		return "", err
	}
	if len(entries) == 1 {
		childInfo, err := entries[0].Info()
		if err == nil && childInfo.IsDir() {
			return filepath.Join(extractedDir, entries[0].Name()), nil
		}
	}
	return extractedDir, nil
}

// Start resolves req.Tool's highest-ranked matching release and begins
// downloading and extracting it. The caller drives the returned pipeline to
// completion via Status()/Advance().
func Start(ctx context.Context, client *httputil.MirrorClient, req Request, logger log.Logger) (string, *pipeline.Pipeline[*info], error) {
	if logger == nil {
		logger = log.Default()
	}

	down, err := req.Tool.GetDownInfo(ctx, req.Platform, req.Flavor, req.Filter)
	if err != nil {
		kind := tool.ErrKindNetwork
		if errors.Is(err, httputil.ErrBlockedAddress) {
			// A blocked redirect or mirror target is a configuration
			// problem, not a transient outage.
			kind = tool.ErrKindInvalidInput
		}
		return "", nil, &tool.Error{Kind: kind, Op: "install", Err: err}
	}

	toolName := req.Tool.Info().Name
	targetTag := composeTargetTag(req.Platform, req.Flavor, down.Version.Raw)
	toolDir := filepath.Join(req.ToolsBase, toolName)
	tagDir := filepath.Join(toolDir, targetTag)
	tmpDir := filepath.Join(toolDir, tagstore.ScratchPrefix+targetTag)

	if err := precheck("install", targetTag, tagDir, tmpDir, req.Update); err != nil {
		return "", nil, err
	}

	i := &info{targetTag: targetTag, tagDir: tagDir, toolDir: toolDir, hash: down.Hash, setDefault: req.SetDefault, logger: logger}
	callbacks := pipeline.Callbacks[*info]{OnDownloaded: onDownloaded, OnExtracted: onExtracted}

	p, err := pipeline.NewDownload(ctx, client, down.URL, tmpDir, archive.Detect(down.URL), i, callbacks, logger)
	if err != nil {
		return "", nil, fmt.Errorf("install: starting pipeline: %w", err)
	}
	return targetTag, p, nil
}

// StartLocal is install-local: the archive is already on disk, so the
// pipeline begins directly at Extracting. The hash (if any) is verified up
// front, synchronously, rather than through OnDownloaded.
func StartLocal(req LocalRequest, logger log.Logger) (string, *pipeline.Pipeline[*info], error) {
	if logger == nil {
		logger = log.Default()
	}

	if err := hashverify.Verify(req.ArchivePath, req.Hash); err != nil {
		return "", nil, &tool.Error{Kind: tool.ErrKindVerification, Op: "install-local", Err: err}
	}

	toolName := req.Tool.Info().Name
	targetTag := composeTargetTag(req.Platform, req.Flavor, req.Version)
	toolDir := filepath.Join(req.ToolsBase, toolName)
	tagDir := filepath.Join(toolDir, targetTag)
	tmpDir := filepath.Join(toolDir, tagstore.ScratchPrefix+targetTag)

	if err := precheck("install-local", targetTag, tagDir, tmpDir, req.Update); err != nil {
		return "", nil, err
	}

	i := &info{targetTag: targetTag, tagDir: tagDir, toolDir: toolDir, setDefault: req.SetDefault, logger: logger}
	callbacks := pipeline.Callbacks[*info]{OnExtracted: onExtracted}

	p, err := pipeline.NewLocal(req.ArchivePath, tmpDir, archive.Detect(req.ArchivePath), i, callbacks, logger)
	if err != nil {
		return "", nil, fmt.Errorf("install-local: starting pipeline: %w", err)
	}
	return targetTag, p, nil
}
