// Package pipeline implements the download-extract state machine: a loop
// of explicit, cancellation-aware advance() calls that move an archive from
// a remote URL through a scratch directory into an extracted form, with
// caller-supplied hooks for hash verification and final placement.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/avmtools/avm/internal/archive"
	"github.com/avmtools/avm/internal/cancel"
	"github.com/avmtools/avm/internal/httputil"
	"github.com/avmtools/avm/internal/log"
)

// chunkSize bounds a single Downloading advance()'s work, so status() can be
// polled between chunks without buffering an entire archive in memory.
const chunkSize = 256 * 1024

type state int

const (
	stateDownloading state = iota
	stateExtracting
	stateStopped
)

// Callbacks are invoked at the two state transitions. OnDownloaded runs
// once the archive file is fully written, before extraction starts — the
// natural place to verify a hash. OnExtracted runs once extraction
// completes, before the scratch directory is torn down — the natural place
// to move the extracted tree into its final location.
type Callbacks[Info any] struct {
	OnDownloaded func(ctx context.Context, info Info, archivePath string) error
	OnExtracted  func(ctx context.Context, info Info, extractedDir string) error
}

// Status reports pipeline progress without advancing it.
type Status struct {
	Name       string // "Downloading", "Extracting", or "" once Stopped
	Stopped    bool
	Downloaded int64
	Total      *int64
}

// Pipeline drives one archive through Downloading -> Extracting -> Stopped.
// Info is opaque caller context (e.g. target tag, tool name) threaded
// through to both callbacks.
type Pipeline[Info any] struct {
	mu sync.Mutex

	state state
	info  Info
	typ   archive.Type

	scratchDir  string
	archivePath string
	extractDir  string

	resp            *http.Response
	archiveFile     *os.File
	downloadedBytes int64
	totalBytes      *int64

	callbacks Callbacks[Info]
	logger    log.Logger

	cleanupOnce sync.Once
}

// NewDownload starts a pipeline that fetches url into scratchDir before
// extracting it as typ. scratchDir is created if absent and owned by the
// pipeline for its lifetime.
func NewDownload[Info any](ctx context.Context, client *httputil.MirrorClient, url, scratchDir string, typ archive.Type, info Info, callbacks Callbacks[Info], logger log.Logger) (*Pipeline[Info], error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("pipeline: creating scratch dir: %w", err)
	}

	resp, err := client.Get(ctx, url)
	if err != nil {
		os.RemoveAll(scratchDir)
		return nil, fmt.Errorf("pipeline: requesting %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		os.RemoveAll(scratchDir)
		return nil, fmt.Errorf("pipeline: requesting %s: unexpected status %s", url, resp.Status)
	}

	archivePath := filepath.Join(scratchDir, "archive")
	f, err := os.Create(archivePath)
	if err != nil {
		resp.Body.Close()
		os.RemoveAll(scratchDir)
		return nil, fmt.Errorf("pipeline: creating archive file: %w", err)
	}

	var total *int64
	if resp.ContentLength > 0 {
		t := resp.ContentLength
		total = &t
	}

	return &Pipeline[Info]{
		state:       stateDownloading,
		info:        info,
		typ:         typ,
		scratchDir:  scratchDir,
		archivePath: archivePath,
		extractDir:  filepath.Join(scratchDir, "extracted"),
		resp:        resp,
		archiveFile: f,
		totalBytes:  total,
		callbacks:   callbacks,
		logger:      logger,
	}, nil
}

// NewLocal starts a pipeline directly in the Extracting state over a
// caller-supplied archive file, skipping the network download entirely.
// Used by install-local, where the hash (if any) is verified by the caller
// before the pipeline is even constructed.
func NewLocal[Info any](archivePath, scratchDir string, typ archive.Type, info Info, callbacks Callbacks[Info], logger log.Logger) (*Pipeline[Info], error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(scratchDir, 0o755); err != nil {
		return nil, fmt.Errorf("pipeline: creating scratch dir: %w", err)
	}

	return &Pipeline[Info]{
		state:       stateExtracting,
		info:        info,
		typ:         typ,
		scratchDir:  scratchDir,
		archivePath: archivePath,
		extractDir:  filepath.Join(scratchDir, "extracted"),
		callbacks:   callbacks,
		logger:      logger,
	}, nil
}

// Status reports the current phase without advancing it.
func (p *Pipeline[Info]) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateStopped {
		return Status{Stopped: true}
	}
	name := "Downloading"
	if p.state == stateExtracting {
		name = "Extracting"
	}
	return Status{Name: name, Downloaded: p.downloadedBytes, Total: p.totalBytes}
}

// ErrStopped is returned by Advance once the pipeline has reached Stopped.
var ErrStopped = errors.New("pipeline: already stopped")

// Advance runs one step: either reads and writes the next download chunk,
// or (on the transition into Extracting) drives the blocking extraction
// step to completion. It polls the cancellation flag first; if cancelled,
// it tears down the scratch directory and moves to Stopped without
// performing further work.
func (p *Pipeline[Info]) Advance(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == stateStopped {
		return ErrStopped
	}

	if cancel.IsCancelled() {
		p.stopLocked(true)
		return nil
	}

	switch p.state {
	case stateDownloading:
		return p.advanceDownloading(ctx)
	case stateExtracting:
		return p.advanceExtracting(ctx)
	default:
		return ErrStopped
	}
}

func (p *Pipeline[Info]) advanceDownloading(ctx context.Context) error {
	buf := make([]byte, chunkSize)
	n, readErr := p.resp.Body.Read(buf)
	if n > 0 {
		if _, err := p.archiveFile.Write(buf[:n]); err != nil {
			p.stopLocked(false)
			return fmt.Errorf("pipeline: writing archive chunk: %w", err)
		}
		p.downloadedBytes += int64(n)
	}

	if readErr == nil {
		return nil
	}
	if readErr != io.EOF {
		p.stopLocked(false)
		return fmt.Errorf("pipeline: reading download body: %w", readErr)
	}

	if err := p.archiveFile.Close(); err != nil {
		p.stopLocked(false)
		return fmt.Errorf("pipeline: closing archive file: %w", err)
	}
	p.resp.Body.Close()

	if p.callbacks.OnDownloaded != nil {
		if err := p.callbacks.OnDownloaded(ctx, p.info, p.archivePath); err != nil {
			p.stopLocked(false)
			return err
		}
	}

	p.state = stateExtracting
	return nil
}

func (p *Pipeline[Info]) advanceExtracting(ctx context.Context) error {
	if err := archive.Extract(p.typ, p.archivePath, p.extractDir); err != nil {
		p.stopLocked(false)
		return fmt.Errorf("pipeline: extracting archive: %w", err)
	}

	if p.callbacks.OnExtracted != nil {
		if err := p.callbacks.OnExtracted(ctx, p.info, p.extractDir); err != nil {
			p.stopLocked(false)
			return err
		}
	}

	p.stopLocked(false)
	return nil
}

// stopLocked transitions to Stopped and tears down the scratch directory.
// Must be called with mu held.
func (p *Pipeline[Info]) stopLocked(cancelled bool) {
	p.state = stateStopped
	p.cleanup(cancelled)
}

// cleanup removes the scratch directory exactly once. A cancelled shutdown
// removes it inline with a warning; a normal one hands it to a worker
// goroutine so Advance doesn't block its caller on the removal.
func (p *Pipeline[Info]) cleanup(cancelled bool) {
	p.cleanupOnce.Do(func() {
		if p.resp != nil {
			p.resp.Body.Close()
		}
		if cancelled || cancel.IsCancelled() {
			p.logger.Warn("pipeline: removing scratch directory inline due to cancellation", "scratch", p.scratchDir)
			if err := os.RemoveAll(p.scratchDir); err != nil {
				p.logger.Warn("pipeline: failed to remove scratch directory", "scratch", p.scratchDir, "error", err)
			}
			return
		}
		scratch := p.scratchDir
		logger := p.logger
		go func() {
			if err := os.RemoveAll(scratch); err != nil {
				logger.Warn("pipeline: failed to remove scratch directory", "scratch", scratch, "error", err)
			}
		}()
	})
}
