// Package goadapter implements the tool.Adapter contract for the Go
// toolchain, backed by https://golang.org/dl/.
package goadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/avmtools/avm/internal/hashverify"
	"github.com/avmtools/avm/internal/httputil"
	"github.com/avmtools/avm/internal/log"
	"github.com/avmtools/avm/internal/platform"
	"github.com/avmtools/avm/internal/tool"
	"github.com/avmtools/avm/internal/version"
)

const baseURL = "https://golang.org/dl/"

// upstream is the (arch, os) pair golang.org/dl's JSON feed uses, distinct
// from avm's own canonical platform identifiers.
type upstream struct {
	Arch, OS string
}

func platformTable() *platform.Table[upstream] {
	t := platform.NewTable[upstream]()
	add := func(cpu, avmOS, arch, dlOS string) { t.Add(cpu, avmOS, upstream{Arch: arch, OS: dlOS}) }

	add(platform.X86, platform.Linux, "386", "linux")
	add(platform.X64, platform.Linux, "amd64", "linux")
	add(platform.Arm64, platform.Linux, "arm64", "linux")
	add(platform.Armv6l, platform.Linux, "armv6l", "linux")
	add(platform.Loong64, platform.Linux, "loong64", "linux")
	add(platform.Mips32, platform.Linux, "mips", "linux")
	add(platform.Mips64, platform.Linux, "mips64", "linux")
	add(platform.Mips64le, platform.Linux, "mips64le", "linux")
	add(platform.Mips32le, platform.Linux, "mipsle", "linux")
	add(platform.Ppc64, platform.Linux, "ppc64", "linux")
	add(platform.Ppc64le, platform.Linux, "ppc64le", "linux")
	add(platform.Riscv64, platform.Linux, "riscv64", "linux")
	add(platform.S390x, platform.Linux, "s390x", "linux")

	add(platform.X86, platform.Win, "386", "windows")
	add(platform.X64, platform.Win, "amd64", "windows")
	add(platform.Arm32, platform.Win, "arm", "windows")
	add(platform.Arm64, platform.Win, "arm64", "windows")
	add(platform.Armv6l, platform.Win, "armv6l", "windows")

	add(platform.X86, platform.Mac, "386", "darwin")
	add(platform.X64, platform.Mac, "amd64", "darwin")
	add(platform.Arm64, platform.Mac, "arm64", "darwin")

	add(platform.X86, platform.Freebsd, "386", "freebsd")
	add(platform.X64, platform.Freebsd, "amd64", "freebsd")
	add(platform.Arm32, platform.Freebsd, "arm", "freebsd")
	add(platform.Arm64, platform.Freebsd, "arm64", "freebsd")
	add(platform.Armv6l, platform.Freebsd, "armv6l", "freebsd")
	add(platform.Riscv64, platform.Freebsd, "riscv64", "freebsd")

	add(platform.Ppc64, platform.Aix, "ppc64", "aix")
	add(platform.X64, platform.Dragonflybsd, "amd64", "dragonfly")
	add(platform.X64, platform.Illumos, "amd64", "illumos")

	add(platform.X86, platform.Netbsd, "386", "netbsd")
	add(platform.X64, platform.Netbsd, "amd64", "netbsd")
	add(platform.Arm32, platform.Netbsd, "arm", "netbsd")
	add(platform.Arm64, platform.Netbsd, "arm64", "netbsd")
	add(platform.Armv6l, platform.Netbsd, "armv6l", "netbsd")

	add(platform.X86, platform.Openbsd, "386", "openbsd")
	add(platform.X64, platform.Openbsd, "amd64", "openbsd")
	add(platform.Arm32, platform.Openbsd, "arm", "openbsd")
	add(platform.Arm64, platform.Openbsd, "arm64", "openbsd")
	add(platform.Armv6l, platform.Openbsd, "armv6l", "openbsd")
	add(platform.Ppc64, platform.Openbsd, "ppc64", "openbsd")
	add(platform.Riscv64, platform.Openbsd, "riscv64", "openbsd")

	add(platform.X86, platform.Plan9, "386", "plan9")
	add(platform.X64, platform.Plan9, "amd64", "plan9")
	add(platform.Arm32, platform.Plan9, "arm", "plan9")
	add(platform.Armv6l, platform.Plan9, "armv6l", "plan9")

	add(platform.X64, platform.Solaris, "amd64", "solaris")

	return t
}

type fileDTO struct {
	Filename string `json:"filename"`
	OS       string `json:"os"`
	Arch     string `json:"arch"`
	SHA256   string `json:"sha256"`
	Kind     string `json:"kind"`
}

type releaseDTO struct {
	Version string    `json:"version"`
	Files   []fileDTO `json:"files"`
}

// Adapter implements tool.Adapter for the Go toolchain.
type Adapter struct {
	Client    *httputil.MirrorClient
	Logger    log.Logger
	platforms *platform.Table[upstream]
}

// New builds a Go adapter that fetches releases through client.
func New(client *httputil.MirrorClient, logger log.Logger) *Adapter {
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{Client: client, Logger: logger, platforms: platformTable()}
}

func (a *Adapter) Info() tool.Info {
	defaultPlatform := ""
	if cur, err := platform.Current(); err == nil {
		if _, ok := a.platforms.Lookup(cur); ok {
			defaultPlatform = cur
		}
	}
	return tool.Info{
		Name:            "go",
		Description:     "The Go programming language toolchain",
		Platforms:       a.platforms.Platforms(),
		DefaultPlatform: defaultPlatform,
	}
}

func (a *Adapter) fetchReleases(ctx context.Context) ([]releaseDTO, error) {
	url := baseURL + "?mode=json&include=all"
	resp, err := a.Client.Get(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("goadapter: fetching releases: %w", err)
	}
	defer resp.Body.Close()

	var releases []releaseDTO
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("goadapter: decoding releases: %w", err)
	}
	return releases, nil
}

// matchingFile reports whether release has an archive file for up, and its
// sha256/filename if so.
func matchingFile(r releaseDTO, up upstream) (sha256, filename string, ok bool) {
	for _, f := range r.Files {
		if f.Kind == "archive" && f.OS == up.OS && f.Arch == up.Arch {
			return f.SHA256, f.Filename, true
		}
	}
	return "", "", false
}

func (a *Adapter) candidates(ctx context.Context, platformID string, filter version.Filter) ([]struct {
	raw string
	v   version.GoVersion
	dto releaseDTO
}, error) {
	info := a.Info()
	if err := tool.RequirePlatform(info, platformID); err != nil {
		return nil, err
	}
	up, _ := a.platforms.Lookup(platformID)

	releases, err := a.fetchReleases(ctx)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var out []struct {
		raw string
		v   version.GoVersion
		dto releaseDTO
	}
	for _, r := range releases {
		if seen[r.Version] {
			continue
		}
		if _, _, ok := matchingFile(r, up); !ok {
			continue
		}
		v, err := version.ParseGo(r.Version)
		if err != nil {
			a.Logger.Warn("goadapter: skipping unparsable version", "version", r.Version, "error", err)
			continue
		}
		if !filter.Matches(r.Version, v.Major, v.IsLTS()) {
			continue
		}
		seen[r.Version] = true
		out = append(out, struct {
			raw string
			v   version.GoVersion
			dto releaseDTO
		}{raw: r.Version, v: v, dto: r})
	}
	return out, nil
}

func (a *Adapter) FetchVersions(ctx context.Context, platformID, _ string, filter version.Filter) ([]tool.Version, error) {
	candidates, err := a.candidates(ctx, platformID, filter)
	if err != nil {
		return nil, err
	}
	sort.Slice(candidates, func(i, j int) bool {
		return version.CompareGoVersion(candidates[i].v, candidates[j].v) < 0
	})
	out := make([]tool.Version, len(candidates))
	for i, c := range candidates {
		out[i] = tool.Version{Raw: c.raw, MajorVersion: c.v.Major, IsLTS: c.v.IsLTS()}
	}
	return out, nil
}

func (a *Adapter) GetDownInfo(ctx context.Context, platformID, flavor string, filter version.Filter) (tool.DownInfo, error) {
	candidates, err := a.candidates(ctx, platformID, filter)
	if err != nil {
		return tool.DownInfo{}, err
	}
	if len(candidates) == 0 {
		return tool.DownInfo{}, &tool.ErrNoDownloadURL{Tool: "go"}
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if version.CompareGoVersion(c.v, best.v) > 0 {
			best = c
		}
	}

	up, _ := a.platforms.Lookup(platformID)
	sha256, filename, _ := matchingFile(best.dto, up)

	return tool.DownInfo{
		Version: tool.Version{Raw: best.raw, MajorVersion: best.v.Major, IsLTS: best.v.IsLTS()},
		URL:     baseURL + filename,
		Hash:    hashverify.Declared{SHA256: sha256},
	}, nil
}

func (a *Adapter) ExePath(tagDir string) string {
	name := "go"
	if runtime.GOOS == "windows" {
		name = "go.exe"
	}
	return filepath.Join(tagDir, "bin", name)
}
