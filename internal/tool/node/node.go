// Package node implements the tool.Adapter contract for Node.js, backed by
// https://nodejs.org/dist/.
package node

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/avmtools/avm/internal/hashverify"
	"github.com/avmtools/avm/internal/httputil"
	"github.com/avmtools/avm/internal/log"
	"github.com/avmtools/avm/internal/platform"
	"github.com/avmtools/avm/internal/tool"
	"github.com/avmtools/avm/internal/version"
)

const baseURL = "https://nodejs.org/dist/"

// upstream pairs the file key nodejs.org's index.json lists per release
// with the archive filename suffix used to build a download URL.
type upstream struct {
	FileKey       string
	ArchiveSuffix string
}

func platformTable() *platform.Table[upstream] {
	t := platform.NewTable[upstream]()
	add := func(cpu, avmOS, fileKey, suffix string) { t.Add(cpu, avmOS, upstream{FileKey: fileKey, ArchiveSuffix: suffix}) }

	add(platform.X64, platform.Linux, "linux-x64", "linux-x64.tar.xz")
	add(platform.X86, platform.Linux, "linux-x86", "linux-x86.tar.xz")
	add(platform.Arm64, platform.Linux, "linux-arm64", "linux-arm64.tar.xz")
	add(platform.Armv6l, platform.Linux, "linux-armv6l", "linux-armv6l.tar.xz")
	add(platform.Armv7l, platform.Linux, "linux-armv7l", "linux-armv7l.tar.xz")
	add(platform.Ppc64le, platform.Linux, "linux-ppc64le", "linux-ppc64le.tar.xz")
	add(platform.S390x, platform.Linux, "linux-s390x", "linux-s390x.tar.xz")

	add(platform.X64, platform.Win, "win-x64-zip", "win-x64.zip")
	add(platform.X86, platform.Win, "win-x86-zip", "win-x86.zip")
	add(platform.Arm64, platform.Win, "win-arm64-zip", "win-arm64.zip")

	add(platform.Arm64, platform.Mac, "osx-arm64-tar", "darwin-arm64.tar.xz")
	add(platform.X64, platform.Mac, "osx-x64-tar", "darwin-x64.tar.xz")
	add(platform.X86, platform.Mac, "osx-x86-tar", "darwin-x86.tar.xz")

	add(platform.X64, platform.Solaris, "sunos-x64", "sunos-x64.tar.xz")
	add(platform.X86, platform.Solaris, "sunos-x86", "sunos-x86.tar.xz")

	add(platform.Ppc64, platform.Aix, "aix-ppc64", "aix-ppc64.tar.gz")

	return t
}

// ltsDTO models nodejs.org's untagged "lts" field: either a codename string
// (truthy) or the literal boolean false.
type ltsDTO struct {
	codename string
	isBool   bool
	boolVal  bool
}

func (l *ltsDTO) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		l.codename = s
		return nil
	}
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		l.isBool = true
		l.boolVal = b
		return nil
	}
	return fmt.Errorf("node: lts field is neither string nor bool: %s", data)
}

func (l ltsDTO) is() bool {
	if l.isBool {
		return l.boolVal
	}
	return l.codename != ""
}

type releaseDTO struct {
	Version string   `json:"version"`
	LTS     ltsDTO   `json:"lts"`
	Files   []string `json:"files"`
}

type item struct {
	raw   string
	v     version.NodeVersion
	isLTS bool
	files []string
}

// Adapter implements tool.Adapter for Node.js.
type Adapter struct {
	Client    *httputil.MirrorClient
	Logger    log.Logger
	platforms *platform.Table[upstream]
}

// New builds a Node adapter that fetches releases through client.
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
		Name:            "node",
		Description:     "Node.js JavaScript runtime",
		Platforms:       a.platforms.Platforms(),
		DefaultPlatform: defaultPlatform,
	}
}

func hasFile(files []string, key string) bool {
	for _, f := range files {
		if f == key {
			return true
		}
	}
	return false
}

func (a *Adapter) fetchItems(ctx context.Context, platformID string) ([]item, upstream, error) {
	info := a.Info()
	if err := tool.RequirePlatform(info, platformID); err != nil {
		return nil, upstream{}, err
	}
	up, _ := a.platforms.Lookup(platformID)

	resp, err := a.Client.Get(ctx, baseURL+"index.json")
	if err != nil {
		return nil, up, fmt.Errorf("node: fetching releases: %w", err)
	}
	defer resp.Body.Close()

	var dtos []releaseDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, up, fmt.Errorf("node: decoding releases: %w", err)
	}

	seen := map[string]bool{}
	var items []item
	for _, d := range dtos {
		if seen[d.Version] || !hasFile(d.Files, up.FileKey) {
			continue
		}
		v, err := version.ParseNode(d.Version)
		if err != nil {
			a.Logger.Warn("node: skipping unparsable version", "version", d.Version, "error", err)
			continue
		}
		seen[d.Version] = true
		items = append(items, item{raw: d.Version, v: v, isLTS: d.LTS.is(), files: d.Files})
	}
	return items, up, nil
}

func (a *Adapter) FetchVersions(ctx context.Context, platformID, _ string, filter version.Filter) ([]tool.Version, error) {
	items, _, err := a.fetchItems(ctx, platformID)
	if err != nil {
		return nil, err
	}

	var out []tool.Version
	for _, it := range items {
		if !filter.Matches(it.raw, it.v.Major, it.isLTS) {
			continue
		}
		out = append(out, tool.Version{Raw: it.raw, MajorVersion: it.v.Major, IsLTS: it.isLTS})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Raw < out[j].Raw })
	return out, nil
}

func (a *Adapter) GetDownInfo(ctx context.Context, platformID, flavor string, filter version.Filter) (tool.DownInfo, error) {
	items, up, err := a.fetchItems(ctx, platformID)
	if err != nil {
		return tool.DownInfo{}, err
	}

	var best *item
	for i := range items {
		it := &items[i]
		if !filter.Matches(it.raw, it.v.Major, it.isLTS) {
			continue
		}
		if best == nil || version.CompareNodeVersion(it.v, best.v) > 0 {
			best = it
		}
	}
	if best == nil {
		return tool.DownInfo{}, &tool.ErrNoDownloadURL{Tool: "node"}
	}

	filename := fmt.Sprintf("node-%s-%s", best.raw, up.ArchiveSuffix)
	sha256, err := a.lookupSHA256(ctx, best.raw, filename)
	if err != nil {
		a.Logger.Warn("node: sha256 lookup failed", "version", best.raw, "error", err)
	}

	return tool.DownInfo{
		Version: tool.Version{Raw: best.raw, MajorVersion: best.v.Major, IsLTS: best.isLTS},
		URL:     fmt.Sprintf("%s%s/%s", baseURL, best.raw, filename),
		Hash:    hashverify.Declared{SHA256: sha256},
	}, nil
}

func (a *Adapter) lookupSHA256(ctx context.Context, rawVersion, filename string) (string, error) {
	url := fmt.Sprintf("%s%s/SHASUMS256.txt", baseURL, rawVersion)
	resp, err := a.Client.Get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 2 {
			continue
		}
		if fields[1] == filename {
			return fields[0], nil
		}
	}
	return "", fmt.Errorf("node: no checksum entry for %s", filename)
}

func (a *Adapter) ExePath(tagDir string) string {
	name := "node"
	if runtime.GOOS == "windows" {
		name = "node.exe"
	}
	return filepath.Join(tagDir, "bin", name)
}
