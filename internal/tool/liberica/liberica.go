// Package liberica implements the tool.Adapter contract for BellSoft
// Liberica JDK/JRE and NIK (Liberica Native Image Kit), backed by
// https://api.bell-sw.com/v1/.
package liberica

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"github.com/avmtools/avm/internal/hashverify"
	"github.com/avmtools/avm/internal/httputil"
	"github.com/avmtools/avm/internal/log"
	"github.com/avmtools/avm/internal/platform"
	"github.com/avmtools/avm/internal/tool"
	"github.com/avmtools/avm/internal/version"
)

const baseURL = "https://api.bell-sw.com/v1/"

var jdkBundleTypes = map[string]bool{"jdk": true, "jdk_full": true, "jdk_lite": true, "jre": true, "jre_full": true}
var nikBundleTypes = map[string]bool{"core": true, "standard": true, "full": true}

// Flavors is the closed set of installable variants.
var Flavors = []string{"jdk", "jdk_full", "jdk_lite", "jre", "jre_full", "nik_core", "nik_standard", "nik_full"}

const defaultFlavor = "jdk"

type parsedFlavor struct {
	isNik      bool
	bundleType string
}

func parseFlavor(s string) (parsedFlavor, error) {
	if s == "" {
		s = defaultFlavor
	}
	isNik := strings.HasPrefix(s, "nik")
	bundleType := strings.TrimPrefix(s, "nik_")
	if isNik {
		if !nikBundleTypes[bundleType] {
			return parsedFlavor{}, fmt.Errorf("liberica: invalid nik flavor %q", s)
		}
	} else if !jdkBundleTypes[bundleType] {
		return parsedFlavor{}, fmt.Errorf("liberica: invalid jdk/jre flavor %q", s)
	}
	return parsedFlavor{isNik: isNik, bundleType: bundleType}, nil
}

// upstream is the (arch, os, bitness) triple the BellSoft API expects.
type upstream struct {
	Arch, OS, Bitness string
}

func platformTable() *platform.Table[upstream] {
	t := platform.NewTable[upstream]()
	add := func(cpu, avmOS, arch, os, bitness string) { t.Add(cpu, avmOS, upstream{Arch: arch, OS: os, Bitness: bitness}) }

	add(platform.X86, platform.Linux, "x86", "linux", "32")
	add(platform.X64, platform.Linux, "x64", "linux", "64")
	add(platform.Arm32, platform.Linux, "arm32", "linux", "32-arm")
	add(platform.Arm64, platform.Linux, "arm64", "linux", "64-arm")
	add(platform.Ppc64, platform.Linux, "ppc64", "linux", "64-ppc")
	add(platform.Riscv64, platform.Linux, "riscv64", "linux", "64-riscv")

	add(platform.Arm64, platform.Win, "arm64", "windows", "64-arm")
	add(platform.X86, platform.Win, "x86", "windows", "32-x86")
	add(platform.X64, platform.Win, "x64", "windows", "64-x86")

	add(platform.X64, platform.LinuxMusl, "x64", "linux-musl", "64-x86")
	add(platform.Arm64, platform.LinuxMusl, "arm64", "linux-musl", "64-arm")

	add(platform.X64, platform.Mac, "x64", "macos", "64-x86")
	add(platform.Arm64, platform.Mac, "arm64", "macos", "64-arm")

	add(platform.Sparc64, platform.Solaris, "sparc64", "solaris", "64-sparc")
	add(platform.X64, platform.Solaris, "x64", "solaris", "64-x86")

	return t
}

type releaseItemDTO struct {
	DownloadURL string `json:"downloadUrl"`
	SHA1        string `json:"sha1"`
	Version     string `json:"version"`
	LTS         bool   `json:"LTS"`
}

type nikComponentDTO struct {
	Component string `json:"component"`
	Version   string `json:"version"`
}

type nikReleaseItemDTO struct {
	DownloadURL string             `json:"downloadUrl"`
	SHA1        string             `json:"sha1"`
	Components  []nikComponentDTO  `json:"components"`
	LTS         bool               `json:"LTS"`
}

// item is a release normalized to a single (rawVersion, parsed, url, sha1,
// lts) tuple regardless of whether it came from the JDK or NIK endpoint.
type item struct {
	raw   string
	v     version.JdkVersion
	url   string
	sha1  string
	isLTS bool
}

// Adapter implements tool.Adapter for Liberica JDK/JRE/NIK.
type Adapter struct {
	Client    *httputil.MirrorClient
	Logger    log.Logger
	platforms *platform.Table[upstream]
}

// New builds a Liberica adapter that fetches releases through client.
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
		Name:            "liberica",
		Description:     "BellSoft Liberica JDK, JRE, and Native Image Kit",
		Platforms:       a.platforms.Platforms(),
		DefaultPlatform: defaultPlatform,
		Flavors:         Flavors,
		DefaultFlavor:   defaultFlavor,
	}
}

func buildQuery(up upstream, f parsedFlavor, majorVersion, exactVersion *string) url.Values {
	q := url.Values{}
	q.Set("arch", up.Arch)
	q.Set("os", up.OS)
	q.Set("installation-type", "archive")
	q.Set("bitness", up.Bitness)
	q.Set("bundle-type", f.bundleType)
	if majorVersion != nil {
		q.Set("version-feature", *majorVersion)
	}
	if exactVersion != nil {
		q.Set("version", *exactVersion)
	}
	return q
}

func (a *Adapter) fetchItems(ctx context.Context, platformID, flavor string, filter version.Filter) ([]item, parsedFlavor, error) {
	info := a.Info()
	if err := tool.RequirePlatform(info, platformID); err != nil {
		return nil, parsedFlavor{}, err
	}
	up, _ := a.platforms.Lookup(platformID)

	pf, err := parseFlavor(flavor)
	if err != nil {
		return nil, pf, err
	}

	var majorVersion *string
	if filter.MajorVersion != nil {
		s := strconv.Itoa(*filter.MajorVersion)
		majorVersion = &s
	}

	if pf.isNik {
		items, err := a.fetchNikItems(ctx, up, pf, filter.ExactVersion)
		if err != nil {
			return nil, pf, err
		}
		if majorVersion != nil {
			filtered := items[:0]
			for _, it := range items {
				if it.v.Major == *filter.MajorVersion {
					filtered = append(filtered, it)
				}
			}
			items = filtered
		}
		return items, pf, nil
	}

	items, err := a.fetchJDKItems(ctx, up, pf, majorVersion, filter.ExactVersion)
	return items, pf, err
}

func (a *Adapter) fetchJDKItems(ctx context.Context, up upstream, pf parsedFlavor, majorVersion, exactVersion *string) ([]item, error) {
	q := buildQuery(up, pf, majorVersion, exactVersion)
	fullURL := baseURL + "liberica/releases?" + q.Encode()

	resp, err := a.Client.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("liberica: fetching releases: %w", err)
	}
	defer resp.Body.Close()

	var dtos []releaseItemDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("liberica: decoding releases: %w", err)
	}

	items := make([]item, 0, len(dtos))
	for _, d := range dtos {
		items = append(items, item{
			raw:   d.Version,
			v:     version.ParseJdkVersion(d.Version),
			url:   d.DownloadURL,
			sha1:  d.SHA1,
			isLTS: d.LTS,
		})
	}
	return items, nil
}

func (a *Adapter) fetchNikItems(ctx context.Context, up upstream, pf parsedFlavor, exactVersion *string) ([]item, error) {
	var noMajor *string
	q := buildQuery(up, pf, noMajor, nil)
	if exactVersion != nil {
		q.Set("version", "liberica@"+*exactVersion)
	}
	fullURL := baseURL + "nik/releases?" + q.Encode()

	resp, err := a.Client.Get(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("liberica: fetching nik releases: %w", err)
	}
	defer resp.Body.Close()

	var dtos []nikReleaseItemDTO
	if err := json.NewDecoder(resp.Body).Decode(&dtos); err != nil {
		return nil, fmt.Errorf("liberica: decoding nik releases: %w", err)
	}

	items := make([]item, 0, len(dtos))
	for _, d := range dtos {
		var libericaVersion string
		for _, c := range d.Components {
			if c.Component == "liberica" {
				libericaVersion = c.Version
				break
			}
		}
		if libericaVersion == "" {
			a.Logger.Warn("liberica: nik release missing liberica component", "url", d.DownloadURL)
			continue
		}
		items = append(items, item{
			raw:   libericaVersion,
			v:     version.ParseJdkVersion(libericaVersion),
			url:   d.DownloadURL,
			sha1:  d.SHA1,
			isLTS: d.LTS,
		})
	}
	return items, nil
}

func (a *Adapter) FetchVersions(ctx context.Context, platformID, flavor string, filter version.Filter) ([]tool.Version, error) {
	items, _, err := a.fetchItems(ctx, platformID, flavor, filter)
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
	sort.Slice(out, func(i, j int) bool {
		return out[i].MajorVersion < out[j].MajorVersion || (out[i].MajorVersion == out[j].MajorVersion && out[i].Raw < out[j].Raw)
	})
	return out, nil
}

func (a *Adapter) GetDownInfo(ctx context.Context, platformID, flavor string, filter version.Filter) (tool.DownInfo, error) {
	items, _, err := a.fetchItems(ctx, platformID, flavor, filter)
	if err != nil {
		return tool.DownInfo{}, err
	}

	var best *item
	for i := range items {
		it := &items[i]
		if !filter.Matches(it.raw, it.v.Major, it.isLTS) {
			continue
		}
		if best == nil || version.CompareJdkVersion(it.v, best.v) > 0 {
			best = it
		}
	}
	if best == nil {
		return tool.DownInfo{}, &tool.ErrNoDownloadURL{Tool: "liberica"}
	}

	return tool.DownInfo{
		Version: tool.Version{Raw: best.raw, MajorVersion: best.v.Major, IsLTS: best.isLTS},
		URL:     best.url,
		Hash:    hashverify.Declared{SHA1: best.sha1},
	}, nil
}

func (a *Adapter) ExePath(tagDir string) string {
	name := "java"
	if runtime.GOOS == "windows" {
		name = "java.exe"
	}
	return filepath.Join(tagDir, "bin", name)
}
