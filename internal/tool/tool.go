// Package tool defines the uniform contract every version-managed tool
// (Go, Liberica JDK, Node.js) implements, and the shared types adapters
// exchange with the installer and CLI layers.
package tool

import (
	"context"
	"fmt"

	"github.com/avmtools/avm/internal/hashverify"
	"github.com/avmtools/avm/internal/version"
)

// Info describes a tool's static metadata: what platforms and flavors it
// supports, and which are used when the caller doesn't specify one.
type Info struct {
	Name            string
	Description     string
	Platforms       []string
	DefaultPlatform string
	Flavors         []string
	DefaultFlavor   string
}

// Version is one upstream release, reduced to what filtering and listing
// need: the raw label users see, its major component, and whether upstream
// (or the tool's own ordering) considers it an LTS/stable release.
type Version struct {
	Raw          string
	MajorVersion int
	IsLTS        bool
}

// DownInfo is the resolved result of picking the highest-ranked release
// matching a filter: where to get it, and what it should hash to.
type DownInfo struct {
	Version Version
	URL     string
	Hash    hashverify.Declared
}

// Adapter is the contract every tool implements. Platform and flavor are
// empty strings when the tool has no platform set or flavor set,
// respectively; Info reports which are required.
type Adapter interface {
	Info() Info
	FetchVersions(ctx context.Context, platform, flavor string, filter version.Filter) ([]Version, error)
	GetDownInfo(ctx context.Context, platform, flavor string, filter version.Filter) (DownInfo, error)
	ExePath(tagDir string) string
}

// ErrNoDownloadURL is returned by GetDownInfo when no release matches the
// requested filter.
type ErrNoDownloadURL struct{ Tool string }

func (e *ErrNoDownloadURL) Error() string {
	return fmt.Sprintf("tool %s: no download URL found", e.Tool)
}

// RequirePlatform validates that platform is set when info.Platforms is
// non-empty, and that it's a member of that set. Adapters call this at the
// top of FetchVersions/GetDownInfo.
func RequirePlatform(info Info, platform string) error {
	if len(info.Platforms) == 0 {
		return nil
	}
	if platform == "" {
		return fmt.Errorf("tool %s: platform is required", info.Name)
	}
	for _, p := range info.Platforms {
		if p == platform {
			return nil
		}
	}
	return fmt.Errorf("tool %s: unsupported platform %q", info.Name, platform)
}
