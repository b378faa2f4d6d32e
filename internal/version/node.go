package version

import (
	"fmt"
	"strconv"
	"strings"
)

// NodeVersion is a parsed "vX.Y.Z" Node.js version. Unlike Go and Liberica,
// Node's scheme has no pre-release or build metadata to carry.
type NodeVersion struct {
	Major, Minor, Patch int
}

// CompareNodeVersion orders by (major, minor, patch).
func CompareNodeVersion(a, b NodeVersion) int {
	switch {
	case a.Major != b.Major:
		return a.Major - b.Major
	case a.Minor != b.Minor:
		return a.Minor - b.Minor
	default:
		return a.Patch - b.Patch
	}
}

// ParseNode parses a Node.js release version, with or without the leading
// "v". Exactly three dot-separated numeric components are required.
func ParseNode(s string) (NodeVersion, error) {
	trimmed := strings.TrimPrefix(s, "v")
	if trimmed == "" {
		return NodeVersion{}, fmt.Errorf("version: empty node version")
	}

	parts := strings.Split(trimmed, ".")
	if len(parts) != 3 {
		return NodeVersion{}, fmt.Errorf("version: %q must have exactly three dot-separated components", s)
	}

	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return NodeVersion{}, fmt.Errorf("version: %q has a non-numeric component: %w", s, err)
		}
		nums[i] = n
	}

	return NodeVersion{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}
