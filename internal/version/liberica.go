package version

import (
	"strconv"
	"strings"
)

// JdkVersion is a parsed Liberica/NIK version. Unlike GoVersion, parsing
// never fails: unparsable components default to 0, matching upstream's own
// best-effort tolerance for release metadata it doesn't fully control.
type JdkVersion struct {
	Major, Minor, Security, Patch, Build int
}

// CompareJdkVersion orders lexicographically by (major, minor, security,
// patch, build).
func CompareJdkVersion(a, b JdkVersion) int {
	switch {
	case a.Major != b.Major:
		return a.Major - b.Major
	case a.Minor != b.Minor:
		return a.Minor - b.Minor
	case a.Security != b.Security:
		return a.Security - b.Security
	case a.Patch != b.Patch:
		return a.Patch - b.Patch
	default:
		return a.Build - b.Build
	}
}

// ParseJdkVersion parses a Liberica release version string. Two grammars are
// accepted:
//
//   - "8uS[+B]": the legacy Java 8 update scheme, where S is the update
//     number and B the optional build number.
//   - "M[.m[.s[.p]]][+B]": dotted numeric with up to four components and an
//     optional build suffix. Missing components default to 0.
func ParseJdkVersion(s string) JdkVersion {
	if strings.HasPrefix(strings.ToLower(s), "8u") {
		rest := s[2:]
		security, build := 0, 0
		if plus := strings.IndexByte(rest, '+'); plus >= 0 {
			security = atoiOrZero(rest[:plus])
			build = atoiOrZero(rest[plus+1:])
		} else {
			security = atoiOrZero(rest)
		}
		return JdkVersion{Major: 8, Minor: 0, Security: security, Build: build}
	}

	versionPart := s
	build := 0
	if plus := strings.IndexByte(s, '+'); plus >= 0 {
		versionPart = s[:plus]
		build = atoiOrZero(s[plus+1:])
	}

	parts := strings.Split(versionPart, ".")
	var v JdkVersion
	v.Build = build
	if len(parts) > 0 {
		v.Major = atoiOrZero(parts[0])
	}
	if len(parts) > 1 {
		v.Minor = atoiOrZero(parts[1])
	}
	if len(parts) > 2 {
		v.Security = atoiOrZero(parts[2])
	}
	if len(parts) > 3 {
		v.Patch = atoiOrZero(parts[3])
	}
	return v
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
