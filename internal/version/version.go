// Package version implements per-tool version parsing and ordering. Each
// tool has its own versioning scheme, so there is one parser and comparator
// per tool rather than a shared semver implementation.
package version

// Filter narrows a set of discovered versions down to the ones an
// install/list operation should consider. An unset field does not
// constrain the match.
type Filter struct {
	LTSOnly      bool
	MajorVersion *int
	ExactVersion *string
}

// Matches reports whether rawVersion/major/isLTS satisfy f. All set fields
// must agree; this is a conjunction, not a preference ranking.
func (f Filter) Matches(rawVersion string, major int, isLTS bool) bool {
	if f.LTSOnly && !isLTS {
		return false
	}
	if f.MajorVersion != nil && *f.MajorVersion != major {
		return false
	}
	if f.ExactVersion != nil && *f.ExactVersion != rawVersion {
		return false
	}
	return true
}
