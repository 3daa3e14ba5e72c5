// Package version supplies the solver's value types for versions,
// constraints, and requirements. The solver never parses a version string
// itself; it only ever compares values produced here.
package version

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// Kind distinguishes the two ways a Version can be represented. Most
// packages carry semantic versions; some package ecosystems identify
// releases with an opaque tag (a VCS revision, a build stamp) that still
// needs a total order per package name, just not one semver understands.
type Kind uint8

const (
	// KindSemVer is a version backed by Masterminds/semver.
	KindSemVer Kind = iota
	// KindRevision is an opaque, lexically-ordered tag.
	KindRevision
)

// Version is a totally-ordered value, opaque to the solver beyond
// comparison and equality. Two Versions are only meaningfully compared
// when they belong to the same package name; the solver relies on the
// pool and repository layers to keep that invariant.
type Version interface {
	fmt.Stringer

	// Kind reports which concrete representation backs this Version.
	Kind() Kind

	// compareTo orders the receiver against other. Same-kind comparisons
	// use the natural order of that kind; a KindSemVer always sorts
	// above a KindRevision, which keeps cross-kind comparisons total
	// (and deterministic) without pretending they're meaningful.
	compareTo(other Version) int
}

type semverVersion struct {
	raw string
	v   *semver.Version

	// build and hasBuild carry a package-ecosystem build number trailing
	// the semantic version as "<upstream>-<build>" (e.g. "3.0.0-2"),
	// distinct from a real semver prerelease tag. v is parsed from the
	// upstream part alone, so a build number never makes a version look
	// like a prerelease to semver's own range/constraint matching, which
	// treats prereleases as excluded from a bare range by default.
	build    int
	hasBuild bool
}

// NewSemVer parses s as a semantic version, splitting off a trailing
// numeric build segment ("<upstream>-<build>") before handing the
// upstream part to Masterminds/semver, so that build number never gets
// mistaken for a prerelease identifier. A version with a higher build
// number sorts after one with a lower (or no) build number at the same
// upstream version.
func NewSemVer(s string) (Version, error) {
	upstream, build, hasBuild := splitBuildSuffix(s)
	v, err := semver.NewVersion(upstream)
	if err != nil {
		return nil, errors.Wrapf(err, "version: %q is not a valid semantic version", s)
	}
	return semverVersion{raw: s, v: v, build: build, hasBuild: hasBuild}, nil
}

// splitBuildSuffix splits a trailing "-<digits>" build segment off s,
// leaving the part before it to be parsed as semver. A non-numeric
// suffix (a real prerelease tag like "-beta") is left alone.
func splitBuildSuffix(s string) (upstream string, build int, hasBuild bool) {
	i := strings.LastIndexByte(s, '-')
	if i < 0 || i == len(s)-1 {
		return s, 0, false
	}
	n, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return s, 0, false
	}
	return s[:i], n, true
}

// MustSemVer is NewSemVer for call sites (tests, fixtures) that already
// know the input is well-formed.
func MustSemVer(s string) Version {
	v, err := NewSemVer(s)
	if err != nil {
		panic(err)
	}
	return v
}

func (s semverVersion) String() string { return s.raw }
func (s semverVersion) Kind() Kind     { return KindSemVer }

func (s semverVersion) compareTo(other Version) int {
	switch o := other.(type) {
	case semverVersion:
		if c := s.v.Compare(o.v); c != 0 {
			return c
		}
		switch {
		case s.build < o.build:
			return -1
		case s.build > o.build:
			return 1
		default:
			return 0
		}
	default:
		return 1
	}
}

type revisionVersion string

// NewRevision wraps an opaque, non-semver version tag. Ordering among
// revisions is lexical; this is only a total order in the formal sense,
// not a meaningful one, which is why the solver treats it as opaque.
func NewRevision(s string) Version { return revisionVersion(s) }

func (r revisionVersion) String() string { return string(r) }
func (r revisionVersion) Kind() Kind     { return KindRevision }

func (r revisionVersion) compareTo(other Version) int {
	switch o := other.(type) {
	case revisionVersion:
		switch {
		case r < o:
			return -1
		case r > o:
			return 1
		default:
			return 0
		}
	default:
		return -1
	}
}

// Compare returns -1, 0, or 1 as a orders before, equal to, or after b.
func Compare(a, b Version) int {
	return a.compareTo(b)
}

// Equal reports whether a and b compare as the same version.
func Equal(a, b Version) bool {
	return Compare(a, b) == 0
}

// Parse constructs a Version from s, preferring a semantic-version
// reading and falling back to an opaque revision when s doesn't parse
// as semver. This is the one place the domain layer (pkgrepo, scenario
// loading) should go through to build a Version from a human-readable
// string.
func Parse(s string) Version {
	if v, err := NewSemVer(s); err == nil {
		return v
	}
	return NewRevision(s)
}
