package history

import (
	"fmt"
	"regexp"
	"strconv"
)

// Version identifies a revision of the source document.
// The zero Version means "no version" and is never applied.
type Version struct {
	Major int
	Minor int
	Patch int
}

// V is shorthand for Version{major, minor, patch}.
func V(major, minor, patch int) Version {
	return Version{Major: major, Minor: minor, Patch: patch}
}

var versionPattern = regexp.MustCompile(`^(?:Unicode\s+)?(\d+)(?:\.(\d+))?(?:\.(\d+))?$`)

// ParseVersion parses "5.0.0", "5.0", "5" and "Unicode 5.0.0".
func ParseVersion(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrMalformedVersion, s)
	}

	var parts [3]int
	for i, group := range m[1:] {
		if group == "" {
			continue
		}
		n, err := strconv.Atoi(group)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrMalformedVersion, s)
		}
		parts[i] = n
	}

	return Version{Major: parts[0], Minor: parts[1], Patch: parts[2]}, nil
}

// MustParseVersion is like ParseVersion but panics on malformed input.
// It is meant for tables and tests.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether v is the zero ("no version") value.
func (v Version) IsZero() bool {
	return v == Version{}
}

// Compare returns -1, 0 or +1 depending on whether v sorts before, equal to or after o.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmpInt(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmpInt(v.Minor, o.Minor)
	default:
		return cmpInt(v.Patch, o.Patch)
	}
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool {
	return v.Compare(o) < 0
}

// String returns the dotted form, e.g. "5.0.0".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Class returns the hyphenated form used in markup class names, e.g. "5-0-0".
func (v Version) Class() string {
	return fmt.Sprintf("%d-%d-%d", v.Major, v.Minor, v.Patch)
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MaxVersion returns the later of a and b.
func MaxVersion(a, b Version) Version {
	if a.Less(b) {
		return b
	}
	return a
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
