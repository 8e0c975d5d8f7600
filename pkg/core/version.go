package core

import (
	"strings"

	"golang.org/x/mod/semver"
)

// DataVersion is the semantic version written into every snapshot.
const DataVersion = "0.1.0"

// CheckCompatible reports whether a snapshot written at version found can be
// read by a build at version current. Caret rules apply: the major must
// match, and below 1.0 the minor must match too.
func CheckCompatible(found, current string) error {
	f, c := canonical(found), canonical(current)
	if !semver.IsValid(f) || !semver.IsValid(c) {
		return &VersionMismatchError{Found: found, Expected: current}
	}
	if semver.Major(f) != semver.Major(c) {
		return &VersionMismatchError{Found: found, Expected: current}
	}
	if semver.Major(c) == "v0" && semver.MajorMinor(f) != semver.MajorMinor(c) {
		return &VersionMismatchError{Found: found, Expected: current}
	}
	return nil
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
