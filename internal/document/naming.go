package document

import (
	"regexp"
	"strconv"
)

var epochSuffix = regexp.MustCompile(`^(.*)_epoch([0-9]+)$`)

// EpochName returns the project name to use after an epoch.
func EpochName(name string) string {
	m := epochSuffix.FindStringSubmatch(name)
	if m == nil {
		return name + "_epoched"
	}
	n, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		// Too many digits to count; treat as an unnumbered name.
		return name + "_epoched"
	}
	return m[1] + "_epoch" + strconv.FormatUint(n+1, 10)
}
