package engine

import "github.com/Masterminds/semver/v3"

// SameVersion reports whether two version strings denote the same release.
// When both parse as semantic versions they are compared structurally, so
// "1.2" and "1.2.0" count as equal; otherwise plain string equality applies.
func SameVersion(a, b string) bool {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Equal(vb)
	}
	return a == b
}
