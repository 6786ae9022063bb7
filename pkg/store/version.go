package store

import "github.com/hashicorp/go-version"

// Supersedes reports whether candidate should replace current when both
// describe the same component. Parsable versions are compared semantically
// and beat unparsable ones; otherwise the most recent write wins.
func Supersedes(candidate, current string) bool {
	cv, cerr := version.NewVersion(candidate)
	pv, perr := version.NewVersion(current)
	switch {
	case cerr == nil && perr == nil:
		return !cv.LessThan(pv)
	case cerr == nil:
		return true
	case perr == nil:
		return false
	}
	return true
}
