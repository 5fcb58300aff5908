package store

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// versionIDPattern matches semantic version ids of shape
// policy-vMAJOR.MINOR.PATCH.
var versionIDPattern = regexp.MustCompile(`^policy-v(\d+)\.(\d+)\.(\d+)$`)

// parseVersionID extracts the (major, minor, patch) triple from a version
// id. Malformed ids report ok=false and are ignored by id allocation.
func parseVersionID(id string) (major, minor, patch int, ok bool) {
	m := versionIDPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, 0, 0, false
	}

	// The pattern guarantees digit-only groups; Atoi can only fail on
	// overflow, which we treat as malformed.
	major, err1 := strconv.Atoi(m[1])
	minor, err2 := strconv.Atoi(m[2])
	patch, err3 := strconv.Atoi(m[3])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return major, minor, patch, true
}

// nextVersionID allocates the id following the numerically greatest
// (major, minor, patch) triple among the existing ids, incrementing PATCH.
// Malformed ids are skipped. An empty set yields policy-v1.0.0.
func nextVersionID(existing []string) string {
	best := [3]int{0, 0, 0}
	found := false

	for _, id := range existing {
		major, minor, patch, ok := parseVersionID(id)
		if !ok {
			continue
		}
		candidate := [3]int{major, minor, patch}
		if !found || compareTriples(candidate, best) > 0 {
			best = candidate
			found = true
		}
	}

	if !found {
		return "policy-v1.0.0"
	}
	return fmt.Sprintf("policy-v%d.%d.%d", best[0], best[1], best[2]+1)
}

// compareVersionIDs orders two version ids by their numeric triples.
// Malformed ids sort below well-formed ones; two malformed ids fall back
// to lexicographic order so the result stays deterministic.
func compareVersionIDs(a, b string) int {
	am, an, ap, aok := parseVersionID(a)
	bm, bn, bp, bok := parseVersionID(b)

	switch {
	case aok && !bok:
		return 1
	case !aok && bok:
		return -1
	case !aok && !bok:
		return strings.Compare(a, b)
	}

	return compareTriples([3]int{am, an, ap}, [3]int{bm, bn, bp})
}

func compareTriples(a, b [3]int) int {
	for i := 0; i < 3; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}
