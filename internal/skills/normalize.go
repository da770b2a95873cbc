// Package skills normalises skill names so that student skills and drive
// requirements can be compared case-insensitively.
package skills

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// Key returns the comparison key for a skill name: Unicode-normalised,
// case-folded, with surrounding and repeated inner whitespace removed.
// An empty key means the name carries no skill.
func Key(name string) string {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return ""
	}
	return folder.String(norm.NFKC.String(name))
}

// Set returns the distinct keys of names.
func Set(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if k := Key(n); k != "" {
			set[k] = struct{}{}
		}
	}
	return set
}

// Clean trims names and drops blanks and case-insensitive duplicates,
// keeping the first spelling seen.
func Clean(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, n := range names {
		k := Key(n)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, strings.Join(strings.Fields(n), " "))
	}
	return out
}

// Overlap returns the entries of required that appear in have, in required order.
// Duplicate requirements are counted once.
func Overlap(have, required []string) (matched []string, total int) {
	haveSet := Set(have)
	seen := make(map[string]bool, len(required))
	for _, r := range required {
		k := Key(r)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		total++
		if _, ok := haveSet[k]; ok {
			matched = append(matched, r)
		}
	}
	return matched, total
}
