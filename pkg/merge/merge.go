// Package merge resolves {{Column}} merge fields in a template against a single data row.
//
// Column names are matched literally. A value that itself contains a merge field
// is inserted verbatim and never re-scanned, and tokens naming a column the row
// doesn't have are left in place.
package merge

import (
	"regexp"
	"sort"
	"strings"
)

const (
	openDelim  = "{{"
	closeDelim = "}}"
)

var tokenRegex = regexp.MustCompile(`\{\{([^{}]*)\}\}`)

// Token returns the merge field token for the given column name.
func Token(column string) string {
	return openDelim + column + closeDelim
}

// Resolve replaces every {{k}} in template with row[k] for each key present in row.
// Replacement is a single left-to-right pass; when tokens overlap at the same
// position the longer one wins.
func Resolve(template string, row map[string]string) string {
	if template == "" || len(row) == 0 {
		return template
	}

	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	// strings.Replacer picks the first matching pair in argument order
	// when several old strings match at one position.
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})

	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, Token(k), row[k])
	}

	return strings.NewReplacer(pairs...).Replace(template)
}

// Tokens returns the distinct column names referenced in template,
// in order of first appearance.
func Tokens(template string) []string {
	matches := tokenRegex.FindAllStringSubmatch(template, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, ok := seen[m[1]]; ok {
			continue
		}
		seen[m[1]] = struct{}{}
		names = append(names, m[1])
	}
	return names
}

// Unmatched returns the column names referenced in template that row does not provide.
func Unmatched(template string, row map[string]string) []string {
	var missing []string
	for _, name := range Tokens(template) {
		if _, ok := row[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
