package mailmerge

import "strings"

const fence = "```"

// quotePairs lists the enclosing quote characters models like to add around subjects.
var quotePairs = [][2]string{
	{`"`, `"`},
	{`'`, `'`},
	{"“", "”"},
	{"‘", "’"},
}

// CleanBody trims model output and strips a surrounding code fence.
// The opening fence may carry a language tag on the same line.
func CleanBody(s string) string {
	s = strings.TrimSpace(s)

	if rest, ok := strings.CutPrefix(s, fence); ok {
		// Drop the language tag, if any, up to the end of the fence line.
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			tag := strings.TrimSpace(rest[:i])
			if !strings.ContainsAny(tag, " \t") {
				rest = rest[i+1:]
			}
		} else if !strings.ContainsAny(rest, " \t") && !strings.HasSuffix(rest, fence) {
			rest = ""
		}
		s = rest
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), fence)

	return strings.TrimSpace(s)
}

// CleanSubject trims model output and strips one pair of enclosing quotes.
func CleanSubject(s string) string {
	s = strings.TrimSpace(s)
	for _, q := range quotePairs {
		if len(s) >= len(q[0])+len(q[1]) && strings.HasPrefix(s, q[0]) && strings.HasSuffix(s, q[1]) {
			s = strings.TrimSpace(s[len(q[0]) : len(s)-len(q[1])])
			break
		}
	}
	return s
}
