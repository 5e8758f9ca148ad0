package match

import (
	"regexp"
	"strconv"
	"strings"
)

var salaryNumberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseSalary extracts every numeric value from a free-form salary string in
// left-to-right order. Thousands separators are stripped first. When the
// string mentions 'k' anywhere, values below 1000 are scaled by 1000, so
// "$100k - $150k" parses to [100000, 150000] while an absolute figure like
// "100000" is left untouched. No digits yields an empty result.
//
// The 'k' check is deliberately string-global rather than per-number; mixed
// unit strings ("$100k bonus, $85000 base") scale every small value. That
// matches the catalogue data this parser was built against.
func ParseSalary(text string) []float64 {
	lowered := strings.ToLower(text)
	lowered = strings.ReplaceAll(lowered, ",", "")

	raw := salaryNumberPattern.FindAllString(lowered, -1)
	if len(raw) == 0 {
		return nil
	}

	hasK := strings.Contains(lowered, "k")
	out := make([]float64, 0, len(raw))
	for _, r := range raw {
		v, err := strconv.ParseFloat(r, 64)
		if err != nil {
			continue
		}
		if hasK && v < 1000 {
			v *= 1000
		}
		out = append(out, v)
	}
	return out
}
