// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/content-engine/pkg/types"
)

// citationPattern matches bracketed content: [1] or [1; 3] or [2, 4].
var citationPattern = regexp.MustCompile(`\[([^\[\]]+)\]`)

// citationNumbers returns every citation number in text in order of
// appearance, including repeats. Bracketed content that is not a list of
// positive integers (Markdown links, notes) is ignored.
func citationNumbers(text string) []int {
	var nums []int
	for _, m := range citationPattern.FindAllStringSubmatch(text, -1) {
		parts := strings.FieldsFunc(m[1], func(r rune) bool { return r == ';' || r == ',' })
		group := make([]int, 0, len(parts))
		for _, p := range parts {
			n, err := strconv.Atoi(strings.TrimSpace(p))
			if err != nil || n <= 0 {
				group = nil
				break
			}
			group = append(group, n)
		}
		nums = append(nums, group...)
	}
	return nums
}

// CitedSources returns the results the body cites as [n] (1-based), in order
// of first citation. Out-of-range numbers are ignored. When nothing valid is
// cited, every result is returned.
func CitedSources(body string, results []types.Source) []types.Source {
	seen := make(map[int]bool)
	cited := []types.Source{}
	for _, n := range citationNumbers(body) {
		if n > len(results) || seen[n] {
			continue
		}
		seen[n] = true
		cited = append(cited, results[n-1])
	}
	if len(cited) == 0 {
		return append([]types.Source{}, results...)
	}
	return cited
}
