package names

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// FuzzySource adapts a list of entity names for approximate matching,
// used by the CLI so "ray srm" finds "RDM.RAY-SRM-V4".
type FuzzySource []string

func (s FuzzySource) Len() int {
	return len(s)
}

func (s FuzzySource) String(i int) string {
	return s[i]
}

// Search returns up to limit names best matching the input, most
// relevant first.
func Search(input string, source FuzzySource, limit int) []string {
	normalized := strings.ToUpper(strings.Join(strings.Fields(input), "-"))
	matches := fuzzy.FindFrom(normalized, source)
	result := []string{}
	for i := 0; i < limit && i < len(matches); i++ {
		result = append(result, source[matches[i].Index])
	}
	return result
}
