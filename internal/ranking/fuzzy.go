package ranking

import (
	"context"
	"math"
	"sort"
	"strings"

	"WikiAnswers/internal/domain"
	"WikiAnswers/internal/ports"
)

// topImageCount caps how many ranked images a strategy may return.
const topImageCount = 3

var titleSuffixes = []string{".jpg", ".jpeg", ".png", ".svg"}

// FuzzyStrategy ranks candidates by partial-ratio string similarity between
// the normalized query and each candidate's normalized display title. It is
// fully deterministic: equal scores keep discovery order.
type FuzzyStrategy struct{}

var _ ports.RankingStrategy = (*FuzzyStrategy)(nil)

// NewFuzzyStrategy returns the deterministic default strategy.
func NewFuzzyStrategy() *FuzzyStrategy {
	return &FuzzyStrategy{}
}

// Name identifies the strategy inside the registry.
func (s *FuzzyStrategy) Name() string {
	return "fuzzy"
}

// Rank scores every candidate, drops zero scores, and returns at most the top
// three in descending score order with stable ties.
func (s *FuzzyStrategy) Rank(_ context.Context, query string, candidates []domain.ImageCandidate) ([]domain.RankedImage, error) {
	normalizedQuery := NormalizeTitle(query)

	ranked := make([]domain.RankedImage, 0, len(candidates))
	for _, candidate := range candidates {
		score := PartialRatio(normalizedQuery, NormalizeTitle(candidate.Identifier))
		if score == 0 {
			continue
		}
		ranked = append(ranked, domain.RankedImage{ImageCandidate: candidate, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if len(ranked) > topImageCount {
		ranked = ranked[:topImageCount]
	}
	return ranked, nil
}

// NormalizeTitle strips the File: namespace prefix and a known extension
// suffix, replaces underscores with spaces, and lowercases.
func NormalizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if len(title) >= len("file:") && strings.EqualFold(title[:len("file:")], "file:") {
		title = title[len("file:"):]
	}

	lower := strings.ToLower(title)
	for _, suffix := range titleSuffixes {
		if strings.HasSuffix(lower, suffix) {
			title = title[:len(title)-len(suffix)]
			break
		}
	}

	title = strings.ReplaceAll(title, "_", " ")
	return strings.TrimSpace(strings.ToLower(title))
}

// PartialRatio is the best-alignment similarity of a against b in [0,100]:
// the maximum similarity ratio of the shorter string against any equal-length
// substring of the longer one. Identical strings score 100; strings with no
// common characters score 0.
func PartialRatio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}

	shorter, longer := ra, rb
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}

	best := 0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		if r := ratio(shorter, longer[i:i+len(shorter)]); r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// ratio is the matching-character similarity 200*M/(len(a)+len(b)), where M
// counts characters in recursively matched longest common substrings.
func ratio(a, b []rune) int {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	matched := matchingChars(a, b)
	return int(math.Round(200 * float64(matched) / float64(total)))
}

// matchingChars finds the longest common substring, then recurses on the
// unmatched prefixes and suffixes around it.
func matchingChars(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	return size +
		matchingChars(a[:ai], b[:bi]) +
		matchingChars(a[ai+size:], b[bi+size:])
}

func longestCommonSubstring(a, b []rune) (ai, bi, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	// lengths[j] holds the common-suffix length ending at a[i-1], b[j-1].
	lengths := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		prevDiag := 0
		for j := 1; j <= len(b); j++ {
			cur := lengths[j]
			if a[i-1] == b[j-1] {
				lengths[j] = prevDiag + 1
				if lengths[j] > size {
					size = lengths[j]
					ai = i - size
					bi = j - size
				}
			} else {
				lengths[j] = 0
			}
			prevDiag = cur
		}
	}
	return ai, bi, size
}
