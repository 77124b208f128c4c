package engine

import (
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/playperu/climatechance/internal/climate"
)

// ResolveChoice maps free-form input to one of the question's choices. It
// accepts a choice id, a 1-based position in display order, or the choice
// text. Text matches are case-insensitive and tolerate small typos in a
// prefix of the text. Ambiguous input resolves to nothing.
func ResolveChoice(q climate.QuestionInstance, input string) (climate.Choice, bool) {
	in := normalize(input)
	if in == "" {
		return climate.Choice{}, false
	}

	for _, c := range q.Choices {
		if strings.EqualFold(c.ID, in) {
			return c, true
		}
	}
	if n, err := strconv.Atoi(in); err == nil {
		if n >= 1 && n <= len(q.Choices) {
			return q.Choices[n-1], true
		}
		return climate.Choice{}, false
	}

	var prefixHits []climate.Choice
	for _, c := range q.Choices {
		text := normalize(c.Text)
		if text == in {
			return c, true
		}
		if strings.HasPrefix(text, in) {
			prefixHits = append(prefixHits, c)
		}
	}
	if len(prefixHits) == 1 {
		return prefixHits[0], true
	}
	if len(prefixHits) > 1 || len(in) < 3 {
		return climate.Choice{}, false
	}

	best, bestDist, tie := -1, 0, false
	limit := levenshteinLimit(len(in))
	for i, c := range q.Choices {
		dist := levenshtein.ComputeDistance(in, truncateRunes(normalize(c.Text), len([]rune(in))))
		if dist > limit {
			continue
		}
		switch {
		case best < 0 || dist < bestDist:
			best, bestDist, tie = i, dist, false
		case dist == bestDist:
			tie = true
		}
	}
	if best < 0 || tie {
		return climate.Choice{}, false
	}
	return q.Choices[best], true
}

func levenshteinLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
