// Package rank turns raw social posts into an ordered list of trade
// candidates. Ranking is a pure decision step: it never touches the network
// and never reports anywhere, so it can be exercised directly in tests.
package rank

import (
	"regexp"
	"sort"
	"strings"

	"github.com/noor961/Meme-coin--7/internal/domain"
	"github.com/noor961/Meme-coin--7/internal/sentiment"
)

// symbolPattern matches the first cashtag in a post: a $ sigil followed by
// uppercase letters. Lowercase tags are deliberately not symbols.
var symbolPattern = regexp.MustCompile(`\$([A-Z]+)`)

// Ranker filters and orders candidates extracted from posts.
type Ranker struct {
	scorer    *sentiment.Scorer
	denyTerms []string
}

// NewRanker creates a Ranker. Deny terms are matched as case-insensitive
// substrings of the post text; a hit disqualifies the post no matter how
// positive its sentiment is.
func NewRanker(scorer *sentiment.Scorer, denyTerms []string) *Ranker {
	terms := make([]string, 0, len(denyTerms))
	for _, t := range denyTerms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			terms = append(terms, t)
		}
	}
	return &Ranker{scorer: scorer, denyTerms: terms}
}

// Rank scores every post and returns the surviving candidates sorted by score,
// highest first. Ties keep the original post order. Empty input or a fully
// rejected batch yields an empty slice, not an error.
func (r *Ranker) Rank(posts []domain.Post) []domain.Candidate {
	candidates := make([]domain.Candidate, 0, len(posts))

	for _, post := range posts {
		if r.denied(post.Text) {
			continue
		}

		score, tokens := r.scorer.Score(post.Text)
		if tokens == 0 || score < 0 {
			continue
		}

		m := symbolPattern.FindStringSubmatch(post.Text)
		if m == nil {
			continue
		}

		candidates = append(candidates, domain.Candidate{
			Symbol: m[1],
			Score:  score,
			PostID: post.ID,
			Text:   post.Text,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}

// denied reports whether the text contains any configured deny term.
func (r *Ranker) denied(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range r.denyTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
