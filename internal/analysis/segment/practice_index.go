package segment

import (
	"github.com/keatontom/salesforce-opportunity-analysis/domain/opportunity"

	"github.com/samber/lo"
)

// PracticeIndex holds every practice-area token observed in a dataset, in
// first-seen order. Membership is resolved by case-insensitive substring
// match on the raw field, not by token equality.
type PracticeIndex struct {
	tokens []string
}

// NewPracticeIndex collects the distinct tokens of all opportunities.
func NewPracticeIndex(all []*opportunity.Opportunity) *PracticeIndex {
	tokens := lo.Uniq(lo.FlatMap(all, func(o *opportunity.Opportunity, _ int) []string {
		return o.PracticeAreas
	}))
	return &PracticeIndex{tokens: tokens}
}

// Tokens returns the indexed tokens.
func (p *PracticeIndex) Tokens() []string {
	if p == nil {
		return nil
	}
	return p.tokens
}

// Len returns the number of distinct tokens.
func (p *PracticeIndex) Len() int { return len(p.Tokens()) }

// Matching returns the rows of pop whose raw practice-area field contains token.
func (p *PracticeIndex) Matching(pop []*opportunity.Opportunity, token string) []*opportunity.Opportunity {
	return lo.Filter(pop, func(o *opportunity.Opportunity, _ int) bool {
		return o.MatchesPracticeArea(token)
	})
}

// Union returns the rows of pop matching at least one of tokens, in pop order.
func (p *PracticeIndex) Union(pop []*opportunity.Opportunity, tokens []string) []*opportunity.Opportunity {
	return lo.Filter(pop, func(o *opportunity.Opportunity, _ int) bool {
		return lo.ContainsBy(tokens, o.MatchesPracticeArea)
	})
}
