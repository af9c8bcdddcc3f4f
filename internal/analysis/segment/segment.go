// Package segment is the shared grouping and aggregation primitive behind
// every ranked breakdown: group a population by a key, reduce each group to
// count, value and a rate, gate by sample size and rank deterministically.
package segment

import (
	"math"
	"sort"

	"github.com/keatontom/salesforce-opportunity-analysis/domain/opportunity"

	"github.com/samber/lo"
)

// Group is one segment and the opportunities that fall into it.
type Group struct {
	Key     string
	Members []*opportunity.Opportunity
}

// KeyFunc extracts the exact-match key of an opportunity. ok=false excludes the row.
type KeyFunc func(o *opportunity.Opportunity) (key string, ok bool)

// ByKey partitions pop by exact key, keeping groups in first-seen order.
func ByKey(pop []*opportunity.Opportunity, key KeyFunc) []Group {
	index := make(map[string]int)
	var groups []Group
	for _, o := range pop {
		k, ok := key(o)
		if !ok {
			continue
		}
		i, seen := index[k]
		if !seen {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Members = append(groups[i].Members, o)
	}
	return groups
}

// ByToken builds one group per practice-area token of idx, selecting the rows
// of pop whose raw field contains the token. A row counts fully toward every
// token it matches. Tokens with no match are omitted.
func ByToken(pop []*opportunity.Opportunity, idx *PracticeIndex) []Group {
	var groups []Group
	for _, token := range idx.Tokens() {
		members := idx.Matching(pop, token)
		if len(members) == 0 {
			continue
		}
		groups = append(groups, Group{Key: token, Members: members})
	}
	return groups
}

// Measure selects what Stat.Rate expresses.
type Measure int

const (
	// WinRate is won members over all members of the segment.
	WinRate Measure = iota
	// LossRate is lost members over all members of the segment.
	LossRate
	// Share is the segment's members over the whole population.
	Share
)

// Options controls Summarize.
type Options struct {
	Measure Measure
	// Population is the denominator for Share.
	Population int
	// ValueStage restricts Stat.Value to members in that stage; empty sums all members.
	ValueStage string
	// MinCount drops segments with fewer members.
	MinCount int
}

// Stat is the reduced statistic of one segment. Rate is on a 0-100 scale.
type Stat struct {
	Key    string  `json:"key"`
	Count  int     `json:"count"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	Value  float64 `json:"value"`
	Rate   float64 `json:"rate"`
}

// Summarize reduces groups to stats, preserving group order.
func Summarize(groups []Group, opts Options) []Stat {
	stats := make([]Stat, 0, len(groups))
	for _, g := range groups {
		count := len(g.Members)
		if count == 0 || count < opts.MinCount {
			continue
		}
		s := Stat{
			Key:    g.Key,
			Count:  count,
			Wins:   lo.CountBy(g.Members, func(o *opportunity.Opportunity) bool { return o.IsWon() }),
			Losses: lo.CountBy(g.Members, func(o *opportunity.Opportunity) bool { return o.IsLost() }),
			Value: lo.SumBy(g.Members, func(o *opportunity.Opportunity) float64 {
				if opts.ValueStage != "" && o.Stage != opts.ValueStage {
					return 0
				}
				return o.TotalACV
			}),
		}
		switch opts.Measure {
		case WinRate:
			s.Rate = Rate(s.Wins, count)
		case LossRate:
			s.Rate = Rate(s.Losses, count)
		case Share:
			s.Rate = Rate(count, opts.Population)
		}
		stats = append(stats, s)
	}
	return stats
}

// Rank returns a copy of stats ordered by rate desc, then value desc. Equal
// entries keep their input order.
func Rank(stats []Stat) []Stat {
	ranked := append([]Stat(nil), stats...)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Rate != ranked[j].Rate {
			return ranked[i].Rate > ranked[j].Rate
		}
		return ranked[i].Value > ranked[j].Value
	})
	return ranked
}

// Top truncates ranked stats to n entries; n <= 0 keeps everything.
func Top(stats []Stat, n int) []Stat {
	if n <= 0 || len(stats) <= n {
		return stats
	}
	return stats[:n]
}

// Rate returns num/den on a 0-100 scale, or 0 when den is not positive.
func Rate(num, den int) float64 {
	if den <= 0 {
		return 0
	}
	r := float64(num) / float64(den) * 100
	return math.Min(100, math.Max(0, r))
}
