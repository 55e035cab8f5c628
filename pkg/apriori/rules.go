package apriori

import (
	"slices"

	"github.com/Hafizh1187/apriory/pkg/itemset"
)

// Rule is an association rule Antecedent -> Consequent.
//
// Support is the support fraction of Antecedent ∪ Consequent, Confidence is
// support(union)/support(Antecedent) and Lift is
// Confidence/support(Consequent).
type Rule struct {
	Antecedent itemset.Itemset
	Consequent itemset.Itemset
	Count      int
	Support    float64
	Confidence float64
	Lift       float64
}

// Items returns the union of antecedent and consequent.
func (r Rule) Items() itemset.Itemset {
	return r.Antecedent.Union(r.Consequent)
}

// String renders the rule as "{a} -> {b}".
func (r Rule) String() string {
	return r.Antecedent.String() + " -> " + r.Consequent.String()
}

// GenerateRules derives every rule from the frequent itemsets of size two or
// more whose confidence and lift meet the thresholds.
//
// Rules come out ordered by itemset size, then by the itemset's canonical
// order, then by antecedent size and lexical order. An itemset of size n
// yields up to 2^n - 2 rules.
func GenerateRules(freq *Frequent, minConfidence, minLift float64) []Rule {
	rules := make([]Rule, 0)
	for _, s := range freq.Itemsets {
		if s.Items.Len() < 2 {
			continue
		}
		for _, split := range splits(s.Items) {
			ante, ok := freq.Lookup(split[0])
			if !ok {
				continue
			}
			cons, ok := freq.Lookup(split[1])
			if !ok || cons.Count == 0 {
				continue
			}

			// One rounding per ratio: a rule exactly on a threshold must pass.
			confidence := float64(s.Count) / float64(ante.Count)
			lift := float64(s.Count*freq.Total) / float64(ante.Count*cons.Count)
			if confidence < minConfidence || lift < minLift {
				continue
			}

			rules = append(rules, Rule{
				Antecedent: split[0],
				Consequent: split[1],
				Count:      s.Count,
				Support:    s.Support,
				Confidence: confidence,
				Lift:       lift,
			})
		}
	}
	return rules
}

// splits returns every (antecedent, consequent) partition of s with both
// sides non-empty, ordered by antecedent. Itemsets longer than
// MaxItemsetLength have no representable partitions and yield nil.
func splits(s itemset.Itemset) [][2]itemset.Itemset {
	n := s.Len()
	if n > MaxItemsetLength {
		return nil
	}
	full := uint64(1)<<n - 1
	out := make([][2]itemset.Itemset, 0, full-1)

	for mask := uint64(1); mask < full; mask++ {
		ante := make(itemset.Itemset, 0, n)
		cons := make(itemset.Itemset, 0, n)
		for i := 0; i < n; i++ {
			if mask&(1<<i) != 0 {
				ante = append(ante, s[i])
			} else {
				cons = append(cons, s[i])
			}
		}
		out = append(out, [2]itemset.Itemset{ante, cons})
	}

	slices.SortFunc(out, func(a, b [2]itemset.Itemset) int {
		return itemset.Compare(a[0], b[0])
	})
	return out
}
