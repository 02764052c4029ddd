// Package rules matches transactions against category rules.
package rules

import (
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/cleared-dev/transakce/internal/model"
)

// compiled is a rule with its pattern prepared for matching.
type compiled struct {
	rule  model.CategoryRule
	value string         // normalized pattern for exact/contains
	re    *regexp.Regexp // nil for non-regex rules and malformed patterns
}

// Snapshot is an immutable, ordered view of the active rules for one run.
// It is safe for concurrent use.
type Snapshot struct {
	buckets map[model.MatchType][]compiled
	size    int
}

// NewSnapshot builds a snapshot from rules. Inactive rules are dropped,
// each dimension is ordered by priority then name, and regex patterns are
// compiled once. Malformed patterns are logged and never match.
func NewSnapshot(rules []model.CategoryRule, log zerolog.Logger) *Snapshot {
	s := &Snapshot{buckets: make(map[model.MatchType][]compiled, len(model.MatchTypes))}
	for _, r := range rules {
		if !r.IsActive {
			continue
		}
		c := compiled{rule: r}
		switch r.MatchMode {
		case model.ModeRegex:
			re, err := compilePattern(r.MatchValue, r.CaseSensitive)
			if err != nil {
				log.Warn().Err(err).
					Str("rule_id", r.ID).
					Str("pattern", r.MatchValue).
					Msg("invalid rule regex")
			}
			c.re = re
		default:
			c.value = normalize(r.MatchValue, r.CaseSensitive)
		}
		s.buckets[r.MatchType] = append(s.buckets[r.MatchType], c)
		s.size++
	}
	for _, b := range s.buckets {
		sort.SliceStable(b, func(i, j int) bool {
			if b[i].rule.Priority != b[j].rule.Priority {
				return b[i].rule.Priority < b[j].rule.Priority
			}
			return b[i].rule.Name < b[j].rule.Name
		})
	}
	return s
}

func compilePattern(pattern string, caseSensitive bool) (*regexp.Regexp, error) {
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

func normalize(s string, caseSensitive bool) string {
	if caseSensitive {
		return s
	}
	return strings.ToLower(s)
}

// Len returns the number of active rules.
func (s *Snapshot) Len() int { return s.size }

// Rules returns the active rules of one dimension in evaluation order.
func (s *Snapshot) Rules(dim model.MatchType) []model.CategoryRule {
	out := make([]model.CategoryRule, len(s.buckets[dim]))
	for i, c := range s.buckets[dim] {
		out[i] = c.rule
	}
	return out
}

// SearchValue returns the transaction text a dimension is matched against.
func SearchValue(dim model.MatchType, t *model.Transaction) string {
	switch dim {
	case model.MatchCounterparty:
		return t.CounterAccount
	case model.MatchMerchant:
		return t.Merchant
	case model.MatchKeyword:
		return t.SearchText()
	}
	return ""
}

// Match returns the first rule matching t, trying the counterparty account,
// then the merchant name, then the keyword text. Empty values are skipped.
func (s *Snapshot) Match(t *model.Transaction) *model.CategoryRule {
	for _, dim := range model.MatchTypes {
		value := SearchValue(dim, t)
		if value == "" {
			continue
		}
		for i := range s.buckets[dim] {
			c := &s.buckets[dim][i]
			if c.matches(value) {
				r := c.rule
				return &r
			}
		}
	}
	return nil
}

// Categorize applies the first matching rule's targets to t and returns it.
func (s *Snapshot) Categorize(t *model.Transaction) *model.CategoryRule {
	r := s.Match(t)
	if r != nil {
		r.Targets.Apply(t)
	}
	return r
}

// Matches reports whether rule matches value on its own, ignoring the
// active flag and dimension.
func Matches(rule model.CategoryRule, value string) bool {
	c := compiled{rule: rule}
	if rule.MatchMode == model.ModeRegex {
		c.re, _ = compilePattern(rule.MatchValue, rule.CaseSensitive)
	} else {
		c.value = normalize(rule.MatchValue, rule.CaseSensitive)
	}
	return c.matches(value)
}

func (c *compiled) matches(value string) bool {
	switch c.rule.MatchMode {
	case model.ModeExact:
		return normalize(value, c.rule.CaseSensitive) == c.value
	case model.ModeContains:
		return strings.Contains(normalize(value, c.rule.CaseSensitive), c.value)
	case model.ModeRegex:
		return c.re != nil && c.re.MatchString(value)
	}
	return false
}
