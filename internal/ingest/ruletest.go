package ingest

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/transakce/internal/rules"
	"github.com/cleared-dev/transakce/internal/store"
)

const (
	// DefaultRuleTestLimit is how many stored transactions TestRule scans.
	DefaultRuleTestLimit = 1000
	ruleTestSamples      = 5
	sampleTextLen        = 100
)

// RuleSample is one transaction a tested rule matched.
type RuleSample struct {
	TransactionID string
	Date          string
	Amount        decimal.Decimal
	MatchedText   string
}

// RuleTestResult reports how a rule fares against stored transactions.
type RuleTestResult struct {
	RuleID     string
	RuleName   string
	Scanned    int
	MatchCount int
	Samples    []RuleSample
}

// TestRule counts the transactions among the first limit stored ones that
// the rule matches, regardless of whether the rule is active.
func (s *Service) TestRule(ctx context.Context, ruleID string, limit int) (*RuleTestResult, error) {
	if limit <= 0 {
		limit = DefaultRuleTestLimit
	}
	q := s.store.Queries()
	rule, err := q.GetRule(ctx, ruleID)
	if err != nil {
		return nil, err
	}
	txs, err := q.ListTransactions(ctx, store.TxFilter{Limit: limit})
	if err != nil {
		return nil, err
	}

	res := &RuleTestResult{RuleID: rule.ID, RuleName: rule.Name, Scanned: len(txs)}
	for i := range txs {
		t := &txs[i]
		value := rules.SearchValue(rule.MatchType, t)
		if value == "" || !rules.Matches(*rule, value) {
			continue
		}
		res.MatchCount++
		if len(res.Samples) < ruleTestSamples {
			res.Samples = append(res.Samples, RuleSample{
				TransactionID: t.ID,
				Date:          t.Date.Format("2006-01-02"),
				Amount:        t.Amount,
				MatchedText:   truncate(value, sampleTextLen),
			})
		}
	}
	return res, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
