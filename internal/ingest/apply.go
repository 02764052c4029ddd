package ingest

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/transakce/internal/logger"
	"github.com/cleared-dev/transakce/internal/lookups"
	"github.com/cleared-dev/transakce/internal/model"
	"github.com/cleared-dev/transakce/internal/rules"
	"github.com/cleared-dev/transakce/internal/store"
)

// maxReportedChanges bounds ApplyReport.Changes.
const maxReportedChanges = 10

// ApplyOptions selects the transactions ApplyRules re-categorizes.
type ApplyOptions struct {
	// All includes already categorized transactions.
	All     bool
	BatchID string
	DryRun  bool
	User    string
}

// RuleCount is how many transactions one rule changed.
type RuleCount struct {
	Rule  string
	Count int
}

// Change describes one re-categorized transaction.
type Change struct {
	TransactionID string
	Date          string
	Amount        decimal.Decimal
	OldKind       string
	NewKind       string
	Rule          string
}

// Rejection is a transaction left unchanged because the rule's result
// failed validation.
type Rejection struct {
	TransactionID string
	Rule          string
	Message       string
}

// ApplyReport summarizes an ApplyRules run.
type ApplyReport struct {
	Processed int
	Updated   int
	Rejected  []Rejection
	DryRun    bool
	Rules     []RuleCount
	Changes   []Change
}

// ApplyRules re-runs the rule cascade over stored transactions and saves
// the ones whose categorization changed. A result that fails validation is
// reported in Rejected and not saved.
func (s *Service) ApplyRules(ctx context.Context, opts ApplyOptions) (*ApplyReport, error) {
	user := opts.User
	if user == "" {
		user = DefaultUser
	}
	report := &ApplyReport{DryRun: opts.DryRun}
	log := logger.WithFields(logger.FromContext(ctx), map[string]any{
		"batch_id": opts.BatchID,
		"dry_run":  opts.DryRun,
	})
	log.Info().Bool("all", opts.All).Msg("applying rules")

	err := s.store.RunInTx(ctx, func(ctx context.Context, q *store.Queries) error {
		active, err := q.ActiveRules(ctx)
		if err != nil {
			return err
		}
		snap := rules.NewSnapshot(active, log)
		log.Debug().Int("rules", snap.Len()).Msg("rule snapshot ready")
		catalog, err := q.Lookups(ctx)
		if err != nil {
			return err
		}
		idx := lookups.NewIndex(catalog)

		txs, err := q.ListTransactions(ctx, store.TxFilter{
			BatchID:       opts.BatchID,
			Uncategorized: !opts.All,
		})
		if err != nil {
			return err
		}
		report.Processed = len(txs)

		counts := make(map[string]int)
		for i := range txs {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := &txs[i]
			before := *t
			rule := snap.Categorize(t)
			if rule == nil || !categorizationChanged(&before, t) {
				continue
			}
			t.DeriveIncomeExpense()
			if errs := t.Validate(idx); len(errs) > 0 {
				log.Warn().Err(errs).Str("transaction_id", t.ID).Str("rule", rule.Name).Msg("rule result rejected")
				report.Rejected = append(report.Rejected, Rejection{
					TransactionID: t.ID,
					Rule:          rule.Name,
					Message:       errs.Error(),
				})
				continue
			}

			report.Updated++
			counts[rule.Name]++
			if len(report.Changes) < maxReportedChanges {
				report.Changes = append(report.Changes, Change{
					TransactionID: t.ID,
					Date:          t.Date.Format("2006-01-02"),
					Amount:        t.Amount,
					OldKind:       before.Kind,
					NewKind:       t.Kind,
					Rule:          rule.Name,
				})
			}
			if opts.DryRun {
				continue
			}

			now := s.now()
			t.UpdatedBy, t.UpdatedAt = user, now
			if err := q.UpdateCategorization(ctx, t); err != nil {
				return err
			}
			if err := q.InsertAudit(ctx, &model.AuditEntry{
				ID:            uuid.NewString(),
				TransactionID: t.ID,
				User:          user,
				Action:        model.AuditActionRules,
				Details:       "Pravidlo: " + rule.Name,
				CreatedAt:     now,
			}); err != nil {
				return err
			}
		}
		report.Rules = sortedCounts(counts)
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("applying rules failed")
		return nil, err
	}

	log.Info().
		Int("processed", report.Processed).
		Int("updated", report.Updated).
		Int("rejected", len(report.Rejected)).
		Msg("rules applied")
	return report, nil
}

func categorizationChanged(a, b *model.Transaction) bool {
	return a.IncomeExpense != b.IncomeExpense ||
		a.OwnFlag != b.OwnFlag ||
		a.Tax != b.Tax ||
		a.Kind != b.Kind ||
		a.Detail != b.Detail ||
		a.Unit != b.Unit ||
		!a.MHPct.Equal(b.MHPct) ||
		!a.SKPct.Equal(b.SKPct) ||
		!a.XPPct.Equal(b.XPPct) ||
		!a.FRPct.Equal(b.FRPct) ||
		!sameRef(a.ProjectID, b.ProjectID) ||
		!sameRef(a.ProductID, b.ProductID) ||
		!sameRef(a.SubgroupID, b.SubgroupID)
}

func sameRef(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// sortedCounts orders rule counts by count descending, then name.
func sortedCounts(m map[string]int) []RuleCount {
	out := make([]RuleCount, 0, len(m))
	for name, n := range m {
		out = append(out, RuleCount{Rule: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Rule < out[j].Rule
	})
	return out
}
