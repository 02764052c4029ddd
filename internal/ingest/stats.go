package ingest

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/transakce/internal/model"
	"github.com/cleared-dev/transakce/internal/store"
)

const (
	statsMonths = 12
	statsKinds  = 15
)

var hundred = decimal.NewFromInt(100)

// StatsFilter limits Stats to a date range. Nil bounds are open.
type StatsFilter struct {
	DateFrom *time.Time
	DateTo   *time.Time
}

// StatusCount is the number of transactions in one workflow state.
type StatusCount struct {
	Status model.TxStatus
	Count  int
	Pct    float64
}

// MonthTotals aggregates one calendar month.
type MonthTotals struct {
	Month   string // YYYY-MM
	Count   int
	Income  decimal.Decimal
	Expense decimal.Decimal // positive magnitude
	Net     decimal.Decimal
}

// UnitTotal is the amount attributed to one unit through its split.
type UnitTotal struct {
	Unit  model.Unit
	Total decimal.Decimal
}

// KindTotals aggregates one transaction kind.
type KindTotals struct {
	Kind  string
	Count int
	Total decimal.Decimal
}

// Stats summarizes stored transactions.
type Stats struct {
	Total         int
	ByStatus      []StatusCount
	Income        decimal.Decimal
	Expense       decimal.Decimal // positive magnitude
	Net           decimal.Decimal
	Categorized   int
	Uncategorized int
	ByMonth       []MonthTotals // newest first
	ByUnit        []UnitTotal
	ByKind        []KindTotals // most frequent first
}

// CategorizedPct returns the categorized share in percent.
func (s *Stats) CategorizedPct() float64 {
	return pct(s.Categorized, s.Total)
}

// Stats aggregates transactions within the filter.
func (s *Service) Stats(ctx context.Context, f StatsFilter) (*Stats, error) {
	txs, err := s.store.Queries().ListTransactions(ctx, store.TxFilter{DateFrom: f.DateFrom, DateTo: f.DateTo})
	if err != nil {
		return nil, err
	}
	return aggregate(txs), nil
}

func aggregate(txs []model.Transaction) *Stats {
	st := &Stats{
		Total:   len(txs),
		Income:  decimal.Zero,
		Expense: decimal.Zero,
	}
	statuses := make(map[model.TxStatus]int)
	months := make(map[string]*MonthTotals)
	kinds := make(map[string]*KindTotals)
	units := make(map[model.Unit]decimal.Decimal)

	for i := range txs {
		t := &txs[i]
		statuses[t.Status]++
		if t.IsCategorized() {
			st.Categorized++
		}

		m := months[t.Date.Format("2006-01")]
		if m == nil {
			m = &MonthTotals{Month: t.Date.Format("2006-01"), Income: decimal.Zero, Expense: decimal.Zero}
			months[m.Month] = m
		}
		m.Count++
		switch {
		case t.Amount.IsPositive():
			st.Income = st.Income.Add(t.Amount)
			m.Income = m.Income.Add(t.Amount)
		case t.Amount.IsNegative():
			st.Expense = st.Expense.Add(t.Amount.Abs())
			m.Expense = m.Expense.Add(t.Amount.Abs())
		}

		for _, u := range model.Units {
			share := t.Amount.Mul(t.UnitPct(u)).Div(hundred)
			units[u] = units[u].Add(share)
		}

		if t.Kind != "" {
			k := kinds[t.Kind]
			if k == nil {
				k = &KindTotals{Kind: t.Kind, Total: decimal.Zero}
				kinds[t.Kind] = k
			}
			k.Count++
			k.Total = k.Total.Add(t.Amount)
		}
	}

	st.Net = st.Income.Sub(st.Expense)
	st.Uncategorized = st.Total - st.Categorized
	for _, status := range model.TxStatuses {
		n := statuses[status]
		st.ByStatus = append(st.ByStatus, StatusCount{Status: status, Count: n, Pct: pct(n, st.Total)})
	}
	for _, u := range model.Units {
		st.ByUnit = append(st.ByUnit, UnitTotal{Unit: u, Total: units[u].Round(2)})
	}

	for _, m := range months {
		m.Net = m.Income.Sub(m.Expense)
		st.ByMonth = append(st.ByMonth, *m)
	}
	sort.Slice(st.ByMonth, func(i, j int) bool { return st.ByMonth[i].Month > st.ByMonth[j].Month })
	if len(st.ByMonth) > statsMonths {
		st.ByMonth = st.ByMonth[:statsMonths]
	}

	for _, k := range kinds {
		st.ByKind = append(st.ByKind, *k)
	}
	sort.Slice(st.ByKind, func(i, j int) bool {
		if st.ByKind[i].Count != st.ByKind[j].Count {
			return st.ByKind[i].Count > st.ByKind[j].Count
		}
		return st.ByKind[i].Kind < st.ByKind[j].Kind
	})
	if len(st.ByKind) > statsKinds {
		st.ByKind = st.ByKind[:statsKinds]
	}
	return st
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
