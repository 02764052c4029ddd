package rules

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/transakce/internal/model"
)

func ptr[T any](v T) *T { return &v }

func rule(name string, dim model.MatchType, mode model.MatchMode, value string, priority int, kind string) model.CategoryRule {
	return model.CategoryRule{
		ID:         name,
		Name:       name,
		MatchType:  dim,
		MatchMode:  mode,
		MatchValue: value,
		Priority:   priority,
		IsActive:   true,
		Targets:    model.RuleTargets{Kind: ptr(kind)},
	}
}

func tx() *model.Transaction {
	t := model.NewTransaction()
	t.Amount = decimal.NewFromInt(-100)
	return t
}

func TestMatch_CounterpartyBeatsMerchant(t *testing.T) {
	s := NewSnapshot([]model.CategoryRule{
		rule("merchant", model.MatchMerchant, model.ModeContains, "Westernmarket", 1, "potraviny"),
		rule("counter", model.MatchCounterparty, model.ModeExact, "987654321/1234", 500, "dodavatel"),
	}, zerolog.Nop())

	txn := tx()
	txn.CounterAccount = "987654321/1234"
	txn.Merchant = "Westernmarket s.r.o."

	got := s.Categorize(txn)
	require.NotNil(t, got)
	assert.Equal(t, "counter", got.Name)
	assert.Equal(t, "dodavatel", txn.Kind)
}

func TestMatch_FallsThroughDimensions(t *testing.T) {
	s := NewSnapshot([]model.CategoryRule{
		rule("counter", model.MatchCounterparty, model.ModeExact, "111/0100", 1, "a"),
		rule("merchant", model.MatchMerchant, model.ModeContains, "westernmarket", 1, "b"),
		rule("keyword", model.MatchKeyword, model.ModeContains, "nájemné", 1, "c"),
	}, zerolog.Nop())

	txn := tx()
	txn.CounterAccount = "999/0100"
	txn.Merchant = "Westernmarket s.r.o."
	assert.Equal(t, "merchant", s.Match(txn).Name)

	txn = tx()
	txn.CounterAccount = "555666777/3300"
	txn.Message = "Nájemné leden 2025"
	assert.Equal(t, "keyword", s.Match(txn).Name)

	txn = tx()
	txn.Message = "Elektřina"
	assert.Nil(t, s.Match(txn))
}

func TestMatch_KeywordSearchesNoteAndCounterName(t *testing.T) {
	s := NewSnapshot([]model.CategoryRule{
		rule("pojistka", model.MatchKeyword, model.ModeContains, "pojišťovna", 1, "pojisteni"),
	}, zerolog.Nop())

	txn := tx()
	txn.Message = "Pojistné firemní automobil"
	txn.CounterName = "Pojišťovna Czech a.s."
	assert.NotNil(t, s.Match(txn))
}

func TestMatch_PriorityThenName(t *testing.T) {
	s := NewSnapshot([]model.CategoryRule{
		rule("zeta", model.MatchKeyword, model.ModeContains, "platba", 10, "z"),
		rule("alfa", model.MatchKeyword, model.ModeContains, "platba", 10, "a"),
		rule("late", model.MatchKeyword, model.ModeContains, "platba", 20, "l"),
		rule("early", model.MatchKeyword, model.ModeContains, "platba", 5, "e"),
	}, zerolog.Nop())

	names := []string{}
	for _, r := range s.Rules(model.MatchKeyword) {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"early", "alfa", "zeta", "late"}, names)

	txn := tx()
	txn.Message = "Platba kartou"
	assert.Equal(t, "early", s.Match(txn).Name)
}

func TestMatch_InactiveNeverMatches(t *testing.T) {
	inactive := rule("off", model.MatchKeyword, model.ModeContains, "platba", 1, "x")
	inactive.IsActive = false
	s := NewSnapshot([]model.CategoryRule{inactive}, zerolog.Nop())

	txn := tx()
	txn.Message = "platba"
	assert.Nil(t, s.Match(txn))
	assert.Equal(t, 0, s.Len())
}

func TestMatch_OnlyOneRuleApplies(t *testing.T) {
	first := rule("first", model.MatchKeyword, model.ModeContains, "platba", 1, "first")
	second := rule("second", model.MatchKeyword, model.ModeContains, "platba", 2, "second")
	second.Targets.Detail = ptr("from-second")
	s := NewSnapshot([]model.CategoryRule{first, second}, zerolog.Nop())

	txn := tx()
	txn.Message = "platba"
	s.Categorize(txn)
	assert.Equal(t, "first", txn.Kind)
	assert.Empty(t, txn.Detail)
}

func TestMatches_Modes(t *testing.T) {
	tests := []struct {
		name  string
		mode  model.MatchMode
		value string
		cs    bool
		text  string
		want  bool
	}{
		{"exact ignores case", model.ModeExact, "Novák Jan", false, "NOVÁK JAN", true},
		{"exact is full string", model.ModeExact, "Novák", false, "Novák Jan", false},
		{"exact case sensitive", model.ModeExact, "Novák Jan", true, "novák jan", false},
		{"contains pattern in target", model.ModeContains, "market", false, "Westernmarket s.r.o.", true},
		{"contains is directional", model.ModeContains, "Westernmarket s.r.o.", false, "market", false},
		{"contains case sensitive", model.ModeContains, "Market", true, "Westernmarket", false},
		{"regex case insensitive", model.ModeRegex, "^čez", false, "ČEZ Group", true},
		{"regex case sensitive", model.ModeRegex, "^čez", true, "ČEZ Group", false},
		{"regex searches anywhere", model.ModeRegex, `FV-\d{4}`, false, "Úhrada faktury FV-2025-001", true},
		{"unknown mode", model.MatchMode("fuzzy"), "x", false, "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := model.CategoryRule{MatchMode: tt.mode, MatchValue: tt.value, CaseSensitive: tt.cs}
			assert.Equal(t, tt.want, Matches(r, tt.text))
		})
	}
}

func TestMatch_RegexVariableSymbol(t *testing.T) {
	s := NewSnapshot([]model.CategoryRule{
		rule("vs", model.MatchKeyword, model.ModeRegex, `VS:\s*\d{10}`, 1, "faktura"),
	}, zerolog.Nop())

	for text, want := range map[string]bool{
		"Platba VS: 1234567890":  true,
		"VS:1234567890 faktura":  true,
		"VS: 123":                false,
		"vs: 9876543210 lowered": true,
	} {
		txn := tx()
		txn.Message = text
		assert.Equal(t, want, s.Match(txn) != nil, text)
	}
}

func TestNewSnapshot_MalformedRegexLoggedAndSkipped(t *testing.T) {
	buf := &bytes.Buffer{}
	log := zerolog.New(buf)

	bad := rule("broken", model.MatchKeyword, model.ModeRegex, "([a-z", 1, "x")
	good := rule("good", model.MatchKeyword, model.ModeContains, "faktura", 2, "y")
	s := NewSnapshot([]model.CategoryRule{bad, good}, log)

	assert.Contains(t, buf.String(), `"rule_id":"broken"`)
	assert.Contains(t, buf.String(), `"pattern":"([a-z"`)

	txn := tx()
	txn.Message = "([a-z faktura"
	got := s.Match(txn)
	require.NotNil(t, got)
	assert.Equal(t, "good", got.Name)
}

func TestSnapshot_RuleOverlayKeepsUnsetFields(t *testing.T) {
	r := rule("split", model.MatchCounterparty, model.ModeExact, "1/0100", 1, "sluzby")
	r.Targets.Unit = ptr(model.UnitSK)
	r.Targets.SKPct = ptr(decimal.NewFromInt(100))
	r.Targets.MHPct = ptr(decimal.Zero)
	r.Targets.XPPct = ptr(decimal.Zero)
	r.Targets.FRPct = ptr(decimal.Zero)
	s := NewSnapshot([]model.CategoryRule{r}, zerolog.Nop())

	txn := tx()
	txn.CounterAccount = "1/0100"
	txn.Detail = "keep"
	txn.IncomeExpense = model.Expense
	s.Categorize(txn)

	assert.Equal(t, "sluzby", txn.Kind)
	assert.Equal(t, "keep", txn.Detail)
	assert.Equal(t, model.Expense, txn.IncomeExpense)
	assert.Equal(t, model.UnitSK, txn.Unit)
	assert.True(t, txn.SKPct.Equal(decimal.NewFromInt(100)))
	assert.True(t, txn.SplitAssigned())
}

func TestSearchValue(t *testing.T) {
	txn := tx()
	txn.CounterAccount = "1/2"
	txn.Merchant = "M"
	txn.Message = "zprava"
	txn.CounterName = "jmeno"
	assert.Equal(t, "1/2", SearchValue(model.MatchCounterparty, txn))
	assert.Equal(t, "M", SearchValue(model.MatchMerchant, txn))
	assert.Equal(t, "zprava jmeno", SearchValue(model.MatchKeyword, txn))
	assert.Equal(t, "", SearchValue(model.MatchType("other"), txn))
}
