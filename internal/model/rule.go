package model

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// MatchType is the transaction attribute a rule is matched against.
type MatchType string

const (
	MatchCounterparty MatchType = "protiucet"
	MatchMerchant     MatchType = "merchant"
	MatchKeyword      MatchType = "keyword"
)

// MatchTypes lists the match dimensions in cascade order.
var MatchTypes = []MatchType{MatchCounterparty, MatchMerchant, MatchKeyword}

// MatchMode selects how a rule pattern is compared to the target text.
type MatchMode string

const (
	ModeExact    MatchMode = "exact"
	ModeContains MatchMode = "contains"
	ModeRegex    MatchMode = "regex"
)

// DefaultRulePriority is assigned to rules that do not set one.
const DefaultRulePriority = 100

// CategoryRule assigns categorization fields to matching transactions.
type CategoryRule struct {
	bun.BaseModel `bun:"table:category_rules,alias:r" yaml:"-"`

	ID            string      `bun:"id,pk" yaml:"id,omitempty"`
	Name          string      `bun:"name,notnull" yaml:"name"`
	Description   string      `bun:"description,notnull" yaml:"description,omitempty"`
	MatchType     MatchType   `bun:"match_type,notnull" yaml:"match_type"`
	MatchMode     MatchMode   `bun:"match_mode,notnull" yaml:"match_mode"`
	MatchValue    string      `bun:"match_value,notnull" yaml:"match_value"`
	CaseSensitive bool        `bun:"case_sensitive,notnull" yaml:"case_sensitive,omitempty"`
	Priority      int         `bun:"priority,notnull" yaml:"priority"`
	Targets       RuleTargets `bun:"embed:set_" yaml:"set"`
	IsActive      bool        `bun:"is_active,notnull" yaml:"active"`
	CreatedBy     string      `bun:"created_by,notnull" yaml:"-"`
	CreatedAt     time.Time   `bun:"created_at,notnull" yaml:"-"`
	UpdatedAt     time.Time   `bun:"updated_at,notnull" yaml:"-"`
}

// RuleTargets holds the optional fields a rule writes. A nil field, or an
// empty string, leaves the transaction value untouched.
type RuleTargets struct {
	IncomeExpense *IncomeExpense   `bun:"income_expense" yaml:"income_expense,omitempty"`
	OwnFlag       *OwnFlag         `bun:"own_flag" yaml:"own_flag,omitempty"`
	Tax           *bool            `bun:"tax" yaml:"tax,omitempty"`
	Kind          *string          `bun:"kind" yaml:"kind,omitempty"`
	Detail        *string          `bun:"detail" yaml:"detail,omitempty"`
	Unit          *Unit            `bun:"unit" yaml:"unit,omitempty"`
	MHPct         *decimal.Decimal `bun:"mh_pct,type:numeric(5,2)" yaml:"mh_pct,omitempty"`
	SKPct         *decimal.Decimal `bun:"sk_pct,type:numeric(5,2)" yaml:"sk_pct,omitempty"`
	XPPct         *decimal.Decimal `bun:"xp_pct,type:numeric(5,2)" yaml:"xp_pct,omitempty"`
	FRPct         *decimal.Decimal `bun:"fr_pct,type:numeric(5,2)" yaml:"fr_pct,omitempty"`
	ProjectID     *string          `bun:"project_id" yaml:"project,omitempty"`
	ProductID     *string          `bun:"product_id" yaml:"product,omitempty"`
	SubgroupID    *string          `bun:"subgroup_id" yaml:"subgroup,omitempty"`
}

// Apply overlays the populated targets onto t.
func (r RuleTargets) Apply(t *Transaction) {
	if r.IncomeExpense != nil && *r.IncomeExpense != "" {
		t.IncomeExpense = *r.IncomeExpense
	}
	if r.OwnFlag != nil && *r.OwnFlag != "" {
		t.OwnFlag = *r.OwnFlag
	}
	if r.Tax != nil {
		t.Tax = *r.Tax
	}
	setString(&t.Kind, r.Kind)
	setString(&t.Detail, r.Detail)
	if r.Unit != nil && *r.Unit != "" {
		t.Unit = *r.Unit
	}
	setDecimal(&t.MHPct, r.MHPct)
	setDecimal(&t.SKPct, r.SKPct)
	setDecimal(&t.XPPct, r.XPPct)
	setDecimal(&t.FRPct, r.FRPct)
	setRef(&t.ProjectID, r.ProjectID)
	setRef(&t.ProductID, r.ProductID)
	setRef(&t.SubgroupID, r.SubgroupID)
}

// IsEmpty reports whether no target is populated. Empty strings count as
// unset, as in Apply.
func (r RuleTargets) IsEmpty() bool {
	return (r.IncomeExpense == nil || *r.IncomeExpense == "") &&
		(r.OwnFlag == nil || *r.OwnFlag == "") &&
		r.Tax == nil &&
		(r.Kind == nil || *r.Kind == "") &&
		(r.Detail == nil || *r.Detail == "") &&
		(r.Unit == nil || *r.Unit == "") &&
		r.MHPct == nil && r.SKPct == nil && r.XPPct == nil && r.FRPct == nil &&
		(r.ProjectID == nil || *r.ProjectID == "") &&
		(r.ProductID == nil || *r.ProductID == "") &&
		(r.SubgroupID == nil || *r.SubgroupID == "")
}

func setString(dst *string, v *string) {
	if v != nil && *v != "" {
		*dst = *v
	}
}

func setDecimal(dst *decimal.Decimal, v *decimal.Decimal) {
	if v != nil {
		*dst = *v
	}
}

func setRef(dst **string, v *string) {
	if v != nil && *v != "" {
		id := *v
		*dst = &id
	}
}
