package model

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Integer digits allowed before the decimal point. Amounts carry 2 decimal
// places.
const (
	amountDigits = 13
	feeDigits    = 8
)

// ValidationError describes a single invariant violation on a record.
type ValidationError struct {
	Field       string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Description)
}

// ValidationErrors is the full list of violations found on one record.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return strings.Join(msgs, "; ")
}

// Err returns nil when there are no violations.
func (e ValidationErrors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// SplitValid reports whether four unit percentages sum to exactly 0 or 100.
func SplitValid(mh, sk, xp, fr decimal.Decimal) bool {
	sum := mh.Add(sk).Add(xp).Add(fr)
	return sum.IsZero() || sum.Equal(hundred)
}

// Validate checks a transaction before it is stored. lookups may be nil, in
// which case references are not resolved.
func (t *Transaction) Validate(lookups LookupChecker) ValidationErrors {
	var errs ValidationErrors

	if t.Date.IsZero() {
		errs = append(errs, ValidationError{Field: "date", Description: "required"})
	}
	if t.Account == "" {
		errs = append(errs, ValidationError{Field: "account", Description: "required"})
	}
	if t.Type == "" {
		errs = append(errs, ValidationError{Field: "type", Description: "required"})
	}

	if !t.Status.Valid() {
		errs = append(errs, ValidationError{Field: "status", Description: fmt.Sprintf("unknown status %q", t.Status)})
	}
	switch t.IncomeExpense {
	case "", Income, Expense:
	default:
		errs = append(errs, ValidationError{Field: "income_expense", Description: fmt.Sprintf("unknown flag %q", t.IncomeExpense)})
	}
	switch t.OwnFlag {
	case OwnInternal, OwnExternal, OwnNone:
	default:
		errs = append(errs, ValidationError{Field: "own_flag", Description: fmt.Sprintf("unknown flag %q", t.OwnFlag)})
	}
	if t.Unit != "" && !validUnit(t.Unit) {
		errs = append(errs, ValidationError{Field: "unit", Description: fmt.Sprintf("unknown unit %q", t.Unit)})
	}

	if !SplitValid(t.MHPct, t.SKPct, t.XPPct, t.FRPct) {
		errs = append(errs, ValidationError{
			Field:       "mh_pct",
			Description: fmt.Sprintf("unit split must total exactly 100%%, got %s%%", t.SplitTotal().String()),
		})
	}

	errs = checkMoney(errs, "amount", t.Amount, amountDigits)
	if t.OrigAmount != nil {
		errs = checkMoney(errs, "orig_amount", *t.OrigAmount, amountDigits)
	}
	if t.Fees != nil {
		errs = checkMoney(errs, "fees", *t.Fees, feeDigits)
	}

	if t.Amount.IsPositive() && t.IncomeExpense == Expense {
		errs = append(errs, ValidationError{Field: "income_expense", Description: "positive amount cannot be an expense"})
	}
	if t.Amount.IsNegative() && t.IncomeExpense == Income {
		errs = append(errs, ValidationError{Field: "income_expense", Description: "negative amount cannot be income"})
	}

	if lookups == nil {
		return errs
	}
	if t.ProjectID != nil && !lookups.ProjectExists(*t.ProjectID) {
		errs = append(errs, ValidationError{Field: "project", Description: fmt.Sprintf("unknown project %q", *t.ProjectID)})
	}
	if t.ProductID != nil && !lookups.ProductExists(*t.ProductID) {
		errs = append(errs, ValidationError{Field: "product", Description: fmt.Sprintf("unknown product %q", *t.ProductID)})
	}
	if t.SubgroupID != nil {
		owner, ok := lookups.SubgroupProduct(*t.SubgroupID)
		switch {
		case !ok:
			errs = append(errs, ValidationError{Field: "subgroup", Description: fmt.Sprintf("unknown subgroup %q", *t.SubgroupID)})
		case t.ProductID != nil && owner != *t.ProductID:
			errs = append(errs, ValidationError{Field: "subgroup", Description: "subgroup does not belong to the selected product"})
		}
	}
	return errs
}

// Validate checks a rule definition.
func (r *CategoryRule) Validate() ValidationErrors {
	var errs ValidationErrors

	if r.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Description: "required"})
	}
	switch r.MatchType {
	case MatchCounterparty, MatchMerchant, MatchKeyword:
	default:
		errs = append(errs, ValidationError{Field: "match_type", Description: fmt.Sprintf("unknown match type %q", r.MatchType)})
	}
	switch r.MatchMode {
	case ModeExact, ModeContains:
	case ModeRegex:
		if _, err := regexp.Compile(r.MatchValue); err != nil {
			errs = append(errs, ValidationError{Field: "match_value", Description: fmt.Sprintf("invalid regex pattern: %v", err)})
		}
	default:
		errs = append(errs, ValidationError{Field: "match_mode", Description: fmt.Sprintf("unknown match mode %q", r.MatchMode)})
	}
	if r.MatchValue == "" {
		errs = append(errs, ValidationError{Field: "match_value", Description: "required"})
	}
	if r.Priority < 0 {
		errs = append(errs, ValidationError{Field: "priority", Description: "must not be negative"})
	}

	tg := r.Targets
	if tg.IncomeExpense != nil {
		switch *tg.IncomeExpense {
		case "", Income, Expense:
		default:
			errs = append(errs, ValidationError{Field: "set_income_expense", Description: fmt.Sprintf("unknown flag %q", *tg.IncomeExpense)})
		}
	}
	if tg.OwnFlag != nil {
		switch *tg.OwnFlag {
		case "", OwnInternal, OwnExternal, OwnNone:
		default:
			errs = append(errs, ValidationError{Field: "set_own_flag", Description: fmt.Sprintf("unknown flag %q", *tg.OwnFlag)})
		}
	}
	if tg.Unit != nil && *tg.Unit != "" && !validUnit(*tg.Unit) {
		errs = append(errs, ValidationError{Field: "set_unit", Description: fmt.Sprintf("unknown unit %q", *tg.Unit)})
	}
	if tg.MHPct != nil && tg.SKPct != nil && tg.XPPct != nil && tg.FRPct != nil &&
		!SplitValid(*tg.MHPct, *tg.SKPct, *tg.XPPct, *tg.FRPct) {
		errs = append(errs, ValidationError{Field: "set_mh_pct", Description: "unit split must total exactly 0 or 100"})
	}
	return errs
}

func checkMoney(errs ValidationErrors, field string, v decimal.Decimal, digits int32) ValidationErrors {
	if !v.Equal(v.Truncate(2)) {
		errs = append(errs, ValidationError{Field: field, Description: fmt.Sprintf("at most 2 decimal places allowed, got %s", v)})
	}
	if v.Abs().GreaterThanOrEqual(decimal.New(1, digits)) {
		errs = append(errs, ValidationError{Field: field, Description: fmt.Sprintf("at most %d digits before the decimal point allowed, got %s", digits, v)})
	}
	return errs
}

func validUnit(u Unit) bool {
	for _, v := range Units {
		if u == v {
			return true
		}
	}
	return false
}
