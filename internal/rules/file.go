package rules

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/transakce/internal/model"
)

type ruleFile struct {
	Rules []yaml.Node `yaml:"rules"`
}

// LoadFile reads rule definitions from a YAML file.
func LoadFile(path string) ([]model.CategoryRule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rules file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates YAML rule definitions. Rules default to
// active with DefaultRulePriority.
func Parse(r io.Reader) ([]model.CategoryRule, error) {
	var doc ruleFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing rules YAML: %w", err)
	}

	out := make([]model.CategoryRule, 0, len(doc.Rules))
	for i := range doc.Rules {
		rule := model.CategoryRule{
			Priority: model.DefaultRulePriority,
			IsActive: true,
		}
		if err := doc.Rules[i].Decode(&rule); err != nil {
			return nil, fmt.Errorf("rule %d: %w", i+1, err)
		}
		if errs := rule.Validate(); len(errs) > 0 {
			return nil, fmt.Errorf("rule %d (%s): %w", i+1, rule.Name, errs)
		}
		out = append(out, rule)
	}
	return out, nil
}

// Write encodes rules as a YAML rule file.
func Write(w io.Writer, rules []model.CategoryRule) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(map[string][]model.CategoryRule{"rules": rules}); err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}
	return enc.Close()
}
