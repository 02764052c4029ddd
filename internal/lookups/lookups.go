// Package lookups holds the project, product and subgroup catalogs that
// categorized transactions reference.
package lookups

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/transakce/internal/model"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Catalog is a full set of lookup entities.
type Catalog struct {
	Projects  []model.Project  `yaml:"projects"`
	Products  []model.Product  `yaml:"products"`
	Subgroups []model.Subgroup `yaml:"subgroups"`
}

// Default returns the built-in seed catalog.
func Default() Catalog {
	c, err := Parse(bytes.NewReader(defaultsYAML))
	if err != nil {
		panic("invalid embedded lookups: " + err.Error())
	}
	return c
}

// LoadFile reads a catalog from a YAML file.
func LoadFile(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("opening lookups file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes and validates a YAML catalog. Every entry is active.
func Parse(r io.Reader) (Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil && err != io.EOF {
		return Catalog{}, fmt.Errorf("parsing lookups YAML: %w", err)
	}
	for i := range c.Projects {
		c.Projects[i].IsActive = true
	}
	for i := range c.Products {
		c.Products[i].IsActive = true
	}
	for i := range c.Subgroups {
		c.Subgroups[i].IsActive = true
	}
	if errs := c.Validate(); len(errs) > 0 {
		return Catalog{}, errs
	}
	return c, nil
}

// Validate checks IDs are present and unique, product categories are
// known and every subgroup points at a product in the catalog.
func (c Catalog) Validate() model.ValidationErrors {
	var errs model.ValidationErrors
	seen := map[string]bool{}
	check := func(kind, id string) {
		key := kind + "/" + id
		switch {
		case id == "":
			errs = append(errs, model.ValidationError{Field: kind, Description: "id required"})
		case seen[key]:
			errs = append(errs, model.ValidationError{Field: kind, Description: fmt.Sprintf("duplicate id %q", id)})
		}
		seen[key] = true
	}

	for _, p := range c.Projects {
		check("project", p.ID)
	}
	for _, p := range c.Products {
		check("product", p.ID)
		if p.Category != model.CategorySchools && p.Category != model.CategoryCompanies {
			errs = append(errs, model.ValidationError{Field: "product", Description: fmt.Sprintf("%s: unknown category %q", p.ID, p.Category)})
		}
	}
	for _, s := range c.Subgroups {
		check("subgroup", s.ID)
		if !seen["product/"+s.ProductID] {
			errs = append(errs, model.ValidationError{Field: "subgroup", Description: fmt.Sprintf("%s: unknown product %q", s.ID, s.ProductID)})
		}
	}
	return errs
}

// Index answers reference lookups for active entities.
type Index struct {
	projects  map[string]bool
	products  map[string]bool
	subgroups map[string]string
}

var _ model.LookupChecker = (*Index)(nil)

// NewIndex builds an index over the active entries of c.
func NewIndex(c Catalog) *Index {
	idx := &Index{
		projects:  make(map[string]bool, len(c.Projects)),
		products:  make(map[string]bool, len(c.Products)),
		subgroups: make(map[string]string, len(c.Subgroups)),
	}
	for _, p := range c.Projects {
		if p.IsActive {
			idx.projects[p.ID] = true
		}
	}
	for _, p := range c.Products {
		if p.IsActive {
			idx.products[p.ID] = true
		}
	}
	for _, s := range c.Subgroups {
		if s.IsActive {
			idx.subgroups[s.ID] = s.ProductID
		}
	}
	return idx
}

// ProjectExists reports whether id is an active project.
func (i *Index) ProjectExists(id string) bool { return i.projects[id] }

// ProductExists reports whether id is an active product.
func (i *Index) ProductExists(id string) bool { return i.products[id] }

// SubgroupProduct returns the product an active subgroup belongs to.
func (i *Index) SubgroupProduct(id string) (string, bool) {
	p, ok := i.subgroups[id]
	return p, ok
}
