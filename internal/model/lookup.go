package model

import "github.com/uptrace/bun"

// ProductCategory groups products by customer segment.
type ProductCategory string

const (
	CategorySchools   ProductCategory = "SKOLY"
	CategoryCompanies ProductCategory = "FIRMY"
)

// Project is a funded project a transaction can be attributed to.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:p" yaml:"-"`

	ID          string `bun:"id,pk" yaml:"id"`
	Name        string `bun:"name,notnull" yaml:"name"`
	Description string `bun:"description,notnull" yaml:"description,omitempty"`
	IsActive    bool   `bun:"is_active,notnull" yaml:"-"`
}

// Product is a sold program.
type Product struct {
	bun.BaseModel `bun:"table:products,alias:pr" yaml:"-"`

	ID          string          `bun:"id,pk" yaml:"id"`
	Name        string          `bun:"name,notnull" yaml:"name"`
	Category    ProductCategory `bun:"category,notnull" yaml:"category"`
	Description string          `bun:"description,notnull" yaml:"description,omitempty"`
	IsActive    bool            `bun:"is_active,notnull" yaml:"-"`
}

// Subgroup is a phase of a product.
type Subgroup struct {
	bun.BaseModel `bun:"table:product_subgroups,alias:sg" yaml:"-"`

	ID          string `bun:"id,pk" yaml:"id"`
	ProductID   string `bun:"product_id,notnull" yaml:"product"`
	Name        string `bun:"name,notnull" yaml:"name"`
	Description string `bun:"description,notnull" yaml:"description,omitempty"`
	IsActive    bool   `bun:"is_active,notnull" yaml:"-"`
}

// LookupChecker resolves lookup references during validation.
type LookupChecker interface {
	ProjectExists(id string) bool
	ProductExists(id string) bool
	// SubgroupProduct returns the product a subgroup belongs to.
	SubgroupProduct(id string) (string, bool)
}
