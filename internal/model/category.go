package model

import "strings"

// Category is one of the fixed expense categories.
type Category string

// The complete set of expense categories.
const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryShopping      Category = "shopping"
	CategoryBills         Category = "bills"
	CategoryHealth        Category = "health"
	CategoryGroceries     Category = "groceries"
	CategoryTravel        Category = "travel"
	CategoryEducation     Category = "education"
	CategoryOther         Category = "other"
)

var allCategories = []Category{
	CategoryFood,
	CategoryTransport,
	CategoryEntertainment,
	CategoryShopping,
	CategoryBills,
	CategoryHealth,
	CategoryGroceries,
	CategoryTravel,
	CategoryEducation,
	CategoryOther,
}

// AllCategories returns every category in declaration order.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// ParseCategory normalizes an untrusted category string.
// Anything outside the fixed set maps to CategoryOther.
func ParseCategory(s string) Category {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if c.Valid() {
		return c
	}
	return CategoryOther
}

// Valid reports whether c is one of the fixed categories.
func (c Category) Valid() bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}
