package entity

import "strings"

// Value Object: Offer — what we pay for one price-list line.
type Offer struct {
	Cash   float64 `json:"cash"`
	Credit float64 `json:"credit"`
}

// Catalog maps a composite offer key to its offer. Catalogs are built
// wholesale by the pricing loader and never mutated afterwards; reloads
// swap the whole map.
type Catalog map[string]Offer

// BrandAny is the canonical placeholder for rows that apply to any brand.
const BrandAny = "N/A"

func (c Catalog) Lookup(category, subgroup, brand, item string) (Offer, bool) {
	offer, ok := c[OfferKey(category, subgroup, brand, item)]
	return offer, ok
}

// OfferKey builds the composite catalog key. Segments are trimmed and
// internal whitespace collapsed so the storefront payload and the price
// sheet agree on the same key. An empty or "any" brand maps to BrandAny.
func OfferKey(category, subgroup, brand, item string) string {
	b := CleanField(brand)
	if b == "" || strings.EqualFold(b, "any") {
		b = BrandAny
	}
	return CleanField(category) + "||" + CleanField(subgroup) + "||" + b + "||" + CleanField(item)
}

// CleanField trims and collapses runs of whitespace to a single space.
func CleanField(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
