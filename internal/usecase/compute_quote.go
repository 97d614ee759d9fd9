package usecase

import (
	"fmt"
	"math"

	"github.com/gamertech/tradein-backend/internal/entity"
)

const (
	CodeEmptySelection    = "EMPTY_SELECTION"
	CodePriceNotFound     = "PRICE_NOT_FOUND"
	CodeIncompletePcBuild = "INCOMPLETE_PC_BUILD"
)

// Full-PC bonus, added once per quote on top of the part offers.
const (
	pcBonusCash   = 50.0
	pcBonusCredit = 100.0
)

// ComputeQuote prices a selection list against a catalog snapshot. Pure:
// no storage, no network, no clock. All-or-nothing — a single unknown
// part rejects the whole quote rather than returning a partial sum.
func ComputeQuote(catalog entity.Catalog, input QuoteInput) QuoteResult {
	if len(input.Selections) == 0 {
		return quoteFailure(CodeEmptySelection, "Missing selections")
	}

	var cash, credit float64

	for _, sel := range input.Selections {
		offer, ok := catalog.Lookup(sel.Category, sel.Subgroup, sel.Brand, sel.Item)
		if !ok {
			return quoteFailure(CodePriceNotFound, fmt.Sprintf(
				"No price found for: %s / %s / %s", sel.Category, sel.Brand, sel.Item))
		}

		qty := coerceQuantity(sel.Quantity)
		cash += offer.Cash * qty
		credit += offer.Credit * qty
	}

	// PC rule: must have CPU + GPU, then add the build bonus once and
	// scale the whole total for bulk PC quoting.
	if input.Mode == "pc" {
		hasCPU := false
		hasGPU := false
		for _, sel := range input.Selections {
			switch entity.CleanField(sel.Category) {
			case "CPU":
				hasCPU = true
			case "GPU":
				hasGPU = true
			}
		}
		if !hasCPU || !hasGPU {
			return quoteFailure(CodeIncompletePcBuild, "PC quote requires at least CPU + GPU.")
		}

		cash += pcBonusCash
		credit += pcBonusCredit

		pcQty := coerceQuantity(input.PCQuantity)
		cash *= pcQty
		credit *= pcQty
	}

	return QuoteResult{
		OK:     true,
		Cash:   int(math.Round(cash)),
		Credit: int(math.Round(credit)),
	}
}

// coerceQuantity maps anything non-positive or non-finite to 1 so a bad
// quantity can never zero out or negate a contribution.
func coerceQuantity(q float64) float64 {
	if math.IsNaN(q) || math.IsInf(q, 0) || q <= 0 {
		return 1
	}
	return q
}

func quoteFailure(code, message string) QuoteResult {
	return QuoteResult{OK: false, Code: code, Error: message}
}
