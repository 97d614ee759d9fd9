package pricing

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/gamertech/tradein-backend/internal/entity"
)

// Required price-sheet columns, matched by exact header name.
const (
	colCategory = "Category"
	colSubgroup = "Subgroup"
	colBrand    = "Brand"
	colItem     = "Item"
	colCash     = "Cash offer"
	colCredit   = "Store Credit Offer"
)

// Load parses CSV price-sheet text into a catalog. Quoted fields, embedded
// commas, doubled-quote escaping and CRLF all come through encoding/csv.
// A missing required column is fatal; a half-filled row is not — rows with
// a blank Category or Item are simply incomplete and skipped.
func Load(csvText string) (entity.Catalog, error) {
	reader := csv.NewReader(strings.NewReader(csvText))
	reader.FieldsPerRecord = -1 // ragged rows are tolerated, not errors

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("price sheet is not valid CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("price sheet appears empty")
	}

	header := records[0]
	index := func(name string) int {
		for i, h := range header {
			if strings.TrimSpace(h) == name {
				return i
			}
		}
		return -1
	}

	iCat := index(colCategory)
	iSub := index(colSubgroup)
	iBrand := index(colBrand)
	iItem := index(colItem)
	iCash := index(colCash)
	iCredit := index(colCredit)

	var missing []string
	for _, col := range []struct {
		name string
		idx  int
	}{
		{colCategory, iCat},
		{colSubgroup, iSub},
		{colBrand, iBrand},
		{colItem, iItem},
		{colCash, iCash},
		{colCredit, iCredit},
	} {
		if col.idx == -1 {
			missing = append(missing, col.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("price sheet missing required column(s): %s", strings.Join(missing, ", "))
	}

	catalog := make(entity.Catalog)

	for _, row := range records[1:] {
		category := field(row, iCat)
		item := field(row, iItem)
		if category == "" || item == "" {
			continue
		}

		key := entity.OfferKey(category, field(row, iSub), field(row, iBrand), item)

		// Last row wins for duplicate keys.
		catalog[key] = entity.Offer{
			Cash:   parseOffer(field(row, iCash)),
			Credit: parseOffer(field(row, iCredit)),
		}
	}

	return catalog, nil
}

func field(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return entity.CleanField(row[idx])
}

// parseOffer reads a money value from the sheet. Currency symbols, commas
// and other decorations are stripped; anything still unparsable is 0 so a
// typo in the sheet never breaks quoting. Only digits and the decimal
// point survive, so an offer can never come out negative.
func parseOffer(raw string) float64 {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	value, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return value
}
