package usecase

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteResultSuccessAlwaysCarriesBothTotals(t *testing.T) {
	// A $0 cash offer is a legitimate quote; the key must still be on
	// the wire so the storefront renders "$0" instead of blank.
	raw, err := json.Marshal(QuoteResult{OK: true, Cash: 0, Credit: 120})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true,"cash":0,"credit":120}`, string(raw))
}

func TestQuoteResultRejectionCarriesOnlyReason(t *testing.T) {
	raw, err := json.Marshal(QuoteResult{
		OK:    false,
		Error: "Please select at least one item.",
		Code:  CodeEmptySelection,
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":false,"error":"Please select at least one item."}`, string(raw))
}
