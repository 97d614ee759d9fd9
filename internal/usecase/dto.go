package usecase

import "encoding/json"

// Selection is one line of a customer's trade-in request. Field casing
// matches the storefront payload.
type Selection struct {
	Category string  `json:"Category"`
	Subgroup string  `json:"Subgroup"`
	Brand    string  `json:"Brand"`
	Item     string  `json:"Item"`
	Quantity float64 `json:"Quantity,omitempty"`
}

type QuoteInput struct {
	Selections []Selection `json:"selections"`
	Mode       string      `json:"mode"` // "part" | "pc"
	PCQuantity float64     `json:"pcQuantity,omitempty"`
}

// QuoteResult is the discriminated quote outcome: either both totals, or
// a rejection reason. Never partially populated.
type QuoteResult struct {
	OK     bool   `json:"ok"`
	Cash   int    `json:"cash"`
	Credit int    `json:"credit"`
	Error  string `json:"error,omitempty"`

	// Code is the machine-readable rejection code, kept off the wire;
	// the storefront only reads ok/error.
	Code string `json:"-"`
}

// MarshalJSON enforces the discriminated shape on the wire: a success
// always carries both totals, even legitimate zeros, and a rejection
// carries only the reason.
func (r QuoteResult) MarshalJSON() ([]byte, error) {
	if !r.OK {
		return json.Marshal(struct {
			OK    bool   `json:"ok"`
			Error string `json:"error"`
		}{OK: false, Error: r.Error})
	}
	return json.Marshal(struct {
		OK     bool `json:"ok"`
		Cash   int  `json:"cash"`
		Credit int  `json:"credit"`
	}{OK: true, Cash: r.Cash, Credit: r.Credit})
}

// LeadSubmission is the payload both lead-capture endpoints accept: the
// quote request shape plus contact fields. Quote numbers may arrive
// top-level or nested under "quote" depending on which storefront step
// posted them.
type LeadSubmission struct {
	Email   string  `json:"email"`
	Phone   string  `json:"phone"`
	Name    string  `json:"name"`
	Consent bool    `json:"consent"`
	Page    *string `json:"page"`

	Category   *string         `json:"category"`
	Mode       *string         `json:"mode"`
	Selections json.RawMessage `json:"selections"`
	Quantity   *float64        `json:"quantity"`
	Cash       *float64        `json:"cash"`
	Credit     *float64        `json:"credit"`

	Quote *struct {
		Selections json.RawMessage `json:"selections"`
		Quantity   *float64        `json:"quantity"`
		Cash       *float64        `json:"cash"`
		Credit     *float64        `json:"credit"`
	} `json:"quote"`
}
