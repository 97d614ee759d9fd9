package usecase

import (
	"context"
	"encoding/json"
	"math"

	"github.com/gamertech/tradein-backend/internal/entity"
	"github.com/gamertech/tradein-backend/internal/infra/queue"
)

// RecordLeadUseCase normalizes a lead submission and hands it to the queue.
// The handler acknowledges the storefront before persistence happens, so
// everything past the publish is invisible to the caller.
type RecordLeadUseCase struct {
	Producer queue.LeadProducerInterface
}

func NewRecordLeadUseCase(producer queue.LeadProducerInterface) *RecordLeadUseCase {
	return &RecordLeadUseCase{Producer: producer}
}

// Execute validates the identity, folds the nested quote fields into the
// top-level ones and publishes the payload. The stage comes from the
// endpoint, never from the client.
func (uc *RecordLeadUseCase) Execute(ctx context.Context, sub LeadSubmission, stage string) error {
	email := NormalizeEmail(sub.Email)
	phone := NormalizePhone(sub.Phone)

	if email == "" || phone == "" {
		return &DomainError{
			Code:    "MISSING_IDENTITY",
			Message: "lead submission has no usable email/phone identity",
		}
	}

	payload := queue.LeadPayload{
		Email:        email,
		Phone:        phone,
		Name:         cleanOptional(sub.Name),
		Stage:        stage,
		Category:     sub.Category,
		Mode:         sub.Mode,
		Selections:   pickSelections(sub),
		Quantity:     roundedInt(pick(sub.Quantity, quoteQuantity(sub))),
		Cash:         roundedInt(pick(sub.Cash, quoteCash(sub))),
		Credit:       roundedInt(pick(sub.Credit, quoteCredit(sub))),
		Page:         sub.Page,
		ConsentEmail: sub.Consent,
	}

	if err := uc.Producer.PublishLead(ctx, payload); err != nil {
		return &TechnicalError{
			Code:    "LEAD_ENQUEUE_FAILED",
			Message: err.Error(),
		}
	}

	return nil
}

// The step-2 storefront posts the numbers nested under "quote"; step 1
// posts them top-level. Top-level wins when both are present. A literal
// JSON null (the storefront sends `"selections": null` when nothing was
// picked yet) counts as absent, not as a value.
func pickSelections(sub LeadSubmission) json.RawMessage {
	if entity.JSONPresent(sub.Selections) {
		return sub.Selections
	}
	if sub.Quote != nil && entity.JSONPresent(sub.Quote.Selections) {
		return sub.Quote.Selections
	}
	return nil
}

func quoteQuantity(sub LeadSubmission) *float64 {
	if sub.Quote == nil {
		return nil
	}
	return sub.Quote.Quantity
}

func quoteCash(sub LeadSubmission) *float64 {
	if sub.Quote == nil {
		return nil
	}
	return sub.Quote.Cash
}

func quoteCredit(sub LeadSubmission) *float64 {
	if sub.Quote == nil {
		return nil
	}
	return sub.Quote.Credit
}

func pick(first, second *float64) *float64 {
	if first != nil {
		return first
	}
	return second
}

func roundedInt(f *float64) *int {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return nil
	}
	n := int(math.Round(*f))
	return &n
}
