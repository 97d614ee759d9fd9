package entity

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	StageBrowsing  = "BROWSING"
	StageCompleted = "COMPLETED"
)

// FollowupDelay is how long after a browsing touch we wait before nudging
// a lead that never locked in their trade-in.
const FollowupDelay = 1 * time.Hour

// Lead is one prospective trade-in customer, identified by the pair
// (normalized email, 10-digit phone). Everything besides the identity is
// optional: the storefront sends whatever the visitor got to before
// dropping off.
type Lead struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Name         *string         `json:"name,omitempty"`
	Stage        string          `json:"stage"` // BROWSING | COMPLETED
	Category     *string         `json:"category,omitempty"`
	Mode         *string         `json:"mode,omitempty"`
	Selections   json.RawMessage `json:"selections,omitempty"`
	Quantity     *int            `json:"quantity,omitempty"`
	Cash         *int            `json:"cash,omitempty"`
	Credit       *int            `json:"credit,omitempty"`
	Page         *string         `json:"page,omitempty"`
	ConsentEmail bool            `json:"consent_email"`

	FollowupDueAt  *time.Time `json:"followup_due_at,omitempty"`
	FollowupSentAt *time.Time `json:"followup_sent_at,omitempty"`
	FollowupError  *string    `json:"followup_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MergeSubmission folds a new submission into the stored lead and returns
// the record that should be persisted. A nil existing lead means this is
// the first submission for the identity.
//
// Merge rules: every field keeps the stored value unless the submission
// carries a non-null one; stage always takes the submitted value; consent
// sticks once given. Follow-up bookkeeping:
//
//   - BROWSING schedules followup_due_at = now + FollowupDelay, but only
//     when nothing is scheduled and nothing was sent. Repeat browsing
//     never refreshes the clock, and a sent follow-up is never resent.
//   - COMPLETED clears due/sent/error unconditionally; a completed
//     trade-in needs no nudge. If the same identity later browses again
//     it re-enters the scheduling branch as if fresh.
func MergeSubmission(existing, incoming *Lead, now time.Time) *Lead {
	var out Lead

	if existing == nil {
		out = *incoming
		if !JSONPresent(out.Selections) {
			out.Selections = nil
		}
		out.ID = uuid.New().String()
		out.FollowupDueAt = nil
		out.FollowupSentAt = nil
		out.FollowupError = nil
		out.CreatedAt = now
	} else {
		out = *existing
		if incoming.Name != nil {
			out.Name = incoming.Name
		}
		if incoming.Category != nil {
			out.Category = incoming.Category
		}
		if incoming.Mode != nil {
			out.Mode = incoming.Mode
		}
		if JSONPresent(incoming.Selections) {
			out.Selections = incoming.Selections
		}
		if incoming.Quantity != nil {
			out.Quantity = incoming.Quantity
		}
		if incoming.Cash != nil {
			out.Cash = incoming.Cash
		}
		if incoming.Credit != nil {
			out.Credit = incoming.Credit
		}
		if incoming.Page != nil {
			out.Page = incoming.Page
		}
		out.ConsentEmail = out.ConsentEmail || incoming.ConsentEmail
		out.Stage = incoming.Stage
	}
	out.UpdatedAt = now

	switch out.Stage {
	case StageCompleted:
		out.FollowupDueAt = nil
		out.FollowupSentAt = nil
		out.FollowupError = nil
	default: // BROWSING
		if out.FollowupDueAt == nil && out.FollowupSentAt == nil {
			due := now.Add(FollowupDelay)
			out.FollowupDueAt = &due
		}
	}

	return &out
}

// JSONPresent reports whether a raw JSON blob carries an actual value.
// An explicit JSON null means "no value" for merge purposes, the same as
// a missing key — it must never clobber stored selections.
func JSONPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

type LeadRepositoryInterface interface {
	// Upsert merges the submission into storage atomically per identity.
	Upsert(ctx context.Context, lead *Lead) error

	// DueFollowups returns up to limit leads whose follow-up is due and
	// unsent, oldest due first.
	DueFollowups(ctx context.Context, limit int, now time.Time) ([]*Lead, error)

	MarkFollowupSent(ctx context.Context, id string, sentAt time.Time) error
	RecordFollowupError(ctx context.Context, id string, detail string) error
}
