package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/gamertech/tradein-backend/internal/entity"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `id, email, phone, name, stage, category, mode, selections,
	quantity, cash, credit, page, consent_email,
	followup_due_at, followup_sent_at, followup_error, created_at, updated_at`

// Upsert merges the submission into the stored lead inside one
// transaction. The row is locked FOR UPDATE so the two unauthenticated
// entry points can race on the same identity without interleaving their
// field merges. A concurrent first-insert loses the unique-index race at
// most once; the retry then finds the row and merges normally.
func (r *LeadRepository) Upsert(ctx context.Context, incoming *entity.Lead) error {
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = r.tryUpsert(ctx, incoming)
		if !isUniqueViolation(err) {
			return err
		}
	}
	return err
}

func (r *LeadRepository) tryUpsert(ctx context.Context, incoming *entity.Lead) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("lead upsert begin failed: %w", err)
	}
	defer tx.Rollback()

	existing, err := r.findForUpdate(ctx, tx, incoming.Email, incoming.Phone)
	if err != nil {
		return err
	}

	merged := entity.MergeSubmission(existing, incoming, time.Now())

	if existing == nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO gtq_leads (`+leadColumns+`)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
			merged.ID, merged.Email, merged.Phone, merged.Name, merged.Stage,
			merged.Category, merged.Mode, nullJSON(merged.Selections),
			merged.Quantity, merged.Cash, merged.Credit, merged.Page,
			merged.ConsentEmail, merged.FollowupDueAt, merged.FollowupSentAt,
			merged.FollowupError, merged.CreatedAt, merged.UpdatedAt,
		)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE gtq_leads SET
				name = $2, stage = $3, category = $4, mode = $5,
				selections = $6, quantity = $7, cash = $8, credit = $9,
				page = $10, consent_email = $11,
				followup_due_at = $12, followup_sent_at = $13, followup_error = $14,
				updated_at = $15
			WHERE id = $1`,
			merged.ID, merged.Name, merged.Stage, merged.Category, merged.Mode,
			nullJSON(merged.Selections), merged.Quantity, merged.Cash,
			merged.Credit, merged.Page, merged.ConsentEmail,
			merged.FollowupDueAt, merged.FollowupSentAt, merged.FollowupError,
			merged.UpdatedAt,
		)
	}
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *LeadRepository) findForUpdate(ctx context.Context, tx *sql.Tx, email, phone string) (*entity.Lead, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT `+leadColumns+`
		FROM gtq_leads
		WHERE email = $1 AND phone = $2
		FOR UPDATE`,
		email, phone,
	)

	lead, err := scanLead(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lead lookup failed: %w", err)
	}
	return lead, nil
}

// DueFollowups pulls the next batch of leads owed a follow-up email:
// consented, browsing, due, and never sent — oldest due first.
func (r *LeadRepository) DueFollowups(ctx context.Context, limit int, now time.Time) ([]*entity.Lead, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+leadColumns+`
		FROM gtq_leads
		WHERE consent_email = TRUE
		  AND followup_sent_at IS NULL
		  AND followup_due_at IS NOT NULL
		  AND followup_due_at <= $1
		  AND email <> ''
		  AND stage = $2
		ORDER BY followup_due_at ASC
		LIMIT $3`,
		now, entity.StageBrowsing, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("due follow-up query failed: %w", err)
	}
	defer rows.Close()

	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("due follow-up scan failed: %w", err)
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func (r *LeadRepository) MarkFollowupSent(ctx context.Context, id string, sentAt time.Time) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE gtq_leads
		SET followup_sent_at = $2,
		    followup_error = NULL,
		    updated_at = NOW()
		WHERE id = $1`,
		id, sentAt,
	)
	return err
}

func (r *LeadRepository) RecordFollowupError(ctx context.Context, id string, detail string) error {
	_, err := r.DB.ExecContext(ctx, `
		UPDATE gtq_leads
		SET followup_error = $2,
		    updated_at = NOW()
		WHERE id = $1`,
		id, detail,
	)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner) (*entity.Lead, error) {
	var lead entity.Lead
	err := row.Scan(
		&lead.ID, &lead.Email, &lead.Phone, &lead.Name, &lead.Stage,
		&lead.Category, &lead.Mode, &lead.Selections,
		&lead.Quantity, &lead.Cash, &lead.Credit, &lead.Page,
		&lead.ConsentEmail,
		&lead.FollowupDueAt, &lead.FollowupSentAt, &lead.FollowupError,
		&lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
