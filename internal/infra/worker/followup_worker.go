package worker

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/gamertech/tradein-backend/internal/entity"
	"github.com/gamertech/tradein-backend/internal/infra/http/middleware"
)

// FollowupBatchSize caps how many nudge emails one run may send.
const FollowupBatchSize = 25

type FollowupSender interface {
	SendFollowup(to, name string, selections json.RawMessage, cash, credit int) error
}

// FollowupWorker sends the one-time nudge to leads that browsed but never
// locked in. Each lead is handled independently: a dead mailbox or SMTP
// hiccup is recorded on that lead and the batch moves on. Leads that fail
// stay unsent, so the next run picks them up again — that is the only
// retry mechanism.
type FollowupWorker struct {
	repo      entity.LeadRepositoryInterface
	sender    FollowupSender
	batchSize int
}

func NewFollowupWorker(repo entity.LeadRepositoryInterface, sender FollowupSender) *FollowupWorker {
	return &FollowupWorker{
		repo:      repo,
		sender:    sender,
		batchSize: FollowupBatchSize,
	}
}

// RunOnce processes a single batch and reports how many emails were sent
// and how many failed. Overlap protection is the scheduler's job: run this
// from cron (or one in-process ticker), never from two places at once.
func (w *FollowupWorker) RunOnce(ctx context.Context) (sent, failed int) {
	leads, err := w.repo.DueFollowups(ctx, w.batchSize, time.Now())
	if err != nil {
		log.Printf("❌ Due follow-up query failed: %v", err)
		return 0, 0
	}

	for _, lead := range leads {
		name := ""
		if lead.Name != nil {
			name = entity.CleanField(*lead.Name)
		}
		cash := 0
		if lead.Cash != nil {
			cash = *lead.Cash
		}
		credit := 0
		if lead.Credit != nil {
			credit = *lead.Credit
		}

		if err := w.sender.SendFollowup(lead.Email, name, lead.Selections, cash, credit); err != nil {
			failed++
			middleware.RecordFollowupEmail("failed")
			log.Printf("❌ Follow-up to %s failed: %v", lead.Email, err)
			if recErr := w.repo.RecordFollowupError(ctx, lead.ID, err.Error()); recErr != nil {
				log.Printf("⚠️ Could not record follow-up error for %s: %v", lead.ID, recErr)
			}
			continue
		}

		sent++
		middleware.RecordFollowupEmail("sent")
		if err := w.repo.MarkFollowupSent(ctx, lead.ID, time.Now()); err != nil {
			// The email went out but the mark failed; log loudly, the
			// next run would send a duplicate.
			log.Printf("❌ Sent follow-up to %s but could not mark it: %v", lead.Email, err)
		}
	}

	if sent > 0 || failed > 0 {
		log.Printf("✅ Follow-up run done: %d sent, %d failed", sent, failed)
	}
	return sent, failed
}

// Start runs batches on a ticker until the context ends, for deployments
// that prefer an in-process scheduler over cron.
func (w *FollowupWorker) Start(ctx context.Context, interval time.Duration) {
	log.Printf("🕒 Follow-up worker started (every %s, batch %d)", interval, w.batchSize)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.RunOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("⚠️ Follow-up worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}
