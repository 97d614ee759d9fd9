// Command followup sends the one-time trade-in nudge emails. It is built
// for cron: the default run processes one batch and exits, and the
// scheduler owns the guarantee that two runs never overlap. Pass
// -interval to keep it resident with an in-process ticker instead.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gamertech/tradein-backend/internal/infra/database"
	"github.com/gamertech/tradein-backend/internal/infra/mail"
	"github.com/gamertech/tradein-backend/internal/infra/worker"
)

func main() {
	interval := flag.Duration("interval", 0, "run continuously at this interval (0 = one batch and exit)")
	flag.Parse()

	godotenv.Load()

	db, err := database.NewDBConnection(os.Getenv("DATABASE_URL"))
	if err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	defer db.Close()

	smtpPort := 465
	if p, err := strconv.Atoi(os.Getenv("GTQ_SMTP_PORT")); err == nil {
		smtpPort = p
	}
	host := os.Getenv("GTQ_SMTP_HOST")
	if host == "" {
		host = "smtppro.zoho.com"
	}
	from := os.Getenv("GTQ_MAIL_FROM")
	if from == "" {
		from = "GamerTech <info@gamertech.ca>"
	}

	sender := mail.NewEmailSender(host, smtpPort, os.Getenv("GTQ_SMTP_USER"), os.Getenv("GTQ_SMTP_PASS"), from)
	followups := worker.NewFollowupWorker(database.NewLeadRepository(db), sender)

	if *interval <= 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		sent, failed := followups.RunOnce(ctx)
		log.Printf("Follow-up batch finished: %d sent, %d failed", sent, failed)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	followups.Start(ctx, *interval)
}
