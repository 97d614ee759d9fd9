package queue

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/gamertech/tradein-backend/internal/entity"
)

// Worker drains the lead queue and performs the actual upserts. The HTTP
// handlers only enqueue, so a storefront request never waits on Postgres;
// persistence failures surface here in the logs, not to the caller.
type Worker struct {
	Channel *amqp.Channel
	Repo    entity.LeadRepositoryInterface
}

func NewWorker(ch *amqp.Channel, repo entity.LeadRepositoryInterface) *Worker {
	return &Worker{
		Channel: ch,
		Repo:    repo,
	}
}

func (w *Worker) Start(queueName string) {
	msgs, err := w.Channel.Consume(
		queueName,
		"",    // consumer
		false, // auto-ack (manual is safer)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		log.Fatalf("❌ [WORKER] Failed to register consumer: %s", err)
	}

	forever := make(chan bool)

	go func() {
		for d := range msgs {
			var payload LeadPayload
			if err := json.Unmarshal(d.Body, &payload); err != nil {
				log.Printf("❌ [WORKER] Invalid lead JSON: %s", err)
				// Poison message. Reject without requeue so it goes to the DLQ.
				d.Nack(false, false)
				continue
			}

			if err := w.Repo.Upsert(context.Background(), payload.Lead()); err != nil {
				log.Printf("❌ [WORKER] Lead upsert failed for %s: %s", payload.Email, err)
				d.Nack(false, false)
				continue
			}

			log.Printf("✅ [WORKER] Lead saved: %s (stage=%s)", payload.Email, payload.Stage)
			d.Ack(false)
		}
	}()

	log.Printf(" [*] Lead worker waiting on queue '%s'", queueName)
	<-forever
}
