package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/gamertech/tradein-backend/internal/entity"
)

// LeadPayload is the normalized lead submission as it travels through the
// queue. Email and phone are already normalized by the usecase; nil fields
// mean "keep whatever is stored" when the worker merges it in.
type LeadPayload struct {
	Email        string          `json:"email"`
	Phone        string          `json:"phone"`
	Name         *string         `json:"name,omitempty"`
	Stage        string          `json:"stage"`
	Category     *string         `json:"category,omitempty"`
	Mode         *string         `json:"mode,omitempty"`
	Selections   json.RawMessage `json:"selections,omitempty"`
	Quantity     *int            `json:"quantity,omitempty"`
	Cash         *int            `json:"cash,omitempty"`
	Credit       *int            `json:"credit,omitempty"`
	Page         *string         `json:"page,omitempty"`
	ConsentEmail bool            `json:"consent_email"`
}

// Lead converts the payload into the incoming lead the repository merges.
func (p LeadPayload) Lead() *entity.Lead {
	return &entity.Lead{
		Email:        p.Email,
		Phone:        p.Phone,
		Name:         p.Name,
		Stage:        p.Stage,
		Category:     p.Category,
		Mode:         p.Mode,
		Selections:   p.Selections,
		Quantity:     p.Quantity,
		Cash:         p.Cash,
		Credit:       p.Credit,
		Page:         p.Page,
		ConsentEmail: p.ConsentEmail,
	}
}

type LeadProducerInterface interface {
	PublishLead(ctx context.Context, payload LeadPayload) error
}

type RabbitMQProducer struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func NewProducer(conn *amqp.Connection, ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{
		Conn: conn,
		Ch:   ch,
	}
}

func (p *RabbitMQProducer) PublishLead(ctx context.Context, payload LeadPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("lead payload marshal failed: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false, // Mandatory
		false, // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent, // survives a broker restart
		},
	)
	if err != nil {
		return fmt.Errorf("lead publish failed: %w", err)
	}

	return nil
}
