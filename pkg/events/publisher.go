package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/ds124wfegd/learnlink/config"
	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/sirupsen/logrus"
)

// Publisher ships domain events to an external system.
type Publisher interface {
	Publish(ctx context.Context, event *entity.DomainEvent) error
	Close() error
}

// New builds the broker publisher named in config.
func New(cfg *config.EventsConfig) (Publisher, error) {
	switch cfg.Broker {
	case "", "log":
		return NewLogPublisher(), nil
	case "rabbitmq":
		return NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	case "kafka":
		return NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	}
	return nil, fmt.Errorf("unknown events broker %q", cfg.Broker)
}

// LogPublisher writes events to the application log.
type LogPublisher struct{}

func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

func (p *LogPublisher) Publish(ctx context.Context, event *entity.DomainEvent) error {
	logrus.WithFields(logrus.Fields{
		"event_id":     event.ID,
		"event_type":   event.Type,
		"booking_id":   event.BookingID,
		"payment_id":   event.PaymentID,
		"student_id":   event.StudentID,
		"professor_id": event.ProfessorID,
	}).Info("Domain event")
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// Multi fans every event out to all publishers and joins their errors.
type Multi struct {
	publishers []Publisher
}

func NewMulti(publishers ...Publisher) *Multi {
	m := &Multi{}
	for _, p := range publishers {
		if p != nil {
			m.publishers = append(m.publishers, p)
		}
	}
	return m
}

func (m *Multi) Publish(ctx context.Context, event *entity.DomainEvent) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Close() error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
