package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"golang.org/x/exp/rand"

	"github.com/sushihentaime/inkpost/internal/common"
)

func NewMailService(mb common.MessageConsumer, host, username, password, sender string, port int, logger *slog.Logger) *MailService {
	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:     mb,
		m:      NewMailer(host, port, username, password, sender, NewTemplate()),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		sleep:  sleepContext,
	}
}

// SendWelcomeEmail consumes user.created events and mails a welcome message
// to every new user. Consumption stops when the service is closed or the
// delivery channel is closed.
func (s *MailService) SendWelcomeEmail() error {
	msgs, err := s.mb.Consume(common.UserCreatedKey, common.UserExchange, common.UserCreatedQueue)
	if err != nil {
		return err
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				s.handleUserCreated(msg)

			case <-s.ctx.Done():
				s.logger.Info("stopping SendWelcomeEmail due to context cancellation")
				return
			}
		}
	}()

	return nil
}

// handleUserCreated delivers one welcome email, retrying with exponential
// backoff and jitter. The message is acknowledged whatever the outcome.
func (s *MailService) handleUserCreated(msg amqp.Delivery) {
	defer s.ack(msg)

	var event common.UserCreatedEvent
	if err := json.Unmarshal(msg.Body, &event); err != nil {
		s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
		return
	}

	if event.Email == "" {
		s.logger.Error("user.created event without email")
		return
	}

	data := welcomeData{FirstName: event.FirstName}

	for attempt := 0; attempt < maxRetries; attempt++ {
		err := s.m.send(event.Email, data, welcomeTemplate)
		if err == nil {
			s.logger.Info("welcome email sent", slog.String("email", event.Email))
			return
		}

		if attempt == maxRetries-1 {
			break
		}

		delay := time.Duration(rand.Int63n(int64(baseDelay) << uint(attempt)))
		s.logger.Info("delaying welcome email", slog.String("email", event.Email), slog.Int("attempt", attempt), slog.Duration("delay", delay), slog.String("error", err.Error()))
		if !s.sleep(s.ctx, delay) {
			return
		}
	}

	s.logger.Error("could not send welcome email", slog.String("email", event.Email))
}

func (s *MailService) ack(msg amqp.Delivery) {
	if err := msg.Ack(false); err != nil {
		s.logger.Error("could not ack message", slog.String("error", err.Error()))
	}
}

func (s *MailService) Close() {
	s.cancel()
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
