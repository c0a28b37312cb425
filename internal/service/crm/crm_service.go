package crm

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/kazwonder/tourbooking/internal/domain"
	"github.com/kazwonder/tourbooking/internal/email"
	"github.com/kazwonder/tourbooking/internal/kafka"
	"github.com/kazwonder/tourbooking/internal/repository"
)

// ErrCooldown — повторная подписка раньше, чем истёк интервал между
// попытками с одного адреса.
var ErrCooldown = errors.New("subscribe attempted too soon")

type CRMUseCase interface {
	Subscribe(ctx context.Context, input SubscribeInput) error
	Support(ctx context.Context, input SupportInput) error
}

type Producer interface {
	PublishWithRetry(ctx context.Context, topic, key string, value interface{}, maxRetries int) error
}

const publishRetries = 3

type SubscribeInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	// Honeypot — скрытое поле формы, непустое значение означает бота.
	Honeypot string `json:"website"`
}

type SupportInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	RequestType string `json:"requestType"`
	Message     string `json:"message"`
}

type CRMService struct {
	crm                repository.CRMRepository
	producer           Producer
	notificationsTopic string
	adminEmail         string
	cooldown           time.Duration
	now                func() time.Time
}

func NewCRMService(crm repository.CRMRepository, producer Producer, notificationsTopic, adminEmail string, cooldown time.Duration) *CRMService {
	return &CRMService{
		crm:                crm,
		producer:           producer,
		notificationsTopic: notificationsTopic,
		adminEmail:         adminEmail,
		cooldown:           cooldown,
		now:                time.Now,
	}
}

// Subscribe записывает подписчика и шлёт письма ему и администратору.
// Заполненный honeypot тихо принимается без каких-либо действий.
func (s *CRMService) Subscribe(ctx context.Context, input SubscribeInput) error {
	if input.Honeypot != "" {
		return nil
	}

	now := s.now()
	existing, err := s.crm.GetSubscriberByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if existing != nil && now.Sub(existing.LastSubscribedAt) < s.cooldown {
		return ErrCooldown
	}

	sub := &domain.Subscriber{
		Email:            input.Email,
		Name:             input.Name,
		LastSubscribedAt: now,
	}
	if err := s.crm.UpsertSubscriber(ctx, sub); err != nil {
		return err
	}

	s.publishSubscribeEmails(ctx, input.Name, input.Email, now)
	return nil
}

// Support сохраняет обращение и пересылает его администратору.
func (s *CRMService) Support(ctx context.Context, input SupportInput) error {
	msg := &domain.SupportMessage{
		Name:        input.Name,
		Email:       input.Email,
		Phone:       input.Phone,
		RequestType: input.RequestType,
		Message:     input.Message,
	}
	if err := s.crm.CreateSupportMessage(ctx, msg); err != nil {
		return err
	}

	if s.producer == nil || s.notificationsTopic == "" {
		return nil
	}
	html, err := email.BuildSupport(input.Name, input.Email, input.Phone, input.RequestType, input.Message)
	if err != nil {
		return err
	}
	s.publish(ctx, kafka.NotificationEvent{
		Type:    kafka.EventSupportAdmin,
		To:      s.adminEmail,
		Subject: "Новое обращение в поддержку KazWonder",
		HTML:    html,
		SentAt:  s.now(),
	})
	return nil
}

func (s *CRMService) publishSubscribeEmails(ctx context.Context, name, to string, at time.Time) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}

	if html, err := email.BuildWelcome(name); err == nil {
		s.publish(ctx, kafka.NotificationEvent{
			Type:    kafka.EventSubscribeWelcome,
			To:      to,
			Subject: "Добро пожаловать в KazWonder",
			HTML:    html,
			SentAt:  at,
		})
	}

	if html, err := email.BuildAdminSubscribe(name, to, at); err == nil {
		s.publish(ctx, kafka.NotificationEvent{
			Type:    kafka.EventSubscribeAdmin,
			To:      s.adminEmail,
			Subject: "Новая подписка на KazWonder",
			HTML:    html,
			SentAt:  at,
		})
	}
}

func (s *CRMService) publish(ctx context.Context, event kafka.NotificationEvent) {
	if err := s.producer.PublishWithRetry(ctx, s.notificationsTopic, uuid.NewString(), event, publishRetries); err != nil {
		log.Printf("WARNING: failed to publish %s notification: %v", event.Type, err)
	}
}

var _ CRMUseCase = (*CRMService)(nil)
