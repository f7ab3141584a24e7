package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"park-ticketing/internal/alert"
	"park-ticketing/internal/logger"
	"park-ticketing/internal/models"
	"park-ticketing/internal/storage"
	"park-ticketing/internal/utils"
)

// Terminal webhook outcomes returned to Stripe with a 200. Anything else is
// a handler failure and Stripe will redeliver, which is exactly what the
// idempotency marker is there for.
const (
	WebhookOutcomeOK        = "ok"
	WebhookOutcomeDuplicate = "duplicate"
	WebhookOutcomeNoEmail   = "ok-no-email"
)

// CustomerResolver looks up a customer email by Stripe customer id; the last
// fallback of the email resolution chain.
type CustomerResolver interface {
	LookupEmail(ctx context.Context, customerID string) (string, error)
}

type stripeCustomerResolver struct {
	client *client.API
}

func NewStripeCustomerResolver(sc *client.API) CustomerResolver {
	return stripeCustomerResolver{client: sc}
}

func (r stripeCustomerResolver) LookupEmail(ctx context.Context, customerID string) (string, error) {
	customer, err := r.client.Customers.Get(customerID, nil)
	if err != nil {
		return "", err
	}
	return customer.Email, nil
}

// EmailDispatcher sends the confirmation email for one reservation.
type EmailDispatcher interface {
	SendReservationEmail(ctx context.Context, email, reservationID string) error
}

// EventPublisher fans processed reservations out to Kafka.
type EventPublisher interface {
	PublishReservationEvent(event *models.ReservationEvent) error
}

type WebhookService struct {
	store     storage.Store
	customers CustomerResolver
	email     EmailDispatcher
	publisher EventPublisher
	alerts    *alert.Client
	log       *logger.Logger
}

func NewWebhookService(store storage.Store, customers CustomerResolver, email EmailDispatcher, publisher EventPublisher, alerts *alert.Client, log *logger.Logger) *WebhookService {
	return &WebhookService{
		store:     store,
		customers: customers,
		email:     email,
		publisher: publisher,
		alerts:    alerts,
		log:       log,
	}
}

// HandleCheckoutCompleted processes one checkout.session.completed event:
// idempotency insert, email resolution, cart snapshot parse, then one
// reservation row per unit of quantity. Reservations created before a
// mid-loop failure are not rolled back; the alert carries the session id so
// support can reconcile.
func (s *WebhookService) HandleCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession) (string, error) {
	if err := s.store.InsertStripeSession(ctx, session.ID); err != nil {
		if errors.Is(err, storage.ErrSessionAlreadyProcessed) {
			s.log.LogPayment("DUPLICATE", session.ID, "Session already processed, skipping")
			return WebhookOutcomeDuplicate, nil
		}
		return "", fmt.Errorf("failed to record session: %w", err)
	}

	email := s.resolveCustomerEmail(ctx, session)
	if email == "" {
		s.log.Warn("WEBHOOK", "No customer email resolvable for session "+session.ID)
		s.alerts.Send(ctx, fmt.Sprintf("⚠️ Webhook %s: aucun email client résolu, réservations non créées", session.ID))
		return WebhookOutcomeNoEmail, nil
	}

	items := models.ParseCartMetadata(session.Metadata["cart"])
	if len(items) == 0 {
		s.log.Warn("WEBHOOK", "Empty or malformed cart metadata for session "+session.ID)
	}

	created := 0
	for _, item := range items {
		quantity := item.Quantity
		if quantity < 1 {
			quantity = 1
		}

		for unit := 0; unit < quantity; unit++ {
			reservation := &models.Reservation{
				ID:                utils.GenerateUUID(),
				ReservationNumber: utils.GenerateReservationNumber(),
				ClientEmail:       email,
				PassID:            item.Pass.ID,
				PaymentStatus:     models.StatusPaid,
				CreatedAt:         time.Now(),
			}
			if item.EventActivity != nil {
				reservation.EventActivityID = &item.EventActivity.ID
				if item.TimeSlot != nil {
					reservation.TimeSlotID = &item.TimeSlot.ID
				}
			}

			if err := s.store.SaveReservation(ctx, reservation); err != nil {
				s.alerts.Send(ctx, fmt.Sprintf("🚨 Webhook %s: échec de création de réservation après %d unités: %v", session.ID, created, err))
				return "", fmt.Errorf("failed to save reservation: %w", err)
			}

			if item.EventActivity != nil {
				link := &models.ReservationActivity{
					ID:              utils.GenerateUUID(),
					ReservationID:   reservation.ID,
					EventActivityID: item.EventActivity.ID,
					TimeSlotID:      reservation.TimeSlotID,
				}
				if err := s.store.SaveReservationActivity(ctx, link); err != nil {
					s.alerts.Send(ctx, fmt.Sprintf("🚨 Webhook %s: échec de liaison d'activité pour %s: %v", session.ID, reservation.ReservationNumber, err))
					return "", fmt.Errorf("failed to save reservation activity: %w", err)
				}
			}

			created++

			// Email failure is decoupled from reservation correctness.
			if err := s.email.SendReservationEmail(ctx, email, reservation.ID); err != nil {
				s.log.Error("WEBHOOK", fmt.Sprintf("Email dispatch failed for reservation %s: %v", reservation.ReservationNumber, err))
				s.alerts.Send(ctx, fmt.Sprintf("⚠️ Email non envoyé pour la réservation %s (session %s)", reservation.ReservationNumber, session.ID))
			}

			s.publishEvent(&models.ReservationEvent{
				Type:        "reservation.created",
				SessionID:   session.ID,
				Reservation: reservation,
				Timestamp:   time.Now(),
			})
		}
	}

	s.log.LogPayment("COMPLETED", session.ID, fmt.Sprintf("Created %d reservations", created))

	s.publishEvent(&models.ReservationEvent{
		Type:      "payment.completed",
		SessionID: session.ID,
		Timestamp: time.Now(),
	})

	return WebhookOutcomeOK, nil
}

// resolveCustomerEmail walks the fallback chain: session customer details,
// the legacy top-level field, the customer metadata snapshot, then a remote
// customer lookup.
func (s *WebhookService) resolveCustomerEmail(ctx context.Context, session *stripe.CheckoutSession) string {
	if session.CustomerDetails != nil && session.CustomerDetails.Email != "" {
		return session.CustomerDetails.Email
	}
	if session.CustomerEmail != "" {
		return session.CustomerEmail
	}
	if customer, ok := models.ParseCustomerMetadata(session.Metadata["customer"]); ok && customer.Email != "" {
		return customer.Email
	}
	if session.Customer != nil && session.Customer.ID != "" && s.customers != nil {
		email, err := s.customers.LookupEmail(ctx, session.Customer.ID)
		if err != nil {
			s.log.Error("WEBHOOK", fmt.Sprintf("Customer lookup failed for %s: %v", session.Customer.ID, err))
			return ""
		}
		return email
	}
	return ""
}

func (s *WebhookService) publishEvent(event *models.ReservationEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishReservationEvent(event); err != nil {
		s.log.Error("KAFKA", fmt.Sprintf("Failed to publish %s event: %v", event.Type, err))
	}
}
