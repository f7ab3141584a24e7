package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"park-ticketing/internal/config"
	"park-ticketing/internal/logger"
	"park-ticketing/internal/models"
	"park-ticketing/internal/storage"
)

var (
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrMissingReservationID = errors.New("reservation id is required")
	ErrEmailProviderFailed  = errors.New("email provider request failed")
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const defaultResendBaseURL = "https://api.resend.com"

type resendAttachment struct {
	Filename  string `json:"filename"`
	Content   string `json:"content"`
	ContentID string `json:"content_id,omitempty"`
}

type resendMessage struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html"`
	Attachments []resendAttachment `json:"attachments,omitempty"`
}

// EmailService sends reservation confirmations (with the reservation number
// as a QR code) and back-office communication blasts through the Resend API.
type EmailService struct {
	store      storage.Store
	httpClient *http.Client
	baseURL    string
	apiKey     string
	sender     string
	publisher  EventPublisher
	log        *logger.Logger
}

func NewEmailService(store storage.Store, cfg config.EmailConfig, publisher EventPublisher, log *logger.Logger) *EmailService {
	return &EmailService{
		store:      store,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    defaultResendBaseURL,
		apiKey:     cfg.ResendAPIKey,
		sender:     cfg.Sender,
		publisher:  publisher,
		log:        log,
	}
}

// SetBaseURL overrides the provider endpoint; tests point it at a local server.
func (s *EmailService) SetBaseURL(url string) {
	s.baseURL = url
}

// SendReservationEmail looks up the reservation scoped by id AND email (so a
// guessed id without the matching email resolves to not-found) and sends the
// confirmation with the QR code attached inline.
func (s *EmailService) SendReservationEmail(ctx context.Context, email, reservationID string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	if reservationID == "" {
		return ErrMissingReservationID
	}

	reservation, err := s.store.GetReservationByIDAndEmail(ctx, reservationID, email)
	if err != nil {
		return err
	}

	png, err := qrcode.Encode(reservation.ReservationNumber, qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	msg := resendMessage{
		From:    s.sender,
		To:      []string{email},
		Subject: "🎟 Votre réservation " + reservation.ReservationNumber,
		HTML:    reservationEmailHTML(reservation),
		Attachments: []resendAttachment{{
			Filename:  "billet-" + reservation.ReservationNumber + ".png",
			Content:   base64.StdEncoding.EncodeToString(png),
			ContentID: "qr-code",
		}},
	}

	if err := s.send(ctx, msg); err != nil {
		s.log.Error("MAIL", fmt.Sprintf("Failed to send reservation email for %s: %v", reservation.ReservationNumber, err))
		return err
	}

	s.log.LogEmail("SENT", email, "Reservation email for "+reservation.ReservationNumber)
	return nil
}

// RequestReservationEmail resends the confirmation for the most recent
// reservation attached to an email address. found=false is not an error.
func (s *EmailService) RequestReservationEmail(ctx context.Context, email string) (found bool, sent bool, err error) {
	if !emailPattern.MatchString(email) {
		return false, false, ErrInvalidEmail
	}

	reservation, err := s.store.GetLatestReservationByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrReservationNotFound) {
			return false, false, nil
		}
		return false, false, err
	}

	if err := s.SendReservationEmail(ctx, email, reservation.ID); err != nil {
		return true, false, err
	}
	return true, true, nil
}

// SendBlast delivers a back-office communication to each recipient.
// Individual failures are counted, not fatal.
func (s *EmailService) SendBlast(ctx context.Context, subject, html string, recipients []string) (sent int, failed int) {
	for _, recipient := range recipients {
		if !emailPattern.MatchString(recipient) {
			failed++
			continue
		}
		msg := resendMessage{
			From:    s.sender,
			To:      []string{recipient},
			Subject: subject,
			HTML:    html,
		}
		if err := s.send(ctx, msg); err != nil {
			s.log.Error("MAIL", fmt.Sprintf("Blast delivery failed for %s: %v", recipient, err))
			failed++
			continue
		}
		sent++
	}

	s.log.LogEmail("BLAST", fmt.Sprintf("%d recipients", len(recipients)), fmt.Sprintf("Sent %d, failed %d", sent, failed))

	if s.publisher != nil && sent > 0 {
		event := &models.ReservationEvent{
			Type:      "communication.sent",
			Timestamp: time.Now(),
		}
		if err := s.publisher.PublishReservationEvent(event); err != nil {
			s.log.Error("KAFKA", "Failed to publish communication event: "+err.Error())
		}
	}
	return sent, failed
}

func (s *EmailService) send(ctx context.Context, msg resendMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmailProviderFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: provider answered %d", ErrEmailProviderFailed, resp.StatusCode)
	}
	return nil
}

func reservationEmailHTML(reservation *models.Reservation) string {
	return fmt.Sprintf(
		`<div style="font-family: Arial, sans-serif; max-width: 500px; margin: auto; border: 2px solid #1a7a4a; border-radius: 10px; padding: 20px; background-color: #f4fbf7;">
			<div style="text-align: center;">
				<h2 style="color: #1a7a4a;">🎟 Votre réservation est confirmée</h2>
				<p style="font-size: 16px; color: #555;">Numéro de réservation :</p>
				<div style="font-size: 28px; font-weight: bold; color: #000; background-color: #d9f2e4; padding: 10px; display: inline-block; border-radius: 8px; letter-spacing: 2px;">
					%s
				</div>
				<p style="font-size: 14px; color: #555; margin-top: 20px;">Présentez ce QR code à l'entrée du parc :</p>
				<img src="cid:qr-code" alt="QR code" style="width: 200px; height: 200px;">
				<p style="font-size: 12px; color: #888; margin-top: 15px;">
					Ce billet est personnel. En cas de question, répondez simplement à cet email.
				</p>
			</div>
		</div>`, reservation.ReservationNumber)
}
