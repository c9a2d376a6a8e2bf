// Package notify delivers user notifications for movement outcomes.
package notify

import (
	"context"
	"fmt"
	"strconv"
	"time"

	mail "github.com/go-mail/mail/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/gtibank/corebank/internal/domain"
)

// AddressBook resolves a user's notification address.
type AddressBook interface {
	EmailFor(ctx context.Context, userID uuid.UUID) (string, error)
}

// EmailSender sends movement notifications over SMTP. Delivery problems are
// logged and swallowed: a notification must never fail a movement.
type EmailSender struct {
	dialer    *mail.Dialer
	from      string
	addresses AddressBook
	logger    *logrus.Logger
	enabled   bool
}

func NewEmailSender(host, port, user, pass string, enabled bool, addresses AddressBook, logger *logrus.Logger) *EmailSender {
	portNum, err := strconv.Atoi(port)
	if err != nil {
		logger.WithError(err).Warn("invalid SMTP port, notifications disabled")
		enabled = false
		portNum = 587
	}
	return &EmailSender{
		dialer:    mail.NewDialer(host, portNum, user, pass),
		from:      user,
		addresses: addresses,
		logger:    logger,
		enabled:   enabled,
	}
}

func (es *EmailSender) MovementSucceeded(ctx context.Context, mv *domain.Movement) {
	subject := fmt.Sprintf("%s confirmation %s", title(mv.Kind), mv.InternalRef)
	content := fmt.Sprintf(`
		<h1>%s successful</h1>
		<p>Amount: <strong>%s %s</strong></p>
		<p>Recipient: <strong>%s</strong></p>
		<p>Reference: <strong>%s</strong></p>
		<p>Date: <strong>%s</strong></p>
		<small>This is an automated notification, please do not reply</small>
	`, title(mv.Kind), mv.Amount.StringFixed(2), mv.Currency, mv.Counterparty,
		mv.InternalRef, time.Now().Format("02.01.2006 15:04"))

	es.send(ctx, mv.UserID, subject, content)
}

func (es *EmailSender) PaymentFailed(ctx context.Context, mv *domain.Movement) {
	subject := fmt.Sprintf("Payment failed %s", mv.InternalRef)
	content := fmt.Sprintf(`
		<h1>Payment unsuccessful</h1>
		<p>Amount: <strong>%s %s</strong></p>
		<p>Reference: <strong>%s</strong></p>
		<p>Reason: <strong>%s</strong></p>
		<small>This is an automated notification, please do not reply</small>
	`, mv.Amount.StringFixed(2), mv.Currency, mv.InternalRef, mv.FailureReason)

	es.send(ctx, mv.UserID, subject, content)
}

func (es *EmailSender) send(ctx context.Context, userID uuid.UUID, subject, body string) {
	if !es.enabled {
		es.logger.Debug("notification delivery disabled")
		return
	}

	to, err := es.addresses.EmailFor(ctx, userID)
	if err != nil {
		es.logger.WithError(err).WithField("user_id", userID).Warn("could not resolve notification address")
		return
	}

	m := mail.NewMessage()
	m.SetHeader("From", es.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := es.dialer.DialAndSend(m); err != nil {
		es.logger.WithError(err).Error("failed to send notification email")
		return
	}
	es.logger.WithField("to", to).Info("notification email sent")
}

func title(kind domain.MovementKind) string {
	if kind == domain.MovementPayment {
		return "Payment"
	}
	return "Transfer"
}
