package mailing

import (
	"context"
	"fmt"
	"gopkg.in/gomail.v2"
	"html"
	"pricecrowd-backend/entities"
	"pricecrowd-backend/internal/logging"
	"pricecrowd-backend/internal/utils"
	"strconv"
	"strings"
)

type MailConfig struct {
	SMTPHost     string
	SMTPPort     string
	SMTPSender   string
	SMTPEmail    string
	SMTPPassword string
	NotifyEmail  string
}

func LoadMailConfig() MailConfig {
	return MailConfig{
		SMTPHost:     utils.GetConfig("SMTP_HOST"),
		SMTPPort:     utils.GetConfig("SMTP_PORT"),
		SMTPSender:   utils.GetConfig("SMTP_SENDER_NAME"),
		SMTPEmail:    utils.GetConfig("SMTP_AUTH_EMAIL"),
		SMTPPassword: utils.GetConfig("SMTP_AUTH_PASSWORD"),
		NotifyEmail:  utils.GetConfig("NOTIFY_EMAIL"),
	}
}

func (c MailConfig) configured() bool {
	return c.SMTPHost != "" && c.SMTPEmail != "" && strings.TrimSpace(c.NotifyEmail) != ""
}

// ReceiptNotifier is told about every newly accepted receipt.
type ReceiptNotifier interface {
	ReceiptAccepted(ctx context.Context, receipt *entities.Receipt) error
}

type EmailNotifier struct {
	cfg    MailConfig
	logger logging.Logger
	send   func(m *gomail.Message) error
}

func NewEmailNotifier(cfg MailConfig, logger logging.Logger) *EmailNotifier {
	n := &EmailNotifier{cfg: cfg, logger: logger}
	n.send = n.dialAndSend
	return n
}

func (n *EmailNotifier) ReceiptAccepted(ctx context.Context, receipt *entities.Receipt) error {
	if !n.cfg.configured() {
		n.logger.Debug(ctx, "email config missing, skip notification")
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.cfg.SMTPEmail, n.cfg.SMTPSender)
	m.SetHeader("To", n.cfg.NotifyEmail)
	m.SetHeader("Subject", "[PriceCrowd] New receipt from "+receipt.Source)
	m.SetBody("text/html", buildReceiptBody(receipt))

	if err := n.send(m); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	n.logger.Info(ctx, "receipt notification sent", "to", n.cfg.NotifyEmail, "receipt_id", receipt.ID.String())
	return nil
}

func (n *EmailNotifier) dialAndSend(m *gomail.Message) error {
	port, err := strconv.Atoi(n.cfg.SMTPPort)
	if err != nil {
		return err
	}
	dialer := gomail.NewDialer(n.cfg.SMTPHost, port, n.cfg.SMTPEmail, n.cfg.SMTPPassword)
	return dialer.DialAndSend(m)
}

func buildReceiptBody(r *entities.Receipt) string {
	return fmt.Sprintf(`<p>A new receipt was submitted.</p>
<ul>
  <li>Submitted by: %s</li>
  <li>Source: %s</li>
  <li>Received at: %s</li>
  <li>QR: <code>%s</code></li>
</ul>`,
		html.EscapeString(r.SubmittedBy),
		html.EscapeString(r.Source),
		r.ReceivedAt.Format("2006-01-02 15:04:05"),
		html.EscapeString(r.QR),
	)
}
