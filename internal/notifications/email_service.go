package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"net/smtp"
	"os"
	"strconv"
	"strings"
	"time"
)

// EmailService interface for sending ticket emails
type EmailService interface {
	SendTicketEvent(ctx context.Context, event *TicketEvent) error
	SendHTML(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPConfig holds SMTP configuration
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	Timeout   time.Duration
}

// NewSMTPConfigFromEnv creates SMTP config from environment variables
func NewSMTPConfigFromEnv() *SMTPConfig {
	port, _ := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if port == 0 {
		port = 587
	}

	timeout, _ := time.ParseDuration(os.Getenv("SMTP_TIMEOUT"))
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &SMTPConfig{
		Host:      os.Getenv("SMTP_HOST"),
		Port:      port,
		Username:  os.Getenv("SMTP_USERNAME"),
		Password:  os.Getenv("SMTP_PASSWORD"),
		FromEmail: os.Getenv("FROM_EMAIL"),
		FromName:  "CineCore",
		Timeout:   timeout,
	}
}

const ticketEmailTemplate = `
<html>
<body>
	<h2>Your tickets for booking {{.BookingRef}}</h2>
	<p>Seats: {{.SeatList}}</p>
	<p>Total paid: {{.Total}}</p>
	<p>Show this code at the entrance:</p>
	<h3>{{.TicketToken}}</h3>
</body>
</html>`

const failureEmailTemplate = `
<html>
<body>
	<h2>Booking {{.BookingRef}} could not be completed</h2>
	<p>Reason: {{.Reason}}</p>
	<p>No payment is due. Your seats have been released; please book again.</p>
</body>
</html>`

// SMTPEmailService sends ticket emails over plain SMTP
type SMTPEmailService struct {
	config          *SMTPConfig
	ticketTemplate  *template.Template
	failureTemplate *template.Template
}

func NewSMTPEmailService(config *SMTPConfig) (*SMTPEmailService, error) {
	if config == nil || config.Host == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if config.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}

	return &SMTPEmailService{
		config:          config,
		ticketTemplate:  template.Must(template.New("ticket").Parse(ticketEmailTemplate)),
		failureTemplate: template.Must(template.New("failure").Parse(failureEmailTemplate)),
	}, nil
}

// SendTicketEvent renders and sends the email matching the event type.
// Events without a recipient address are skipped, not failed, so the
// consumer does not retry them forever.
func (s *SMTPEmailService) SendTicketEvent(ctx context.Context, event *TicketEvent) error {
	if event.CustomerEmail == "" {
		log.Printf("📧 Ticket event %s has no recipient email, skipping", event.ID)
		return nil
	}

	var body bytes.Buffer
	var subject string

	switch event.Type {
	case TicketEventBookingCompleted:
		subject = fmt.Sprintf("Your tickets for booking %s", event.BookingRef)
		err := s.ticketTemplate.Execute(&body, map[string]interface{}{
			"BookingRef":  event.BookingRef,
			"SeatList":    strings.Join(event.Seats, ", "),
			"Total":       event.Total,
			"TicketToken": event.TicketToken,
		})
		if err != nil {
			return fmt.Errorf("failed to render ticket email: %w", err)
		}
	case TicketEventBookingFailed:
		subject = fmt.Sprintf("Booking %s failed", event.BookingRef)
		err := s.failureTemplate.Execute(&body, map[string]interface{}{
			"BookingRef": event.BookingRef,
			"Reason":     event.FailureReason,
		})
		if err != nil {
			return fmt.Errorf("failed to render failure email: %w", err)
		}
	default:
		return fmt.Errorf("unknown ticket event type %q", event.Type)
	}

	return s.SendHTML(ctx, event.CustomerEmail, subject, body.String())
}

// SendHTML sends an HTML email
func (s *SMTPEmailService) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	var message strings.Builder
	message.WriteString(fmt.Sprintf("From: %s <%s>\r\n", s.config.FromName, s.config.FromEmail))
	message.WriteString(fmt.Sprintf("To: %s\r\n", to))
	message.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	message.WriteString("MIME-Version: 1.0\r\n")
	message.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	if err := smtp.SendMail(addr, auth, s.config.FromEmail, []string{to}, []byte(message.String())); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}

	log.Printf("📧 Email sent to %s: %s", to, subject)
	return nil
}

// logEmailService is the development stand-in when SMTP is not configured.
type logEmailService struct{}

func NewLogEmailService() EmailService {
	return &logEmailService{}
}

func (s *logEmailService) SendTicketEvent(ctx context.Context, event *TicketEvent) error {
	log.Printf("📧 [DEV] %s for booking %s (seats %s) to %s",
		event.Type, event.BookingRef, strings.Join(event.Seats, ","), event.CustomerEmail)
	return nil
}

func (s *logEmailService) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	log.Printf("📧 [DEV] Email to %s: %s", to, subject)
	return nil
}
