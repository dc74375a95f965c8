package notification

import (
	"context"
	"fmt"
	"time"

	"counsel_portal_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender delivers counselor emails over a direct SMTP connection.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) SendLeadAssignedEmail(ctx context.Context, toEmail, counselorName, leadName string) error {
	content, err := renderEmail(emailData{
		Heading:   "New lead assigned",
		Recipient: counselorName,
		Body:      "A new lead has been assigned to you.",
		Detail:    fmt.Sprintf("Lead: %s", leadName),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectLeadAssigned, content)
}

func (s *SMTPSender) SendSessionScheduledEmail(ctx context.Context, toEmail, counselorName, leadName string, sessionDate time.Time) error {
	content, err := renderEmail(emailData{
		Heading:   "Session scheduled",
		Recipient: counselorName,
		Body:      fmt.Sprintf("A counseling session with %s has been booked.", leadName),
		Detail:    fmt.Sprintf("When: %s", sessionDate.Format("Mon, 02 Jan 2006 15:04 MST")),
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectSessionScheduledFmt, leadName), content)
}
