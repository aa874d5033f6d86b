package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendTopUpReceipt(toEmail string, credits int, grossAmount int64, orderId string) error
	SendBanNotice(toEmail string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	senderName  string
}

func NewEmailService(host string, port int, username, password, senderEmail, senderName string) IEmailService {
	return &emailService{
		dialer:      gomail.NewDialer(host, port, username, password),
		senderEmail: senderEmail,
		senderName:  senderName,
	}
}

func (s *emailService) send(toEmail, subject, body string) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.senderEmail, s.senderName)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)
	return s.dialer.DialAndSend(m)
}

func (s *emailService) SendTopUpReceipt(toEmail string, credits int, grossAmount int64, orderId string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Payment received</h2>
			<p><strong>%d credits</strong> have been added to your account.</p>
			<p>Amount paid: %d</p>
			<p style="color: #777;">Order reference: %s</p>
		</div>
	`, credits, grossAmount, orderId)
	return s.send(toEmail, "Your credit top-up receipt", body)
}

// SendBanNotice never includes the ban reason; that stays in the audit trail.
func (s *emailService) SendBanNotice(toEmail string) error {
	body := `
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Account suspended</h2>
			<p>Your account has been suspended and can no longer run generations.</p>
			<p>Reply to this email if you believe this is a mistake.</p>
		</div>
	`
	return s.send(toEmail, "Your account has been suspended", body)
}

type noopEmailService struct{}

// NewNoopEmailService is used when SMTP is not configured.
func NewNoopEmailService() IEmailService {
	return noopEmailService{}
}

func (noopEmailService) SendTopUpReceipt(string, int, int64, string) error { return nil }
func (noopEmailService) SendBanNotice(string) error { return nil }
