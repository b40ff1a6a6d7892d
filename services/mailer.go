// services/mailer.go
package services

import (
	"fmt"
	"net/smtp"
	"os"
	"time"

	"github.com/jordan-wright/email"
	"github.com/shopspring/decimal"
)

// Mailer sends plain-text notifications over SMTP.
type Mailer struct {
	host     string
	port     string
	username string
	password string
	from     string
}

func NewMailer() *Mailer {
	return &Mailer{
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		username: os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     os.Getenv("SMTP_FROM"),
	}
}

// Configured reports whether SMTP settings are present.
func (m *Mailer) Configured() bool {
	return m.host != "" && m.port != "" && m.from != ""
}

func (m *Mailer) Send(to, subject, body string) error {
	if !m.Configured() {
		return fmt.Errorf("smtp is not configured")
	}

	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body)

	addr := m.host + ":" + m.port
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	return e.Send(addr, auth)
}

// SendPaymentReminder emails a client about one installment, with overdue
// and upcoming variants.
func (m *Mailer) SendPaymentReminder(to, clientName string, installment int, amount decimal.Decimal, currency string, dueDate time.Time, overdue bool) error {
	var subject, body string
	if overdue {
		subject = fmt.Sprintf("Overdue installment #%d", installment)
		body = fmt.Sprintf(
			"Dear %s,\n\nInstallment #%d of %s %s was due on %s and is still outstanding. "+
				"Please settle it as soon as possible to avoid penalties.\n\nThank you.",
			clientName, installment, currency, amount.StringFixed(2), dueDate.Format("02 Jan 2006"))
	} else {
		subject = fmt.Sprintf("Upcoming installment #%d", installment)
		body = fmt.Sprintf(
			"Dear %s,\n\nThis is a reminder that installment #%d of %s %s falls due on %s.\n\nThank you.",
			clientName, installment, currency, amount.StringFixed(2), dueDate.Format("02 Jan 2006"))
	}
	return m.Send(to, subject, body)
}

// SendReceipt emails a payment confirmation.
func (m *Mailer) SendReceipt(to, clientName, receiptNumber string, amount decimal.Decimal, currency string, balance decimal.Decimal) error {
	subject := fmt.Sprintf("Payment received - receipt %s", receiptNumber)
	body := fmt.Sprintf(
		"Dear %s,\n\nWe have received your payment of %s %s (receipt %s). "+
			"Your outstanding balance is now %s %s.\n\nThank you.",
		clientName, currency, amount.StringFixed(2), receiptNumber, currency, balance.StringFixed(2))
	return m.Send(to, subject, body)
}

// SendInsuranceExpiry notifies the dealership contact about a policy
// running out.
func (m *Mailer) SendInsuranceExpiry(to, vehicle, policyNumber, provider string, endDate time.Time, days int) error {
	subject := fmt.Sprintf("Insurance policy %s expires in %d days", policyNumber, days)
	body := fmt.Sprintf(
		"Policy %s (%s) covering %s expires on %s. Arrange renewal before cover lapses.",
		policyNumber, provider, vehicle, endDate.Format("02 Jan 2006"))
	return m.Send(to, subject, body)
}
