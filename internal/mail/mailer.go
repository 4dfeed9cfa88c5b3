// Package mail sends transactional email for the gate-pass application.
// When SMTP is not configured, messages are logged to the console instead so
// the OTP flow stays usable in local development.
package mail

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
)

// Mailer sends emails through SMTP.
type Mailer struct {
	from     string
	password string
	host     string
	port     string
	enabled  bool
}

// NewMailer creates a mailer using environment variables.
// Real delivery requires EMAIL_ENABLED=true plus SMTP_HOST, SMTP_PORT,
// SMTP_USER and SMTP_PASSWORD; otherwise messages go to the console.
func NewMailer() *Mailer {
	return &Mailer{
		from:     os.Getenv("SMTP_USER"),
		password: os.Getenv("SMTP_PASSWORD"),
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
		enabled:  os.Getenv("EMAIL_ENABLED") == "true",
	}
}

// Send delivers a plain-text email with the given subject and body.
// In console mode the message is printed and delivery reports success.
func (m *Mailer) Send(to, subject, body string) error {
	if !m.enabled {
		m.logToConsole(to, subject, body)
		return nil
	}

	if m.host == "" || m.port == "" || m.from == "" || m.password == "" {
		return fmt.Errorf("missing SMTP configuration")
	}

	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=\"utf-8\"\r\n"+
			"\r\n%s\r\n",
		m.from, to, subject, body,
	))

	auth := smtp.PlainAuth("", m.from, m.password, m.host)
	return smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{to}, msg)
}

// SendOTP delivers a one-time code with the standard wording. The kind
// selects between the registration and password-reset templates.
func (m *Mailer) SendOTP(to, name, otp, kind string) error {
	subject := "Verify Your Email - SAIL Gate Pass"
	heading := "Email Verification"
	intro := "Thank you for registering with the SAIL Gate Pass System."
	if kind == "password_reset" {
		subject = "Password Reset - SAIL Gate Pass"
		heading = "Password Reset"
		intro = "We received a request to reset your password."
	}
	body := fmt.Sprintf(
		"SAIL Gate Pass System - %s\n\n"+
			"Hello %s,\n\n"+
			"%s\n\n"+
			"Your One-Time Password (OTP) is:\n\n"+
			"    %s\n\n"+
			"This OTP is valid for 10 minutes only.\n\n"+
			"If you didn't request this, please ignore this email.\n\n"+
			"---\n"+
			"This is an automated message from the SAIL Gate Pass System.\n",
		heading, name, intro, otp,
	)
	return m.Send(to, subject, body)
}

// logToConsole prints the message in console mode.
func (m *Mailer) logToConsole(to, subject, body string) {
	log.Printf("EMAIL (console mode)\nTo: %s\nSubject: %s\n%s\n", to, subject, body)
}
