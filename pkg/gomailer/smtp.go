package gomailer

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

type SMTPMailer struct {
	Host     string            `yaml:"host"`
	Port     int               `yaml:"port"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	UseAuth  bool              `yaml:"useAuth"`
	Timeout  time.Duration     `yaml:"timeout"`
	Headers  map[string]string `yaml:"headers,omitempty"`
}

func (m *SMTPMailer) Send(email Email) error {
	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)

	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", email.From))
	b.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(email.To, ",")))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", email.Subject))
	for k, v := range email.Headers {
		b.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	if email.HTML != "" {
		b.WriteString("MIME-Version: 1.0\r\n")
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
		b.WriteString("\r\n")
		b.WriteString(email.HTML)
	} else {
		b.WriteString("\r\n")
		b.WriteString(email.Text)
	}

	var auth smtp.Auth
	if m.UseAuth {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	if err := smtp.SendMail(addr, auth, email.From, email.To, []byte(b.String())); err != nil {
		return fmt.Errorf("smtp send error: %w", err)
	}
	return nil
}
