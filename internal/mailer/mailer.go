package mailer

import (
	"fmt"
	"net/smtp"
)

// Sender delivers transactional mail. Controllers depend on this
// interface so tests can substitute a recorder.
type Sender interface {
	Send(to, subject, body string) error
}

type SMTPSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func NewSMTPSender(host string, port int, user, pass, from string) *SMTPSender {
	if port == 0 {
		port = 587
	}
	return &SMTPSender{Host: host, Port: port, User: user, Password: pass, From: from}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	if s == nil || s.Host == "" || s.User == "" {
		return fmt.Errorf("smtp not configured")
	}
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	auth := smtp.PlainAuth("", s.User, s.Password, s.Host)
	msg := []byte("To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" + body + "\r\n")
	return smtp.SendMail(addr, auth, s.From, []string{to}, msg)
}
