// Package mailer delivers invitation emails over SMTP, falling back to
// console logging when no SMTP host is configured so local development
// still shows the accept/reject links.
package mailer

import (
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// Config holds SMTP settings; Host empty means console fallback.
type Config struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

type Mailer struct {
	cfg Config
}

func New(cfg Config) *Mailer {
	if cfg.Port == "" {
		cfg.Port = "25"
	}
	if cfg.From == "" {
		cfg.From = "noreply@teamforge.local"
	}
	return &Mailer{cfg: cfg}
}

// Send delivers one plain-text message. Errors are returned for the
// caller to log; a failed invite email never fails the invite itself.
func (m *Mailer) Send(to, subject, body string) error {
	if m.cfg.Host == "" {
		log.Printf("--- EMAIL (fallback) ---\nTo: %s\nSubject: %s\n%s\n--- END EMAIL ---", to, subject, body)
		return nil
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.From,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.User != "" && m.cfg.Pass != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Pass, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("smtp send to %s failed: %v", to, err)
	}
	return nil
}

// InviteBody renders the invitation message with its response links.
func InviteBody(leaderName, lobbyTitle, acceptURL, rejectURL string) (subject, body string) {
	subject = fmt.Sprintf("Team invite for '%s' from %s", lobbyTitle, leaderName)
	body = fmt.Sprintf(
		"%s has requested you join their team for lobby '%s'.\n\nAccept: %s\nReject: %s\n\nIf you didn't expect this, ignore this email.",
		leaderName, lobbyTitle, acceptURL, rejectURL)
	return subject, body
}
