package mail

import (
	"fmt"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"bookshelf/internal/config"
)

// Mailer is the outbound-mail collaborator used by the password-reset flow.
type Mailer interface {
	SendPasswordReset(to, name, newPassword string) error
}

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

// SendPasswordReset mails the freshly reset password to the user.
// Delivering the plaintext password is a known weakness of the self-service
// reset flow; kept intentionally, see DESIGN.md.
func (s *Sender) SendPasswordReset(to, name, newPassword string) error {
	if !s.cfg.MailConfigured() {
		return fmt.Errorf("smtp is not configured")
	}

	e := email.NewEmail()
	e.From = s.cfg.SMTPFrom
	e.To = []string{to}
	e.Subject = "Your password has been reset"

	body := fmt.Sprintf("Dear %s,\n\n", name)
	body += fmt.Sprintf("Your new password is: %s\n", newPassword)
	body += "\nBest regards,\nBookshelf"
	e.Text = []byte(body)
	e.HTML = []byte(fmt.Sprintf("<p>Your new password is: <b>%s</b></p>", newPassword))

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	if err := e.Send(addr, auth); err != nil {
		s.logger.Errorf("Failed to send email to %s: %v", to, err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}
