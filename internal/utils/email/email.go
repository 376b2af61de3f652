package email

import (
	"fmt"
	"net/smtp"
	"strings"

	"github.com/Dan9191/todo-service/internal/config"
	"github.com/Dan9191/todo-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
	send   func(e *email.Email, addr string, auth smtp.Auth) error
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
		send: func(e *email.Email, addr string, auth smtp.Auth) error {
			return e.Send(addr, auth)
		},
	}
}

// SendOpenItemsDigest mails a user the list of their incomplete items
func (s *Sender) SendOpenItemsDigest(user models.User, items []models.TodoItem) error {
	if user.Email == "" {
		return fmt.Errorf("user %s has no email address", user.Username)
	}

	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{user.Email}
	e.Subject = fmt.Sprintf("You have %d open to-do item(s)", len(items))
	e.Text = []byte(digestBody(user, items))

	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	if err := s.send(e, addr, auth); err != nil {
		s.logger.Errorf("Failed to send digest to %s: %v", user.Email, err)
		return fmt.Errorf("failed to send digest: %w", err)
	}

	s.logger.Infof("Email sent to %s: %s", user.Email, e.Subject)
	return nil
}

func digestBody(user models.User, items []models.TodoItem) string {
	name := user.Name
	if name == "" {
		name = user.Username
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\n", name)
	b.WriteString("The following items are still open:\n\n")
	for _, it := range items {
		fmt.Fprintf(&b, "  - %s", it.Description)
		if it.Quantity > 0 {
			fmt.Fprintf(&b, " x%d", it.Quantity)
		}
		if it.StoreName != "" {
			fmt.Fprintf(&b, " (%s)", it.StoreName)
		}
		fmt.Fprintf(&b, ", added %s\n", it.CreatedAt.Format("2006-01-02"))
	}
	b.WriteString("\nBest regards,\nTodo Service")
	return b.String()
}
