package mail

import (
	"bytes"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/ligue-crm/internal/config"
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(`<html><body>
<p>Hello, {{.Name}}!</p>
<p>Your contract <strong>{{.ContractName}}</strong> is signed. Welcome aboard.</p>
</body></html>`))

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

func NewEmailSender(cfg config.Mail) *EmailSender {
	return &EmailSender{
		Host:     cfg.Host,
		Port:     cfg.Port,
		User:     cfg.User,
		Password: cfg.Password,
		From:     cfg.From,
		dialer:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

func (s *EmailSender) SendWelcome(to, name, contractName string) error {
	m, err := s.welcomeMessage(to, name, contractName)
	if err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email over smtp: %w", err)
	}
	return nil
}

func (s *EmailSender) welcomeMessage(to, name, contractName string) (*gomail.Message, error) {
	var body bytes.Buffer
	data := WelcomeEmailData{Name: name, ContractName: contractName}
	if err := welcomeTemplate.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Welcome, %s!", name))
	m.SetBody("text/html", body.String())
	return m, nil
}
