package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTPSender envia correos via SMTP.
type SMTPSender struct {
	host     string
	port     int
	username string
	password string
	from     string
	fromName string
	useTLS   bool
}

func NewSMTPSender(host string, port int, username, password, from, fromName string, useTLS bool) (*SMTPSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if port == 0 {
		port = 587
	}
	return &SMTPSender{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		fromName: fromName,
		useTLS:   useTLS,
	}, nil
}

func (s *SMTPSender) SendRegister(_ context.Context, name, toEmail, tempPassword string) error {
	return s.send(toEmail, registerMessage(name, tempPassword))
}

func (s *SMTPSender) SendForgotPassword(_ context.Context, name, toEmail, tempPassword string) error {
	return s.send(toEmail, forgotPasswordMessage(name, tempPassword))
}

func (s *SMTPSender) SendPasswordSet(_ context.Context, name, toEmail string) error {
	return s.send(toEmail, passwordSetMessage(name))
}

type message struct {
	subject string
	body    string
}

func registerMessage(name, tempPassword string) message {
	return message{
		subject: "Welcome to the forum",
		body: fmt.Sprintf(
			"Hi %s,\n\nYour account has been created.\nYour temporary password is: %s\n\nPlease log in and change it from your profile.\n",
			name, tempPassword,
		),
	}
}

func forgotPasswordMessage(name, tempPassword string) message {
	return message{
		subject: "Your password has been reset",
		body: fmt.Sprintf(
			"Hi %s,\n\nWe received a password reset request for your account.\nYour new temporary password is: %s\n\nPlease log in and change it from your profile.\n",
			name, tempPassword,
		),
	}
}

func passwordSetMessage(name string) message {
	return message{
		subject: "Your password was changed",
		body: fmt.Sprintf(
			"Hi %s,\n\nThe password of your account was just changed.\nIf you did not do this, reset your password right away.\n",
			name,
		),
	}
}

func (s *SMTPSender) send(toEmail string, m message) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}

	msg := buildMessage(s.from, s.fromName, toEmail, m.subject, m.body)
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if s.useTLS {
		conn, err := tls.Dial("tcp", addr, &tls.Config{
			ServerName: s.host,
		})
		if err != nil {
			return err
		}
		defer conn.Close()

		client, err := smtp.NewClient(conn, s.host)
		if err != nil {
			return err
		}
		defer client.Quit()

		if auth != nil {
			if err := client.Auth(auth); err != nil {
				return err
			}
		}
		if err := client.Mail(s.from); err != nil {
			return err
		}
		if err := client.Rcpt(toEmail); err != nil {
			return err
		}
		writer, err := client.Data()
		if err != nil {
			return err
		}
		if _, err := writer.Write([]byte(msg)); err != nil {
			_ = writer.Close()
			return err
		}
		return writer.Close()
	}

	return smtp.SendMail(addr, auth, s.from, []string{toEmail}, []byte(msg))
}

func buildMessage(from, fromName, to, subject, body string) string {
	fromHeader := from
	if strings.TrimSpace(fromName) != "" {
		fromHeader = fmt.Sprintf("%s <%s>", fromName, from)
	}

	headers := []string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
	}

	return strings.Join(headers, "\r\n") + "\r\n\r\n" + body
}
