package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// SMTPSender envía correos vía SMTP, con TLS implícito opcional.
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

func (s *SMTPSender) SendPasswordReset(ctx context.Context, reset PasswordResetMessage) error {
	if strings.TrimSpace(reset.To) == "" {
		return fmt.Errorf("to email is required")
	}
	if strings.TrimSpace(reset.ResetURL) == "" {
		return fmt.Errorf("reset url is required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(s.from, s.fromName, reset.To, passwordResetSubject, passwordResetBody(reset))
	return s.send(reset.To, msg)
}

func (s *SMTPSender) send(toEmail, msg string) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	var auth smtp.Auth
	if s.username != "" {
		auth = smtp.PlainAuth("", s.username, s.password, s.host)
	}

	if s.useTLS {
		dialer := &net.Dialer{Timeout: dialTimeout}
		conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{
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

const dialTimeout = 10 * time.Second

const passwordResetSubject = "Travel planner: password reset"

func passwordResetBody(reset PasswordResetMessage) string {
	greeting := "Hello,"
	if name := strings.TrimSpace(reset.UserName); name != "" {
		greeting = fmt.Sprintf("Hello %s,", name)
	}
	var b strings.Builder
	b.WriteString(greeting + "\n\n")
	b.WriteString("We received a request to reset your password.\n")
	b.WriteString("Open the following link to choose a new one:\n\n")
	b.WriteString(reset.ResetURL + "\n\n")
	if !reset.ExpiresAt.IsZero() {
		fmt.Fprintf(&b, "The link expires at %s UTC and can only be used once.\n", reset.ExpiresAt.UTC().Format(time.RFC3339))
	}
	b.WriteString("If you did not request this, you can ignore this email.\n")
	return b.String()
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
