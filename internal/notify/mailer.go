// Package notify delivers payslip notices to employees over SMTP. Delivery is
// best-effort: the orchestrator logs failures and moves on.
package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"time"

	"github.com/seyi-aluko/payrun/internal/domain"
)

// Error is the typed failure for relay problems, distinguishable from local
// errors via errors.As.
type Error struct {
	Op      string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("notify: %s: %s", e.Op, e.Message)
}

type Mailer interface {
	SendPayslip(ctx context.Context, employee domain.Employee, orgName string, slip domain.PayrollSlip) error
}

// NopMailer satisfies Mailer for deployments without an SMTP relay and for
// tests.
type NopMailer struct{}

func (NopMailer) SendPayslip(context.Context, domain.Employee, string, domain.PayrollSlip) error {
	return nil
}

type SMTPConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromName    string
	FromAddress string
}

type SMTPMailer struct {
	cfg SMTPConfig
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

func (m *SMTPMailer) SendPayslip(ctx context.Context, employee domain.Employee, orgName string, slip domain.PayrollSlip) error {
	msg := buildPayslipMessage(m.cfg, employee, orgName, slip)
	if err := m.send(ctx, employee.Email, msg); err != nil {
		return &Error{Op: "SendPayslip", Message: err.Error()}
	}
	return nil
}

func (m *SMTPMailer) send(ctx context.Context, to string, msg []byte) error {
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.cfg.Host}); err != nil {
			return err
		}
	}

	if m.cfg.Username != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(m.cfg.FromAddress); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
