package service

import (
	"fmt"
	"net/smtp"

	"github.com/Sujalarora-18/Assignment-Portal/internal/config"
)

// Mailer SMTP邮件发送器
type Mailer struct {
	cfg config.SMTPConfig
}

// NewMailer 创建邮件发送器，未配置SMTP时返回nil
func NewMailer(cfg config.SMTPConfig) *Mailer {
	if cfg.Host == "" || cfg.User == "" {
		return nil
	}
	return &Mailer{cfg: cfg}
}

// SendPasswordReset 发送密码重置邮件
func (m *Mailer) SendPasswordReset(to, resetURL string) error {
	from := m.cfg.From
	if from == "" {
		from = m.cfg.User
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: Password Reset\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n"+
		`<p>A password reset was requested for your account.</p><p><a href="%s">Reset Password</a></p><p>The link expires in 15 minutes.</p>`,
		from, to, resetURL)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	auth := smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)

	return smtp.SendMail(addr, auth, from, []string{to}, []byte(msg))
}
